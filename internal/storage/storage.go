package storage

import (
	"errors"

	"github.com/tasukuchiba/ed_monitor/internal/models"
)

// ErrNotFound は症例が見つからない場合のエラー
var ErrNotFound = errors.New("case not found")

// 保持件数の既定値
const (
	DefaultActivityLimit = 20
	DefaultMessageLimit  = 200
)

// Storage はダッシュボード状態のストレージのインターフェース
type Storage interface {
	// Snapshot は全状態のコピーを返す
	Snapshot() (models.Snapshot, error)

	// UpdateMetrics はメトリクスを更新し、更新後の値を返す
	UpdateMetrics(fn func(*models.DashboardMetrics)) (models.DashboardMetrics, error)

	// PrependCase は症例をリストの先頭に追加する
	PrependCase(c models.PatientCase) error

	// ListCases は全ての症例を新しい順に返す
	ListCases() ([]models.PatientCase, error)

	// GetCase は指定されたIDの症例を取得する
	GetCase(id string) (models.PatientCase, error)

	// UpdateCaseStatus は症例の状態を更新し、更新前の状態を返す
	UpdateCaseStatus(id string, status models.CaseStatus) (models.PatientCase, models.CaseStatus, error)

	// DeleteCase は指定されたIDの症例を削除する
	DeleteCase(id string) (models.PatientCase, error)

	// PrependActivity はアクティビティを先頭に追加し、上限を超えた古いものを捨てる
	PrependActivity(a models.ActivityEntry) error

	// ListActivities は全てのアクティビティを新しい順に返す
	ListActivities() ([]models.ActivityEntry, error)

	// AppendMessage はチャットメッセージを末尾に追加する
	AppendMessage(m models.ChatMessage) error

	// ListMessages は全てのチャットメッセージを古い順に返す
	ListMessages() ([]models.ChatMessage, error)
}
