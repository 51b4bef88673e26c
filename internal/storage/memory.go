package storage

import (
	"sync"

	"github.com/samber/lo"
	"github.com/tasukuchiba/ed_monitor/internal/models"
)

// MemoryStorage はダッシュボード状態をメモリ上に保存するストレージ
type MemoryStorage struct {
	mu         sync.RWMutex
	metrics    models.DashboardMetrics
	cases      []models.PatientCase
	activities []models.ActivityEntry
	messages   []models.ChatMessage

	activityLimit int
	messageLimit  int
}

// Option はMemoryStorageの設定を変更する
type Option func(*MemoryStorage)

// WithActivityLimit はアクティビティの保持件数を設定する
func WithActivityLimit(n int) Option {
	return func(s *MemoryStorage) {
		if n > 0 {
			s.activityLimit = n
		}
	}
}

// WithMessageLimit はチャット履歴の保持件数を設定する
func WithMessageLimit(n int) Option {
	return func(s *MemoryStorage) {
		if n > 0 {
			s.messageLimit = n
		}
	}
}

// NewMemoryStorage は初期状態から新しいMemoryStorageを作成する
func NewMemoryStorage(seed models.Snapshot, opts ...Option) *MemoryStorage {
	s := &MemoryStorage{
		metrics:       seed.Metrics,
		cases:         cloneSlice(seed.Cases),
		activities:    cloneSlice(seed.Activities),
		messages:      cloneSlice(seed.Messages),
		activityLimit: DefaultActivityLimit,
		messageLimit:  DefaultMessageLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.activities = lo.Slice(s.activities, 0, s.activityLimit)
	s.messages = lo.Subset(s.messages, -s.messageLimit, uint(s.messageLimit))
	return s
}

// Snapshot は全状態のコピーを返す
func (s *MemoryStorage) Snapshot() (models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Snapshot{
		Metrics:    s.metrics,
		Cases:      cloneSlice(s.cases),
		Activities: cloneSlice(s.activities),
		Messages:   cloneSlice(s.messages),
	}, nil
}

// UpdateMetrics はメトリクスを更新し、更新後の値を返す
func (s *MemoryStorage) UpdateMetrics(fn func(*models.DashboardMetrics)) (models.DashboardMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.metrics)
	return s.metrics, nil
}

// PrependCase は症例をリストの先頭に追加する
func (s *MemoryStorage) PrependCase(c models.PatientCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases = append([]models.PatientCase{c}, s.cases...)
	return nil
}

// ListCases は全ての症例を新しい順に返す
func (s *MemoryStorage) ListCases() ([]models.PatientCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.cases), nil
}

// GetCase は指定されたIDの症例を取得する
func (s *MemoryStorage) GetCase(id string) (models.PatientCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := lo.Find(s.cases, func(c models.PatientCase) bool { return c.ID == id })
	if !ok {
		return models.PatientCase{}, ErrNotFound
	}
	return c, nil
}

// UpdateCaseStatus は症例の状態を更新し、更新前の状態を返す
func (s *MemoryStorage) UpdateCaseStatus(id string, status models.CaseStatus) (models.PatientCase, models.CaseStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, i, ok := lo.FindIndexOf(s.cases, func(c models.PatientCase) bool { return c.ID == id })
	if !ok {
		return models.PatientCase{}, "", ErrNotFound
	}
	old := s.cases[i].Status
	s.cases[i].Status = status
	return s.cases[i], old, nil
}

// DeleteCase は指定されたIDの症例を削除する
func (s *MemoryStorage) DeleteCase(id string) (models.PatientCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cases {
		if c.ID == id {
			s.cases = append(s.cases[:i], s.cases[i+1:]...)
			return c, nil
		}
	}
	return models.PatientCase{}, ErrNotFound
}

// PrependActivity はアクティビティを先頭に追加し、上限を超えた古いものを捨てる
func (s *MemoryStorage) PrependActivity(a models.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = lo.Slice(append([]models.ActivityEntry{a}, s.activities...), 0, s.activityLimit)
	return nil
}

// ListActivities は全てのアクティビティを新しい順に返す
func (s *MemoryStorage) ListActivities() ([]models.ActivityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.activities), nil
}

// AppendMessage はチャットメッセージを末尾に追加する
func (s *MemoryStorage) AppendMessage(m models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	if len(s.messages) > s.messageLimit {
		// 古い履歴を捨てる
		s.messages = cloneSlice(s.messages[len(s.messages)-s.messageLimit:])
	}
	return nil
}

// ListMessages は全てのチャットメッセージを古い順に返す
func (s *MemoryStorage) ListMessages() ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.messages), nil
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
