package models

import "time"

// EventType はダッシュボードイベントの種別
type EventType string

const (
	EventSnapshot       EventType = "snapshot"
	EventChatMessage    EventType = "chat_message"
	EventActivity       EventType = "activity"
	EventPatientArrival EventType = "patient_arrival"
	EventCaseUpdate     EventType = "case_update"
	EventCaseDischarged EventType = "case_discharged"
	EventMetrics        EventType = "metrics"
	EventError          EventType = "error"
	EventConnection     EventType = "connection_status"
)

// Snapshot はダッシュボード全体の状態
type Snapshot struct {
	Metrics    DashboardMetrics `json:"metrics"`
	Cases      []PatientCase    `json:"cases"`
	Activities []ActivityEntry  `json:"activities"`
	Messages   []ChatMessage    `json:"messages"`
}

// Event は購読者へ配信される状態変更通知
//
// ペイロードは Type に応じていずれか1つだけが設定される。
type Event struct {
	Type      EventType         `json:"type"`
	Snapshot  *Snapshot         `json:"snapshot,omitempty"`
	Message   *ChatMessage      `json:"message,omitempty"`
	Activity  *ActivityEntry    `json:"activity,omitempty"`
	Case      *PatientCase      `json:"case,omitempty"`
	Metrics   *DashboardMetrics `json:"metrics,omitempty"`
	Error     string            `json:"error,omitempty"`
	Connected bool              `json:"connected,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
