package models

import "time"

// ActivityType はアクティビティログの分類
type ActivityType string

const (
	ActivityLab    ActivityType = "Lab"
	ActivityPharm  ActivityType = "Pharm"
	ActivityBed    ActivityType = "Bed"
	ActivityDoctor ActivityType = "Doctor"
	ActivitySystem ActivityType = "System"
)

// ActivityStatus はアクティビティの進行状況
type ActivityStatus string

const (
	StatusReady      ActivityStatus = "Ready"
	StatusComplete   ActivityStatus = "Complete"
	StatusPending    ActivityStatus = "Pending"
	StatusInProgress ActivityStatus = "In Progress"
)

// ActivityEntry はアクティビティログの1行
//
// CaseID は PatientCase の存在を検証しない。
type ActivityEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      ActivityType   `json:"type"`
	Message   string         `json:"message"`
	Status    ActivityStatus `json:"status"`
	CaseID    string         `json:"case_id,omitempty"`
}
