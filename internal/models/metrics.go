package models

import "time"

// DashboardMetrics はメトリクスカードに表示する集計値
type DashboardMetrics struct {
	ActiveCases  int       `json:"active_cases"`
	AvgLabETA    int       `json:"avg_lab_eta"`
	ICUBedsHeld  int       `json:"icu_beds_held"`
	DoctorsPaged int       `json:"doctors_paged"`
	LastUpdated  time.Time `json:"last_updated"`
}
