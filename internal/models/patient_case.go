package models

import (
	"strings"
	"time"
)

// CaseType は症例の種別
type CaseType string

const (
	CaseSTEMI   CaseType = "STEMI"
	CaseStroke  CaseType = "Stroke"
	CaseTrauma  CaseType = "Trauma"
	CaseGeneral CaseType = "General"
)

// ParseCaseType は大文字小文字を区別せずに症例種別を解釈する
func ParseCaseType(s string) (CaseType, bool) {
	for _, t := range []CaseType{CaseSTEMI, CaseStroke, CaseTrauma, CaseGeneral} {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// CaseStatus は症例の状態
type CaseStatus string

const (
	CaseArriving    CaseStatus = "Arriving"
	CaseTriaged     CaseStatus = "Triaged"
	CaseInTreatment CaseStatus = "In Treatment"
	CasePending     CaseStatus = "Pending"
	CaseAdmitted    CaseStatus = "Admitted"
	CaseDischarged  CaseStatus = "Discharged"
)

// ValidCaseStatus は既知の症例状態かどうかを返す
func ValidCaseStatus(s CaseStatus) bool {
	switch s {
	case CaseArriving, CaseTriaged, CaseInTreatment, CasePending, CaseAdmitted, CaseDischarged:
		return true
	}
	return false
}

// Vitals は患者のバイタルサイン
type Vitals struct {
	HR    int     `json:"hr"`
	BPSys int     `json:"bp_sys"`
	BPDia int     `json:"bp_dia"`
	SpO2  int     `json:"spo2"`
	Temp  float64 `json:"temp"`
}

// MaxPriority は症例の優先度の最大値 (1が最優先)
const MaxPriority = 5

// PatientCase はライブ症例リストの1件
type PatientCase struct {
	ID             string     `json:"id"`
	Type           CaseType   `json:"type"`
	ArrivedAt      time.Time  `json:"arrived_at"`
	Vitals         Vitals     `json:"vitals"`
	Status         CaseStatus `json:"status"`
	Location       string     `json:"location"`
	LabETA         int        `json:"lab_eta"`
	AssignedBed    string     `json:"assigned_bed,omitempty"`
	Priority       int        `json:"priority"`
	ChiefComplaint string     `json:"chief_complaint,omitempty"`
	EMSReport      string     `json:"ems_report,omitempty"`
}

// DurationMinutes は来院からの経過分数を返す (最低1分)
func (c PatientCase) DurationMinutes(now time.Time) int {
	m := int(now.Sub(c.ArrivedAt).Minutes())
	if m < 1 {
		return 1
	}
	return m
}
