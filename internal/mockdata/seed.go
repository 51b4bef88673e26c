package mockdata

import (
	"time"

	"github.com/google/uuid"
	"github.com/tasukuchiba/ed_monitor/internal/models"
)

// Seed はダッシュボードの初期データを作成する
func (g *Generator) Seed(now time.Time) models.Snapshot {
	cases := []models.PatientCase{
		{
			ID:             "STEMI-A1B2C3",
			Type:           models.CaseSTEMI,
			ArrivedAt:      now.Add(-12 * time.Minute),
			Vitals:         models.Vitals{HR: 108, BPSys: 158, BPDia: 94, SpO2: 95, Temp: 37.1},
			Status:         models.CaseInTreatment,
			Location:       "ED-1",
			LabETA:         6,
			AssignedBed:    "ED-Bed1",
			Priority:       1,
			ChiefComplaint: "Chest pain with diaphoresis",
		},
		{
			ID:             "STROKE-D4E5F6",
			Type:           models.CaseStroke,
			ArrivedAt:      now.Add(-25 * time.Minute),
			Vitals:         models.Vitals{HR: 84, BPSys: 188, BPDia: 110, SpO2: 97, Temp: 36.9},
			Status:         models.CasePending,
			Location:       "ED-2",
			LabETA:         12,
			AssignedBed:    "ED-Bed2",
			Priority:       1,
			ChiefComplaint: "Facial droop and slurred speech",
		},
		{
			ID:             "GENERAL-789ABC",
			Type:           models.CaseGeneral,
			ArrivedAt:      now.Add(-48 * time.Minute),
			Vitals:         models.Vitals{HR: 92, BPSys: 128, BPDia: 82, SpO2: 98, Temp: 38.4},
			Status:         models.CaseTriaged,
			Location:       "ED-3",
			LabETA:         15,
			AssignedBed:    "ED-Bed3",
			Priority:       3,
			ChiefComplaint: "Fever and productive cough",
		},
	}

	activities := []models.ActivityEntry{
		seedActivity(now.Add(-30*time.Second), models.ActivitySystem, "ED-Bed2 assigned", models.StatusComplete, "STROKE-D4E5F6"),
		seedActivity(now.Add(-1*time.Minute), models.ActivityPharm, "STEMI kit ready", models.StatusReady, "STEMI-A1B2C3"),
		seedActivity(now.Add(-2*time.Minute), models.ActivityLab, "Lab ETA 12m", models.StatusPending, "STROKE-D4E5F6"),
		seedActivity(now.Add(-4*time.Minute), models.ActivityBed, "ICU-3 held", models.StatusPending, ""),
		seedActivity(now.Add(-5*time.Minute), models.ActivityDoctor, "Dr. Lee paged", models.StatusComplete, ""),
		seedActivity(now.Add(-6*time.Minute), models.ActivityDoctor, "Dr. Patel paged", models.StatusComplete, ""),
	}

	messages := []models.ChatMessage{
		g.NewMessage("ED monitoring online. 3 active cases.", SenderSystem, "", now.Add(-10*time.Minute)),
		g.NewMessage("Cath lab team notified for STEMI-A1B2C3.", "ED Coordinator", models.AgentEDCoordinator, now.Add(-9*time.Minute)),
		g.NewMessage("Troponin and CBC drawn. Results in ~6 min.", "Lab Service", models.AgentLabService, now.Add(-7*time.Minute)),
		g.NewMessage("ICU-3 held for incoming admission.", "Bed Management", models.AgentBedManagement, now.Add(-4*time.Minute)),
	}

	return models.Snapshot{
		Metrics: models.DashboardMetrics{
			ActiveCases:  len(cases),
			AvgLabETA:    9,
			ICUBedsHeld:  2,
			DoctorsPaged: 2,
			LastUpdated:  now,
		},
		Cases:      cases,
		Activities: activities,
		Messages:   messages,
	}
}

func seedActivity(ts time.Time, t models.ActivityType, msg string, status models.ActivityStatus, caseID string) models.ActivityEntry {
	return models.ActivityEntry{
		ID:        uuid.New().String(),
		Timestamp: ts,
		Type:      t,
		Message:   msg,
		Status:    status,
		CaseID:    caseID,
	}
}
