// Package mockdata はダッシュボードに表示する合成データを生成する
package mockdata

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tasukuchiba/ed_monitor/internal/models"
)

// ErrUnknownCaseType はシミュレーションできない症例種別が指定された場合のエラー
var ErrUnknownCaseType = errors.New("unknown case type")

// 送信者名
const (
	SenderUser   = "User"
	SenderSystem = "System"
)

var (
	activityTypes = []models.ActivityType{
		models.ActivityLab,
		models.ActivityPharm,
		models.ActivitySystem,
	}

	activityMessages = []string{
		"Lab results ready",
		"Medication prepared",
		"Bed assignment updated",
		"Doctor notification sent",
	}

	activityStatuses = []models.ActivityStatus{
		models.StatusReady,
		models.StatusComplete,
		models.StatusPending,
	}
)

// arrivalProfile は症例種別ごとの来院時データ
type arrivalProfile struct {
	vitals         models.Vitals
	chiefComplaint string
	emsReport      string
}

var arrivalProfiles = map[models.CaseType]arrivalProfile{
	models.CaseSTEMI: {
		vitals:         models.Vitals{HR: 110, BPSys: 160, BPDia: 95, SpO2: 94, Temp: 37.2},
		chiefComplaint: "Severe chest pain radiating to left arm and jaw",
		emsReport:      "72-year-old male with crushing chest pain, ST elevation on ECG, suspected STEMI",
	},
	models.CaseStroke: {
		vitals:         models.Vitals{HR: 80, BPSys: 195, BPDia: 118, SpO2: 96, Temp: 36.8},
		chiefComplaint: "Sudden onset weakness and speech difficulty",
		emsReport:      "68-year-old female with left-sided weakness, NIHSS 8, suspected stroke",
	},
	models.CaseTrauma: {
		vitals:         models.Vitals{HR: 120, BPSys: 90, BPDia: 60, SpO2: 92, Temp: 36.5},
		chiefComplaint: "Multiple injuries from motor vehicle accident",
		emsReport:      "25-year-old male, high-speed MVA, multiple trauma, GCS 14",
	},
}

// Generator は合成データのジェネレーター
//
// 乱数源を内部に持つため、複数のgoroutineから安全に呼び出せる。
type Generator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	nextBed int
}

// NewGenerator は指定したシードで新しいGeneratorを作成する
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:     rand.New(rand.NewSource(seed)),
		nextBed: 4,
	}
}

// Chance は確率pでtrueを返す
func (g *Generator) Chance(p float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64() < p
}

// SimulatePatientArrival は指定された種別の新しい症例を作成する
func (g *Generator) SimulatePatientArrival(caseType models.CaseType, now time.Time) (models.PatientCase, error) {
	profile, ok := arrivalProfiles[caseType]
	if !ok {
		return models.PatientCase{}, fmt.Errorf("%w: %q", ErrUnknownCaseType, caseType)
	}

	g.mu.Lock()
	bed := g.nextBed
	g.nextBed++
	g.mu.Unlock()

	return models.PatientCase{
		ID:             caseID(caseType),
		Type:           caseType,
		ArrivedAt:      now,
		Vitals:         profile.vitals,
		Status:         models.CaseTriaged,
		Location:       fmt.Sprintf("ED-%d", bed),
		LabETA:         8,
		AssignedBed:    fmt.Sprintf("ED-Bed%d", bed),
		Priority:       1,
		ChiefComplaint: profile.chiefComplaint,
		EMSReport:      profile.emsReport,
	}, nil
}

// NewMessage は新しいチャットメッセージを作成する
//
// 種別は送信者から決まる: User はユーザー、System はシステム、それ以外はエージェント。
func (g *Generator) NewMessage(content, sender string, agent models.AgentType, now time.Time) models.ChatMessage {
	msgType := models.MessageTypeAgent
	switch sender {
	case SenderUser:
		msgType = models.MessageTypeUser
	case SenderSystem:
		msgType = models.MessageTypeSystem
	}

	return models.ChatMessage{
		ID:        uuid.New().String(),
		Sender:    sender,
		Content:   content,
		Type:      msgType,
		AgentType: agent,
		Timestamp: now,
	}
}

// RandomActivity は固定の候補からランダムなアクティビティを作成する
func (g *Generator) RandomActivity(now time.Time) models.ActivityEntry {
	g.mu.Lock()
	defer g.mu.Unlock()

	return models.ActivityEntry{
		ID:        uuid.New().String(),
		Timestamp: now,
		Type:      activityTypes[g.rng.Intn(len(activityTypes))],
		Message:   activityMessages[g.rng.Intn(len(activityMessages))],
		Status:    activityStatuses[g.rng.Intn(len(activityStatuses))],
	}
}

// ProtocolActivity は症例の来院時に記録するプロトコル開始アクティビティを作成する
func ProtocolActivity(c models.PatientCase, now time.Time) models.ActivityEntry {
	return models.ActivityEntry{
		ID:        uuid.New().String(),
		Timestamp: now,
		Type:      models.ActivitySystem,
		Message:   fmt.Sprintf("%s protocol activated for %s", c.Type, c.ID),
		Status:    models.StatusInProgress,
		CaseID:    c.ID,
	}
}

func caseID(t models.CaseType) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return strings.ToUpper(string(t)) + "-" + suffix
}
