package mockdata

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasukuchiba/ed_monitor/internal/models"
)

func TestSimulatePatientArrival(t *testing.T) {
	gen := NewGenerator(1)
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		caseType models.CaseType
		prefix   string
		hr       int
	}{
		{models.CaseSTEMI, "STEMI-", 110},
		{models.CaseStroke, "STROKE-", 80},
		{models.CaseTrauma, "TRAUMA-", 120},
	}

	for _, tt := range tests {
		t.Run(string(tt.caseType), func(t *testing.T) {
			c, err := gen.SimulatePatientArrival(tt.caseType, now)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(c.ID, tt.prefix), "unexpected id %s", c.ID)
			assert.Equal(t, tt.caseType, c.Type)
			assert.Equal(t, tt.hr, c.Vitals.HR)
			assert.Equal(t, models.CaseTriaged, c.Status)
			assert.Equal(t, 1, c.Priority)
			assert.Equal(t, now, c.ArrivedAt)
		})
	}
}

func TestSimulatePatientArrival_UniqueIDs(t *testing.T) {
	gen := NewGenerator(1)
	now := time.Now()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		c, err := gen.SimulatePatientArrival(models.CaseSTEMI, now)
		require.NoError(t, err)
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestSimulatePatientArrival_UnknownType(t *testing.T) {
	gen := NewGenerator(1)

	_, err := gen.SimulatePatientArrival(models.CaseGeneral, time.Now())
	assert.True(t, errors.Is(err, ErrUnknownCaseType))
}

func TestNewMessage_TypeFromSender(t *testing.T) {
	gen := NewGenerator(1)
	now := time.Now()

	user := gen.NewMessage("hi", SenderUser, "", now)
	assert.Equal(t, models.MessageTypeUser, user.Type)
	assert.NotEmpty(t, user.ID)

	system := gen.NewMessage("New patient", SenderSystem, "", now)
	assert.Equal(t, models.MessageTypeSystem, system.Type)

	agent := gen.NewMessage("ok", "ED Coordinator", models.AgentEDCoordinator, now)
	assert.Equal(t, models.MessageTypeAgent, agent.Type)
	assert.Equal(t, models.AgentEDCoordinator, agent.AgentType)
}

func TestRandomActivity_FromFixedChoices(t *testing.T) {
	gen := NewGenerator(42)
	now := time.Now()

	for i := 0; i < 100; i++ {
		a := gen.RandomActivity(now)
		assert.Contains(t, activityTypes, a.Type)
		assert.Contains(t, activityMessages, a.Message)
		assert.Contains(t, activityStatuses, a.Status)
		assert.Empty(t, a.CaseID)
	}
}

func TestChance_Bounds(t *testing.T) {
	gen := NewGenerator(7)

	for i := 0; i < 20; i++ {
		assert.False(t, gen.Chance(0))
		assert.True(t, gen.Chance(1))
	}
}

func TestProtocolActivity(t *testing.T) {
	c := models.PatientCase{ID: "STEMI-000001", Type: models.CaseSTEMI}

	a := ProtocolActivity(c, time.Now())
	assert.Equal(t, "STEMI protocol activated for STEMI-000001", a.Message)
	assert.Equal(t, models.StatusInProgress, a.Status)
	assert.Equal(t, models.ActivitySystem, a.Type)
	assert.Equal(t, "STEMI-000001", a.CaseID)
}

func TestSeed(t *testing.T) {
	gen := NewGenerator(1)
	now := time.Now()

	snap := gen.Seed(now)
	assert.Equal(t, len(snap.Cases), snap.Metrics.ActiveCases)
	assert.NotEmpty(t, snap.Activities)
	assert.NotEmpty(t, snap.Messages)
	assert.LessOrEqual(t, len(snap.Activities), 20)
}
