package dashboard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasukuchiba/ed_monitor/internal/models"
)

func TestCases_Filters(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	for _, ct := range []models.CaseType{models.CaseSTEMI, models.CaseSTEMI, models.CaseTrauma} {
		_, err := svc.SimulateArrival(ct)
		require.NoError(t, err)
	}

	stemi, err := svc.Cases(CaseFilter{Type: models.CaseSTEMI})
	require.NoError(t, err)
	for _, c := range stemi {
		assert.Equal(t, models.CaseSTEMI, c.Type)
	}
	// シードのSTEMI 1件 + シミュレーション 2件
	assert.Len(t, stemi, 3)

	lower, err := svc.Cases(CaseFilter{Type: "trauma"})
	require.NoError(t, err)
	assert.Len(t, lower, 1)

	critical, err := svc.Cases(CaseFilter{Priority: 3})
	require.NoError(t, err)
	assert.Len(t, critical, 1)

	triaged, err := svc.Cases(CaseFilter{Status: models.CaseTriaged})
	require.NoError(t, err)
	for _, c := range triaged {
		assert.Equal(t, models.CaseTriaged, c.Status)
	}
}

func TestCases_Pagination(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	all, err := svc.Cases(CaseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	page1, _ := svc.Cases(CaseFilter{Page: 1, Limit: 2})
	page2, _ := svc.Cases(CaseFilter{Page: 2, Limit: 2})
	page3, _ := svc.Cases(CaseFilter{Page: 3, Limit: 2})

	assert.Len(t, page1, 2)
	assert.Len(t, page2, 1)
	assert.Empty(t, page3)
	assert.Equal(t, all[2].ID, page2[0].ID)
}

func TestCases_PageBounds(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	huge, err := svc.Cases(CaseFilter{Page: math.MaxInt, Limit: 50})
	require.NoError(t, err)
	assert.NotNil(t, huge)
	assert.Empty(t, huge)

	capped, err := svc.Cases(CaseFilter{Limit: math.MaxInt})
	require.NoError(t, err)
	assert.Len(t, capped, 3)

	assert.Equal(t, MaxPageLimit, clampLimit(1000, DefaultPageLimit, MaxPageLimit))
}

func TestActivities_FilterAndLimit(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	doctors, err := svc.Activities("doctor", 0)
	require.NoError(t, err)
	assert.Len(t, doctors, 2)

	one, err := svc.Activities("", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	all, err := svc.Activities("", 1000)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(all), MaxActivityLimit)
}

func TestMessages_Limit(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	all, err := svc.Messages(0)
	require.NoError(t, err)

	last2, err := svc.Messages(2)
	require.NoError(t, err)
	require.Len(t, last2, 2)
	assert.Equal(t, all[len(all)-1].ID, last2[1].ID)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0, 20, 100))
	assert.Equal(t, 5, clampLimit(5, 20, 100))
	assert.Equal(t, 100, clampLimit(500, 20, 100))
}
