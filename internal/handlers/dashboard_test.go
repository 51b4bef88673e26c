package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasukuchiba/ed_monitor/internal/dashboard"
	"github.com/tasukuchiba/ed_monitor/internal/mockdata"
	"github.com/tasukuchiba/ed_monitor/internal/models"
	"github.com/tasukuchiba/ed_monitor/internal/storage"
)

type fixedCounter int

func (f fixedCounter) ClientCount() int { return int(f) }

// newTestServer はテスト用のechoインスタンスを作成する
func newTestServer(t *testing.T) (*echo.Echo, *dashboard.Service) {
	t.Helper()
	gen := mockdata.NewGenerator(1)
	store := storage.NewMemoryStorage(gen.Seed(time.Now()))
	svc := dashboard.NewService(store, gen, dashboard.Config{ReplyDelay: time.Hour})
	t.Cleanup(svc.Close)

	e := echo.New()
	NewDashboardHandler(svc, fixedCounter(2)).Register(e.Group("/api"))
	return e, svc
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetSnapshot(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Len(t, snap.Cases, 3)
	assert.Equal(t, 3, snap.Metrics.ActiveCases)
}

func TestGetStatus(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/dashboard/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, 2, status.ConnectedClients)
	assert.Equal(t, 3, status.ActiveCases)
	assert.Equal(t, "operational", status.SystemStatus)
}

func TestGetMetrics(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/dashboard/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var m models.DashboardMetrics
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Equal(t, 9, m.AvgLabETA)
}

func TestSimulate(t *testing.T) {
	e, svc := newTestServer(t)

	rec := doRequest(e, http.MethodPost, "/api/simulate/stemi", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var pc models.PatientCase
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pc))
	assert.Equal(t, models.CaseSTEMI, pc.Type)

	m, _ := svc.Metrics()
	assert.Equal(t, 4, m.ActiveCases)
}

func TestSimulate_BadType(t *testing.T) {
	e, _ := newTestServer(t)

	tests := []struct {
		name string
		path string
	}{
		{"unknown", "/api/simulate/flu"},
		{"no profile", "/api/simulate/general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, http.MethodPost, tt.path, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListCases_Filters(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/cases?type=Stroke", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cases []models.PatientCase
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cases))
	require.Len(t, cases, 1)
	assert.Equal(t, models.CaseStroke, cases[0].Type)

	rec = doRequest(e, http.MethodGet, "/api/cases?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/cases?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/cases?priority=9", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/cases?priority=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/cases?page=99999999999&limit=100000", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// 未知のパラメーターは無視する
	rec = doRequest(e, http.MethodGet, "/api/cases?sort=asc", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetCase(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/cases/STEMI-A1B2C3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var pc models.PatientCase
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pc))
	assert.Equal(t, "STEMI-A1B2C3", pc.ID)

	rec = doRequest(e, http.MethodGet, "/api/cases/non-existent", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCaseStatus(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodPut, "/api/cases/STEMI-A1B2C3/status", `{"status":"Admitted"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var pc models.PatientCase
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pc))
	assert.Equal(t, models.CaseAdmitted, pc.Status)

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"unknown status", "/api/cases/STEMI-A1B2C3/status", `{"status":"Dancing"}`, http.StatusBadRequest},
		{"invalid json", "/api/cases/STEMI-A1B2C3/status", `invalid json`, http.StatusBadRequest},
		{"missing case", "/api/cases/non-existent/status", `{"status":"Admitted"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestDischargeCase(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodDelete, "/api/cases/STEMI-A1B2C3", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// 削除後は取得できない
	rec = doRequest(e, http.MethodGet, "/api/cases/STEMI-A1B2C3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodDelete, "/api/cases/STEMI-A1B2C3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListActivities(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/activity?type=doctor&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var activities []models.ActivityEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&activities))
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActivityDoctor, activities[0].Type)
}

func TestSendMessage(t *testing.T) {
	e, svc := newTestServer(t)
	before, _ := svc.Messages(0)

	rec := doRequest(e, http.MethodPost, "/api/chat/messages", `{"content":"Hello"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var msg models.ChatMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	assert.Equal(t, "Hello", msg.Content)
	assert.Equal(t, "User", msg.Sender)
	assert.NotEmpty(t, msg.ID)

	after, _ := svc.Messages(0)
	assert.Len(t, after, len(before)+1)
}

func TestSendMessage_Invalid(t *testing.T) {
	e, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `invalid json`},
		{"missing content", `{}`},
		{"blank content", `{"content":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, http.MethodPost, "/api/chat/messages", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListMessages_Limit(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/chat/messages?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var messages []models.ChatMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&messages))
	assert.Len(t, messages, 2)
}

func TestMethodNotAllowed(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodPatch, "/api/chat/messages", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
