package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/schema"
	"github.com/labstack/echo/v4"
	"github.com/tasukuchiba/ed_monitor/internal/dashboard"
	"github.com/tasukuchiba/ed_monitor/internal/mockdata"
	"github.com/tasukuchiba/ed_monitor/internal/models"
	"github.com/tasukuchiba/ed_monitor/internal/storage"
)

// Dashboard はハンドラーが利用するダッシュボードの操作
type Dashboard interface {
	Snapshot() (models.Snapshot, error)
	Metrics() (models.DashboardMetrics, error)
	Cases(f dashboard.CaseFilter) ([]models.PatientCase, error)
	Case(id string) (models.PatientCase, error)
	UpdateCaseStatus(id string, status models.CaseStatus) (models.PatientCase, error)
	DischargeCase(id string) (models.PatientCase, error)
	Activities(activityType string, limit int) ([]models.ActivityEntry, error)
	Messages(limit int) ([]models.ChatMessage, error)
	SendMessage(content string) (models.ChatMessage, error)
	SimulateArrival(caseType models.CaseType) (models.PatientCase, error)
}

// ClientCounter は接続中のクライアント数を返す
type ClientCounter interface {
	ClientCount() int
}

// DashboardHandler はダッシュボード関連のHTTPリクエストを処理する
type DashboardHandler struct {
	dashboard Dashboard
	clients   ClientCounter
}

// NewDashboardHandler は新しいDashboardHandlerを作成する
func NewDashboardHandler(d Dashboard, clients ClientCounter) *DashboardHandler {
	return &DashboardHandler{dashboard: d, clients: clients}
}

// StatusResponse は /api/dashboard/status のレスポンス
type StatusResponse struct {
	ConnectedClients int       `json:"connected_clients"`
	ActiveCases      int       `json:"active_cases"`
	SystemStatus     string    `json:"system_status"`
	LastUpdated      time.Time `json:"last_updated"`
}

// UpdateStatusRequest は症例状態の更新リクエストのボディ
type UpdateStatusRequest struct {
	Status models.CaseStatus `json:"status"`
}

// SendMessageRequest はチャット送信リクエストのボディ
type SendMessageRequest struct {
	Content string `json:"content"`
}

// CaseQuery は /api/cases のクエリパラメーター
type CaseQuery struct {
	Type     string `schema:"type"`
	Status   string `schema:"status"`
	Priority uint   `schema:"priority"`
	Page     uint   `schema:"page"`
	Limit    uint   `schema:"limit"`
}

// ActivityQuery は /api/activity のクエリパラメーター
type ActivityQuery struct {
	Type  string `schema:"type"`
	Limit uint   `schema:"limit"`
}

// MessageQuery は /api/chat/messages のクエリパラメーター
type MessageQuery struct {
	Limit uint `schema:"limit"`
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// Register はルーティングを登録する
func (h *DashboardHandler) Register(g *echo.Group) {
	g.GET("/dashboard", h.GetSnapshot)
	g.GET("/dashboard/metrics", h.GetMetrics)
	g.GET("/dashboard/status", h.GetStatus)

	g.GET("/cases", h.ListCases)
	g.GET("/cases/:id", h.GetCase)
	g.PUT("/cases/:id/status", h.UpdateCaseStatus)
	g.DELETE("/cases/:id", h.DischargeCase)

	g.GET("/activity", h.ListActivities)

	g.GET("/chat/messages", h.ListMessages)
	g.POST("/chat/messages", h.SendMessage)

	g.POST("/simulate/:type", h.Simulate)
}

// GetSnapshot はダッシュボード全体の状態を返す
func (h *DashboardHandler) GetSnapshot(c echo.Context) error {
	snap, err := h.dashboard.Snapshot()
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, snap)
}

// GetMetrics は現在のメトリクスを返す
func (h *DashboardHandler) GetMetrics(c echo.Context) error {
	m, err := h.dashboard.Metrics()
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, m)
}

// GetStatus は接続数などの稼働状況を返す
func (h *DashboardHandler) GetStatus(c echo.Context) error {
	m, err := h.dashboard.Metrics()
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, StatusResponse{
		ConnectedClients: h.clients.ClientCount(),
		ActiveCases:      m.ActiveCases,
		SystemStatus:     "operational",
		LastUpdated:      m.LastUpdated,
	})
}

// ListCases は条件に一致する症例を返す
func (h *DashboardHandler) ListCases(c echo.Context) error {
	var q CaseQuery
	if err := decodeQuery(c, &q); err != nil {
		return err
	}
	if q.Priority > models.MaxPriority {
		return echo.NewHTTPError(http.StatusBadRequest, "Priority must be between 1 and 5")
	}

	cases, err := h.dashboard.Cases(dashboard.CaseFilter{
		Type:     models.CaseType(q.Type),
		Status:   models.CaseStatus(q.Status),
		Priority: int(q.Priority),
		Page:     int(q.Page),
		Limit:    int(q.Limit),
	})
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, cases)
}

// GetCase は指定されたIDの症例を返す
func (h *DashboardHandler) GetCase(c echo.Context) error {
	pc, err := h.dashboard.Case(c.Param("id"))
	if err != nil {
		return caseError(err)
	}
	return c.JSON(http.StatusOK, pc)
}

// UpdateCaseStatus は症例の状態を更新する
func (h *DashboardHandler) UpdateCaseStatus(c echo.Context) error {
	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if !models.ValidCaseStatus(req.Status) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown case status")
	}

	pc, err := h.dashboard.UpdateCaseStatus(c.Param("id"), req.Status)
	if err != nil {
		return caseError(err)
	}
	return c.JSON(http.StatusOK, pc)
}

// DischargeCase は症例をライブリストから外す
func (h *DashboardHandler) DischargeCase(c echo.Context) error {
	if _, err := h.dashboard.DischargeCase(c.Param("id")); err != nil {
		return caseError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListActivities はアクティビティログを返す
func (h *DashboardHandler) ListActivities(c echo.Context) error {
	var q ActivityQuery
	if err := decodeQuery(c, &q); err != nil {
		return err
	}
	activities, err := h.dashboard.Activities(q.Type, int(q.Limit))
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, activities)
}

// ListMessages はチャット履歴を返す
func (h *DashboardHandler) ListMessages(c echo.Context) error {
	var q MessageQuery
	if err := decodeQuery(c, &q); err != nil {
		return err
	}
	messages, err := h.dashboard.Messages(int(q.Limit))
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

// SendMessage はチャットメッセージを送信する
func (h *DashboardHandler) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	msg, err := h.dashboard.SendMessage(req.Content)
	if err != nil {
		if errors.Is(err, dashboard.ErrEmptyMessage) {
			return echo.NewHTTPError(http.StatusBadRequest, "Content is required")
		}
		return internalError(err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// Simulate は患者の来院をシミュレーションする
func (h *DashboardHandler) Simulate(c echo.Context) error {
	caseType, ok := models.ParseCaseType(c.Param("type"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown case type")
	}

	pc, err := h.dashboard.SimulateArrival(caseType)
	if err != nil {
		if errors.Is(err, mockdata.ErrUnknownCaseType) {
			return echo.NewHTTPError(http.StatusBadRequest, "Case type cannot be simulated")
		}
		return internalError(err)
	}
	return c.JSON(http.StatusCreated, pc)
}

// decodeQuery はクエリパラメーターを構造体に読み込む
func decodeQuery(c echo.Context, dst interface{}) error {
	if err := queryDecoder.Decode(dst, c.QueryParams()); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters").SetInternal(err)
	}
	return nil
}

func caseError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Case not found")
	}
	return internalError(err)
}

func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}
