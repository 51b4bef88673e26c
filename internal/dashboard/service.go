// Package dashboard はED監視ダッシュボードの状態をシミュレーションする
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/tasukuchiba/ed_monitor/internal/mockdata"
	"github.com/tasukuchiba/ed_monitor/internal/models"
	"github.com/tasukuchiba/ed_monitor/internal/storage"
)

// ErrEmptyMessage は空のチャットメッセージが送信された場合のエラー
var ErrEmptyMessage = errors.New("message content is empty")

// ErrClosed は停止後のServiceが呼び出された場合のエラー
var ErrClosed = errors.New("dashboard service is closed")

// ReplyContent はエージェントの自動応答
const ReplyContent = "Message received. Processing request..."

const (
	DefaultTickInterval     = 10 * time.Second
	DefaultReplyDelay       = time.Second
	DefaultActivityChance   = 0.3
	DefaultSubscriberBuffer = 64
)

// Config はServiceの動作設定
type Config struct {
	// 定期更新の間隔
	TickInterval time.Duration

	// チャット送信からエージェント応答までの遅延
	ReplyDelay time.Duration

	// 定期更新でアクティビティが追加される確率
	ActivityChance float64

	// 購読者ごとのイベントバッファ
	SubscriberBuffer int
}

// DefaultConfig は既定の設定を返す
func DefaultConfig() Config {
	return Config{
		TickInterval:     DefaultTickInterval,
		ReplyDelay:       DefaultReplyDelay,
		ActivityChance:   DefaultActivityChance,
		SubscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Service はダッシュボード状態を更新し、変更をイベントとして配信する
type Service struct {
	store storage.Storage
	gen   *mockdata.Generator
	cfg   Config
	now   func() time.Time

	mu          sync.Mutex
	subscribers map[int]chan models.Event
	nextSubID   int
	timers      map[*time.Timer]struct{}
	closed      bool
}

// NewService は新しいServiceを作成する
func NewService(store storage.Storage, gen *mockdata.Generator, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.ReplyDelay < 0 {
		cfg.ReplyDelay = def.ReplyDelay
	}
	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = def.SubscriberBuffer
	}

	return &Service{
		store:       store,
		gen:         gen,
		cfg:         cfg,
		now:         time.Now,
		subscribers: make(map[int]chan models.Event),
		timers:      make(map[*time.Timer]struct{}),
	}
}

// Run は定期更新のループを開始する。ctxがキャンセルされるまで戻らない
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	log.Printf("Dashboard simulation started (interval: %s)", s.cfg.TickInterval)
	for {
		select {
		case <-ctx.Done():
			log.Println("Dashboard simulation stopped")
			return ctx.Err()
		case t := <-ticker.C:
			if err := s.Tick(t); err != nil {
				log.Printf("Tick failed: %v", err)
			}
		}
	}
}

// Close は保留中の応答タイマーを止め、全ての購読を終了する
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	for t := range s.timers {
		t.Stop()
	}
	s.timers = nil

	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
}

// Tick はメトリクスの更新時刻を進め、一定確率でアクティビティを追加する
func (s *Service) Tick(now time.Time) error {
	metrics, err := s.store.UpdateMetrics(func(m *models.DashboardMetrics) {
		m.LastUpdated = now
	})
	if err != nil {
		return fmt.Errorf("update metrics: %w", err)
	}
	s.publish(models.Event{Type: models.EventMetrics, Metrics: &metrics, Timestamp: now})

	if !s.gen.Chance(s.cfg.ActivityChance) {
		return nil
	}

	activity := s.gen.RandomActivity(now)
	if err := s.store.PrependActivity(activity); err != nil {
		return fmt.Errorf("prepend activity: %w", err)
	}
	s.publish(models.Event{Type: models.EventActivity, Activity: &activity, Timestamp: now})
	return nil
}

// SimulateArrival は指定された種別の患者の来院をシミュレーションする
func (s *Service) SimulateArrival(caseType models.CaseType) (models.PatientCase, error) {
	now := s.now()

	patient, err := s.gen.SimulatePatientArrival(caseType, now)
	if err != nil {
		return models.PatientCase{}, err
	}

	if err := s.store.PrependCase(patient); err != nil {
		return models.PatientCase{}, fmt.Errorf("prepend case: %w", err)
	}
	s.publish(models.Event{Type: models.EventPatientArrival, Case: &patient, Timestamp: now})

	metrics, err := s.store.UpdateMetrics(func(m *models.DashboardMetrics) {
		m.ActiveCases++
		m.LastUpdated = now
	})
	if err != nil {
		return models.PatientCase{}, fmt.Errorf("update metrics: %w", err)
	}
	s.publish(models.Event{Type: models.EventMetrics, Metrics: &metrics, Timestamp: now})

	systemMsg := s.gen.NewMessage(
		fmt.Sprintf("New %s patient arrived: %s", patient.Type, patient.ID),
		mockdata.SenderSystem, "", now,
	)
	if err := s.appendMessage(systemMsg); err != nil {
		return models.PatientCase{}, err
	}

	activity := mockdata.ProtocolActivity(patient, now)
	if err := s.store.PrependActivity(activity); err != nil {
		return models.PatientCase{}, fmt.Errorf("prepend activity: %w", err)
	}
	s.publish(models.Event{Type: models.EventActivity, Activity: &activity, Timestamp: now})

	log.Printf("Simulated %s arrival: %s", patient.Type, patient.ID)
	return patient, nil
}

// SendMessage はユーザーのメッセージを追加し、遅延後にエージェントの応答を追加する
func (s *Service) SendMessage(content string) (models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return models.ChatMessage{}, ErrClosed
	}

	msg := s.gen.NewMessage(content, mockdata.SenderUser, "", s.now())
	if err := s.appendMessage(msg); err != nil {
		return models.ChatMessage{}, err
	}

	sender, agent := replyAgent(content)
	s.after(s.cfg.ReplyDelay, func() {
		reply := s.gen.NewMessage(ReplyContent, sender, agent, s.now())
		if err := s.appendMessage(reply); err != nil {
			log.Printf("Failed to append agent reply: %v", err)
		}
	})

	return msg, nil
}

// UpdateCaseStatus は症例の状態を変更する
func (s *Service) UpdateCaseStatus(id string, status models.CaseStatus) (models.PatientCase, error) {
	c, old, err := s.store.UpdateCaseStatus(id, status)
	if err != nil {
		return models.PatientCase{}, err
	}
	s.publish(models.Event{Type: models.EventCaseUpdate, Case: &c, Timestamp: s.now()})
	log.Printf("Updated case %s status from %s to %s", id, old, status)
	return c, nil
}

// DischargeCase は症例をライブリストから外す
func (s *Service) DischargeCase(id string) (models.PatientCase, error) {
	now := s.now()

	c, err := s.store.DeleteCase(id)
	if err != nil {
		return models.PatientCase{}, err
	}
	c.Status = models.CaseDischarged
	s.publish(models.Event{Type: models.EventCaseDischarged, Case: &c, Timestamp: now})

	metrics, err := s.store.UpdateMetrics(func(m *models.DashboardMetrics) {
		if m.ActiveCases > 0 {
			m.ActiveCases--
		}
		m.LastUpdated = now
	})
	if err != nil {
		return models.PatientCase{}, fmt.Errorf("update metrics: %w", err)
	}
	s.publish(models.Event{Type: models.EventMetrics, Metrics: &metrics, Timestamp: now})

	log.Printf("Discharged case %s", id)
	return c, nil
}

// Snapshot はダッシュボード全体の状態を返す
func (s *Service) Snapshot() (models.Snapshot, error) {
	return s.store.Snapshot()
}

// Subscribe はイベントの購読を開始する。返された関数で購読を終了する
//
// バッファが溢れた購読者へのイベントは捨てられる。
func (s *Service) Subscribe() (<-chan models.Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan models.Event, s.cfg.SubscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ch, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(ch)
		}
	}
}

func (s *Service) appendMessage(msg models.ChatMessage) error {
	if err := s.store.AppendMessage(msg); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	s.publish(models.Event{Type: models.EventChatMessage, Message: &msg, Timestamp: msg.Timestamp})
	return nil
}

func (s *Service) publish(ev models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			log.Printf("Subscriber %d is slow, dropping %s event", id, ev.Type)
		}
	}
}

// after はClose時に止められるタイマーでfnを遅延実行する
func (s *Service) after(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		delete(s.timers, t)
		s.mu.Unlock()
		fn()
	})
	s.timers[t] = struct{}{}
}

// replyAgent はメッセージの内容から応答するエージェントを選ぶ
func replyAgent(content string) (string, models.AgentType) {
	lower := strings.ToLower(content)
	switch {
	case strings.Contains(lower, "lab"):
		return "Lab Service", models.AgentLabService
	case strings.Contains(lower, "medication"), strings.Contains(lower, "drug"):
		return "Pharmacy", models.AgentPharmacy
	case strings.Contains(lower, "bed"):
		return "Bed Management", models.AgentBedManagement
	case strings.Contains(lower, "doctor"), strings.Contains(lower, "specialist"):
		return "Specialist Coordinator", models.AgentSpecialistCoordinator
	default:
		return "ED Coordinator", models.AgentEDCoordinator
	}
}
