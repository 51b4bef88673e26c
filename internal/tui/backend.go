package tui

import (
	"context"
	"log"
	"time"

	"github.com/tasukuchiba/ed_monitor/internal/dashboard"
	"github.com/tasukuchiba/ed_monitor/internal/models"
)

// Backend はダッシュボードの状態を配信し、操作を受け付ける
//
// ローカルではサービスを直接、リモートではWebSocketクライアントを使う。
type Backend interface {
	Events() <-chan models.Event
	SendMessage(content string) error
	Simulate(caseType models.CaseType) error
}

// connectionReporter は現在の接続状態を返せるBackend
type connectionReporter interface {
	Connected() bool
}

// LocalBackend は同一プロセス内のサービスを使うBackend
type LocalBackend struct {
	svc    *dashboard.Service
	events chan models.Event
}

// NewLocalBackend は新しいLocalBackendを作成する
func NewLocalBackend(svc *dashboard.Service) *LocalBackend {
	return &LocalBackend{
		svc:    svc,
		events: make(chan models.Event, 256),
	}
}

// Events はサービスのイベントを返す
func (b *LocalBackend) Events() <-chan models.Event {
	return b.events
}

// Run は接続通知とスナップショットを送った後、サービスのイベントを転送する
func (b *LocalBackend) Run(ctx context.Context) {
	defer close(b.events)

	// スナップショットより前に購読してイベントの取りこぼしを防ぐ
	sub, cancel := b.svc.Subscribe()
	defer cancel()

	snap, err := b.svc.Snapshot()
	if err != nil {
		log.Printf("Failed to load snapshot: %v", err)
		return
	}

	now := time.Now()
	if !b.emit(ctx, models.Event{Type: models.EventConnection, Connected: true, Timestamp: now}) {
		return
	}
	if !b.emit(ctx, models.Event{Type: models.EventSnapshot, Snapshot: &snap, Timestamp: now}) {
		return
	}

	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				b.emit(ctx, models.Event{Type: models.EventConnection, Connected: false, Timestamp: time.Now()})
				return
			}
			if !b.emit(ctx, ev) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// SendMessage はチャットメッセージを送信する
func (b *LocalBackend) SendMessage(content string) error {
	_, err := b.svc.SendMessage(content)
	return err
}

// Simulate は患者の来院をシミュレーションする
func (b *LocalBackend) Simulate(caseType models.CaseType) error {
	_, err := b.svc.SimulateArrival(caseType)
	return err
}

func (b *LocalBackend) emit(ctx context.Context, ev models.Event) bool {
	select {
	case b.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
