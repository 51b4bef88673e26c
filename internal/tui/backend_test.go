package tui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasukuchiba/ed_monitor/internal/dashboard"
	"github.com/tasukuchiba/ed_monitor/internal/mockdata"
	"github.com/tasukuchiba/ed_monitor/internal/models"
	"github.com/tasukuchiba/ed_monitor/internal/storage"
)

func newLocalBackend(t *testing.T) (*LocalBackend, *dashboard.Service, context.CancelFunc) {
	t.Helper()
	gen := mockdata.NewGenerator(1)
	store := storage.NewMemoryStorage(gen.Seed(time.Now()))
	svc := dashboard.NewService(store, gen, dashboard.Config{ReplyDelay: 10 * time.Millisecond})
	t.Cleanup(svc.Close)

	b := NewLocalBackend(svc)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)
	return b, svc, cancel
}

func nextEvent(t *testing.T, ch <-chan models.Event) models.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}
	return models.Event{}
}

func TestLocalBackend_ConnectsWithSnapshot(t *testing.T) {
	b, _, _ := newLocalBackend(t)

	ev := nextEvent(t, b.Events())
	assert.Equal(t, models.EventConnection, ev.Type)
	assert.True(t, ev.Connected)

	ev = nextEvent(t, b.Events())
	require.Equal(t, models.EventSnapshot, ev.Type)
	assert.Len(t, ev.Snapshot.Cases, 3)
}

func TestLocalBackend_ForwardsServiceEvents(t *testing.T) {
	b, _, _ := newLocalBackend(t)
	nextEvent(t, b.Events())
	nextEvent(t, b.Events())

	require.NoError(t, b.SendMessage("page the doctor"))
	ev := nextEvent(t, b.Events())
	require.Equal(t, models.EventChatMessage, ev.Type)
	assert.Equal(t, "page the doctor", ev.Message.Content)

	ev = nextEvent(t, b.Events())
	require.Equal(t, models.EventChatMessage, ev.Type)
	assert.Equal(t, dashboard.ReplyContent, ev.Message.Content)

	require.NoError(t, b.Simulate(models.CaseTrauma))
	ev = nextEvent(t, b.Events())
	assert.Equal(t, models.EventPatientArrival, ev.Type)
}

func TestLocalBackend_Errors(t *testing.T) {
	b, _, _ := newLocalBackend(t)

	assert.ErrorIs(t, b.SendMessage("   "), dashboard.ErrEmptyMessage)
	assert.ErrorIs(t, b.Simulate(models.CaseGeneral), mockdata.ErrUnknownCaseType)
}

func TestLocalBackend_DisconnectsWhenServiceCloses(t *testing.T) {
	b, svc, _ := newLocalBackend(t)
	nextEvent(t, b.Events())
	nextEvent(t, b.Events())

	svc.Close()

	ev := nextEvent(t, b.Events())
	assert.Equal(t, models.EventConnection, ev.Type)
	assert.False(t, ev.Connected)

	_, ok := <-b.Events()
	assert.False(t, ok)
}

func TestLocalBackend_ClosesOnCancel(t *testing.T) {
	b, _, cancel := newLocalBackend(t)
	nextEvent(t, b.Events())
	nextEvent(t, b.Events())

	cancel()

	select {
	case _, ok := <-b.Events():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("events channel not closed after cancel")
	}
}
