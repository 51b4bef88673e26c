package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tasukuchiba/ed_monitor/internal/dashboard"
	"github.com/tasukuchiba/ed_monitor/internal/mockdata"
	"github.com/tasukuchiba/ed_monitor/internal/storage"
	"github.com/tasukuchiba/ed_monitor/internal/websocket"
)

func TestNewServer_Routes(t *testing.T) {
	gen := mockdata.NewGenerator(1)
	svc := dashboard.NewService(storage.NewMemoryStorage(gen.Seed(time.Now())), gen, dashboard.Config{})
	defer svc.Close()

	hub := websocket.NewHub(svc)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	e := newServer(svc, hub)

	tests := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/dashboard", http.StatusOK},
		{http.MethodGet, "/api/cases", http.StatusOK},
		{http.MethodGet, "/api/activity", http.StatusOK},
		{http.MethodGet, "/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
