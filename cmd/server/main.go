package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tasukuchiba/ed_monitor/internal/config"
	"github.com/tasukuchiba/ed_monitor/internal/dashboard"
	"github.com/tasukuchiba/ed_monitor/internal/handlers"
	"github.com/tasukuchiba/ed_monitor/internal/mockdata"
	"github.com/tasukuchiba/ed_monitor/internal/storage"
	"github.com/tasukuchiba/ed_monitor/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.LogSummary()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// モックデータでストレージを初期化
	gen := mockdata.NewGenerator(cfg.Seed)
	store := storage.NewMemoryStorage(
		gen.Seed(time.Now()),
		storage.WithActivityLimit(cfg.ActivityLimit),
		storage.WithMessageLimit(cfg.MessageLimit),
	)

	// シミュレーションの起動
	svc := dashboard.NewService(store, gen, cfg.Dashboard())
	defer svc.Close()
	go svc.Run(ctx)

	// WebSocket Hubの初期化と起動
	hub := websocket.NewHub(svc)
	go hub.Run(ctx)

	e := newServer(svc, hub)

	go func() {
		log.Printf("Server starting on %s", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// newServer はルーティングを設定したechoインスタンスを作成する
func newServer(svc *dashboard.Service, hub *websocket.Hub) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool { return c.Path() == "/health" },
	}))

	handlers.NewDashboardHandler(svc, hub).Register(e.Group("/api"))

	// WebSocketエンドポイント
	e.GET("/ws", func(c echo.Context) error {
		websocket.ServeWs(hub, c.Response(), c.Request())
		return nil
	})

	// ヘルスチェック用エンドポイント
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	return e
}
