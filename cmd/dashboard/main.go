package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tasukuchiba/ed_monitor/internal/client"
	"github.com/tasukuchiba/ed_monitor/internal/config"
	"github.com/tasukuchiba/ed_monitor/internal/dashboard"
	"github.com/tasukuchiba/ed_monitor/internal/mockdata"
	"github.com/tasukuchiba/ed_monitor/internal/storage"
	"github.com/tasukuchiba/ed_monitor/internal/tui"
)

func main() {
	// .env を先に読み込んで DASHBOARD_SERVER をフラグの既定値に使う
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	server := flag.String("server", os.Getenv("DASHBOARD_SERVER"), "WebSocket URL of the dashboard server (e.g. ws://localhost:8080/ws). Runs the simulation in-process when empty")
	logFile := flag.String("log", "dashboard.log", "log file path")
	flag.Parse()

	// 画面が崩れないようにログはファイルへ書き出す
	f, err := tea.LogToFile(*logFile, "dashboard")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend := newBackend(ctx, cfg, *server)

	p := tea.NewProgram(tui.New(backend), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newBackend はURLが指定されればリモート、なければローカルのBackendを起動する
func newBackend(ctx context.Context, cfg config.Config, serverURL string) tui.Backend {
	if serverURL != "" {
		log.Printf("Connecting to %s", serverURL)
		c := client.New(serverURL)
		go c.Run(ctx)
		return c
	}

	cfg.LogSummary()

	gen := mockdata.NewGenerator(cfg.Seed)
	store := storage.NewMemoryStorage(
		gen.Seed(time.Now()),
		storage.WithActivityLimit(cfg.ActivityLimit),
		storage.WithMessageLimit(cfg.MessageLimit),
	)
	svc := dashboard.NewService(store, gen, cfg.Dashboard())
	context.AfterFunc(ctx, svc.Close)
	go svc.Run(ctx)

	b := tui.NewLocalBackend(svc)
	go b.Run(ctx)
	return b
}
