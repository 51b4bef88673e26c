package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/tasukuchiba/ed_monitor/internal/mockdata"
	"github.com/tasukuchiba/ed_monitor/internal/models"
)

// Dashboard はHubが利用するダッシュボードの操作
type Dashboard interface {
	Snapshot() (models.Snapshot, error)
	SendMessage(content string) (models.ChatMessage, error)
	SimulateArrival(caseType models.CaseType) (models.PatientCase, error)
	Subscribe() (<-chan models.Event, func())
}

// 受信メッセージの種別
const (
	IncomingChat     = "message"
	IncomingSimulate = "simulate"
)

// IncomingMessage はクライアントから受信するメッセージの形式
type IncomingMessage struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	CaseType string `json:"case_type,omitempty"`
}

// directMessage は特定のクライアントだけに送るメッセージ
type directMessage struct {
	client *Client
	data   []byte
}

// Hub は全WebSocketクライアントの接続を管理する
type Hub struct {
	// 接続中のクライアント (Runのgoroutineだけが触る)
	clients map[*Client]bool

	// 個別送信用チャネル
	direct chan directMessage

	// クライアント登録用チャネル
	register chan *Client

	// クライアント登録解除用チャネル
	unregister chan *Client

	// Run終了時にクローズされる
	done chan struct{}

	// 接続数
	count atomic.Int32

	dashboard Dashboard
}

// NewHub は新しいHubを作成する
func NewHub(d Dashboard) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		direct:     make(chan directMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		dashboard:  d,
	}
}

// Run はHubのメインループを開始する。ctxがキャンセルされると全クライアントを切断して戻る
func (h *Hub) Run(ctx context.Context) {
	events, cancel := h.dashboard.Subscribe()
	defer cancel()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int32(len(h.clients)))
			log.Printf("Client registered: %s (total: %d)", client.name, len(h.clients))
			h.sendSnapshot(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				log.Printf("Client unregistered: %s (total: %d)", client.name, len(h.clients))
			}

		case msg := <-h.direct:
			if _, ok := h.clients[msg.client]; ok {
				h.deliver(msg.client, msg.data)
			}

		case ev, ok := <-events:
			if !ok {
				// サービスが停止した
				events = nil
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Failed to encode %s event: %v", ev.Type, err)
				continue
			}
			for client := range h.clients {
				h.deliver(client, data)
			}
		}
	}
}

// ClientCount は接続中のクライアント数を返す
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// HandleIncoming はクライアントからのメッセージを処理する
func (h *Hub) HandleIncoming(c *Client, in IncomingMessage) {
	var err error
	switch in.Type {
	case IncomingChat:
		_, err = h.dashboard.SendMessage(in.Content)
	case IncomingSimulate:
		caseType, ok := models.ParseCaseType(in.CaseType)
		if !ok {
			err = fmt.Errorf("%w: %q", mockdata.ErrUnknownCaseType, in.CaseType)
			break
		}
		_, err = h.dashboard.SimulateArrival(caseType)
	default:
		err = fmt.Errorf("unsupported message type %q", in.Type)
	}

	if err != nil {
		log.Printf("Failed to handle %q from %s: %v", in.Type, c.name, err)
		h.sendError(c, err)
	}
}

// sendError はエラーイベントを送信元のクライアントにだけ返す
func (h *Hub) sendError(c *Client, cause error) {
	data, err := json.Marshal(models.Event{
		Type:      models.EventError,
		Error:     cause.Error(),
		Timestamp: time.Now(),
	})
	if err != nil {
		return
	}
	select {
	case h.direct <- directMessage{client: c, data: data}:
	case <-h.done:
	}
}

func (h *Hub) sendSnapshot(c *Client) {
	snap, err := h.dashboard.Snapshot()
	if err != nil {
		log.Printf("Failed to load snapshot for %s: %v", c.name, err)
		return
	}
	data, err := json.Marshal(models.Event{
		Type:      models.EventSnapshot,
		Snapshot:  &snap,
		Timestamp: time.Now(),
	})
	if err != nil {
		log.Printf("Failed to encode snapshot: %v", err)
		return
	}
	h.deliver(c, data)
}

// deliver は送信バッファに積む。溢れたクライアントは切断する
func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("Client %s is too slow, disconnecting", c.name)
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int32(len(h.clients)))
}
