// Package client はダッシュボードサーバーに接続するWebSocketクライアント
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tasukuchiba/ed_monitor/internal/models"
)

// ErrNotConnected はサーバーに接続していない状態で送信した場合のエラー
var ErrNotConnected = errors.New("not connected to dashboard server")

const (
	// 書き込み待機時間
	writeWait = 10 * time.Second

	// 再接続までの待機時間
	defaultRetryDelay = 2 * time.Second
)

// outgoingMessage はサーバーへ送るメッセージの形式
type outgoingMessage struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	CaseType string `json:"case_type,omitempty"`
}

// Client はダッシュボードサーバーとのWebSocket接続を維持する
type Client struct {
	url        string
	dialer     *websocket.Dialer
	retryDelay time.Duration

	mu   sync.Mutex
	conn *websocket.Conn

	events chan models.Event
}

// New は新しいClientを作成する。urlは ws://host:port/ws 形式
func New(url string) *Client {
	return &Client{
		url:        url,
		dialer:     websocket.DefaultDialer,
		retryDelay: defaultRetryDelay,
		events:     make(chan models.Event, 256),
	}
}

// Events はサーバーから受信したイベントと接続状態の変化を返す
func (c *Client) Events() <-chan models.Event {
	return c.events
}

// Connected は現在接続中かどうかを返す
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Run は接続と受信のループを開始する。切断されると再接続する
//
// ctxがキャンセルされるとEventsのチャネルをクローズして戻る。
func (c *Client) Run(ctx context.Context) {
	defer close(c.events)

	for {
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			log.Printf("Dial %s failed: %v", c.url, err)
		} else {
			c.setConn(conn)
			c.emit(ctx, models.Event{Type: models.EventConnection, Connected: true, Timestamp: time.Now()})

			// ctxのキャンセルで読み込みを中断する
			stop := context.AfterFunc(ctx, func() { conn.Close() })
			c.readLoop(ctx, conn)
			stop()

			c.setConn(nil)
			conn.Close()
			c.emit(ctx, models.Event{Type: models.EventConnection, Connected: false, Timestamp: time.Now()})
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.retryDelay):
		}
	}
}

// SendMessage はチャットメッセージを送信する
func (c *Client) SendMessage(content string) error {
	return c.write(outgoingMessage{Type: "message", Content: content})
}

// Simulate は患者の来院シミュレーションを要求する
func (c *Client) Simulate(caseType models.CaseType) error {
	return c.write(outgoingMessage{Type: "simulate", CaseType: string(caseType)})
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("Connection lost: %v", err)
			}
			return
		}

		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("Failed to parse event: %v", err)
			continue
		}
		c.emit(ctx, ev)
	}
}

func (c *Client) write(msg outgoingMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %s: %w", msg.Type, err)
	}
	return nil
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
}

func (c *Client) emit(ctx context.Context, ev models.Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}
