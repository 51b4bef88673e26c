// Package tui はターミナル版のED監視ダッシュボード
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/tasukuchiba/ed_monitor/internal/models"
)

const (
	// アクティビティログの最大表示件数
	maxActivityRows = 20

	// 最小化時に表示するメッセージ数
	minimizedMessages = 3

	inputPlaceholder        = "Type a message..."
	disconnectedPlaceholder = "Disconnected..."

	defaultWidth      = 120
	defaultChatHeight = 8
)

type focusArea int

const (
	focusChat focusArea = iota
	focusCases
)

// eventMsg はBackendから届いたイベント
type eventMsg models.Event

// eventsClosedMsg はBackendのイベントチャネルが閉じられたことを表す
type eventsClosedMsg struct{}

// backendErrMsg は送信やシミュレーションの失敗
type backendErrMsg struct{ err error }

// Model はダッシュボード画面の状態
type Model struct {
	backend Backend
	events  <-chan models.Event

	connected bool
	loading   bool
	status    string

	metrics    models.DashboardMetrics
	cases      []models.PatientCase
	activities []models.ActivityEntry
	messages   []models.ChatMessage

	cursor   int
	expanded string

	focus     focusArea
	minimized bool
	input     textinput.Model
	chat      viewport.Model

	spinner spinner.Model
	help    help.Model
	width   int

	now func() time.Time
}

// New は新しいModelを作成する
func New(b Backend) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(colorTitle)

	in := textinput.New()
	in.Placeholder = disconnectedPlaceholder
	in.CharLimit = 500

	m := Model{
		backend: b,
		events:  b.Events(),
		loading: true,
		focus:   focusChat,
		input:   in,
		chat:    viewport.New(defaultWidth-4, defaultChatHeight),
		spinner: sp,
		help:    help.New(),
		width:   defaultWidth,
		now:     time.Now,
	}
	if r, ok := b.(connectionReporter); ok {
		m.connected = r.Connected()
		m.syncInput()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events), textinput.Blink)
}

func waitForEvent(ch <-chan models.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.chat.Width = msg.Width - 4
		m.refreshChat()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		cmd := m.apply(models.Event(msg))
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case eventsClosedMsg:
		m.connected = false
		m.syncInput()
		return m, nil

	case backendErrMsg:
		m.status = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusChat {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, keys.STEMI):
		return m, simulateCmd(m.backend, models.CaseSTEMI)
	case key.Matches(msg, keys.Stroke):
		return m, simulateCmd(m.backend, models.CaseStroke)
	case key.Matches(msg, keys.Trauma):
		return m, simulateCmd(m.backend, models.CaseTrauma)
	case key.Matches(msg, keys.Minimize):
		m.minimized = !m.minimized
		if m.minimized {
			m.focus = focusCases
		}
		return m, m.syncInput()
	case key.Matches(msg, keys.Focus):
		if m.minimized {
			return m, nil
		}
		if m.focus == focusChat {
			m.focus = focusCases
		} else {
			m.focus = focusChat
		}
		return m, m.syncInput()
	}

	if m.focus == focusChat {
		if key.Matches(msg, keys.Send) {
			return m.submit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.cases)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Detail):
		m.toggleCase()
	}
	return m, nil
}

// submit は入力欄の内容を送信する
//
// 空の入力と未接続時の送信は無視し、入力欄もそのまま残す。
func (m Model) submit() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" || !m.connected {
		return m, nil
	}
	m.input.Reset()
	m.status = ""
	return m, sendCmd(m.backend, content)
}

func sendCmd(b Backend, content string) tea.Cmd {
	return func() tea.Msg {
		if err := b.SendMessage(content); err != nil {
			return backendErrMsg{err: err}
		}
		return nil
	}
}

func simulateCmd(b Backend, t models.CaseType) tea.Cmd {
	return func() tea.Msg {
		if err := b.Simulate(t); err != nil {
			return backendErrMsg{err: err}
		}
		return nil
	}
}

// toggleCase は選択中の症例の詳細表示を切り替える
func (m *Model) toggleCase() {
	if m.cursor >= len(m.cases) {
		return
	}
	id := m.cases[m.cursor].ID
	if m.expanded == id {
		m.expanded = ""
		return
	}
	m.expanded = id
}

// apply はイベントを画面の状態に反映する
func (m *Model) apply(ev models.Event) tea.Cmd {
	switch ev.Type {
	case models.EventConnection:
		m.connected = ev.Connected
		return m.syncInput()

	case models.EventSnapshot:
		if ev.Snapshot == nil {
			return nil
		}
		m.loading = false
		m.metrics = ev.Snapshot.Metrics
		m.cases = ev.Snapshot.Cases
		m.activities = lo.Subset(ev.Snapshot.Activities, 0, maxActivityRows)
		m.messages = ev.Snapshot.Messages
		m.clampCursor()
		m.refreshChat()

	case models.EventChatMessage:
		if ev.Message == nil || m.hasMessage(ev.Message.ID) {
			return nil
		}
		m.messages = append(m.messages, *ev.Message)
		m.refreshChat()

	case models.EventActivity:
		if ev.Activity == nil || m.hasActivity(ev.Activity.ID) {
			return nil
		}
		m.activities = append([]models.ActivityEntry{*ev.Activity}, m.activities...)
		if len(m.activities) > maxActivityRows {
			m.activities = m.activities[:maxActivityRows]
		}

	case models.EventPatientArrival:
		if ev.Case == nil {
			return nil
		}
		if _, ok := lo.Find(m.cases, func(c models.PatientCase) bool { return c.ID == ev.Case.ID }); ok {
			return nil
		}
		m.cases = append([]models.PatientCase{*ev.Case}, m.cases...)

	case models.EventCaseUpdate:
		if ev.Case == nil {
			return nil
		}
		_, idx, ok := lo.FindIndexOf(m.cases, func(c models.PatientCase) bool { return c.ID == ev.Case.ID })
		if ok {
			m.cases[idx] = *ev.Case
		}

	case models.EventCaseDischarged:
		if ev.Case == nil {
			return nil
		}
		m.cases = lo.Reject(m.cases, func(c models.PatientCase, _ int) bool { return c.ID == ev.Case.ID })
		if m.expanded == ev.Case.ID {
			m.expanded = ""
		}
		m.clampCursor()

	case models.EventMetrics:
		if ev.Metrics != nil {
			m.metrics = *ev.Metrics
		}

	case models.EventError:
		m.status = ev.Error
	}
	return nil
}

func (m *Model) hasMessage(id string) bool {
	return lo.ContainsBy(m.messages, func(msg models.ChatMessage) bool { return msg.ID == id })
}

func (m *Model) hasActivity(id string) bool {
	return lo.ContainsBy(m.activities, func(a models.ActivityEntry) bool { return a.ID == id })
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.cases) {
		m.cursor = max(len(m.cases)-1, 0)
	}
}

// syncInput は接続状態とフォーカスに合わせて入力欄を切り替える
func (m *Model) syncInput() tea.Cmd {
	if !m.connected {
		m.input.Placeholder = disconnectedPlaceholder
		m.input.Blur()
		return nil
	}
	m.input.Placeholder = inputPlaceholder
	if m.focus == focusChat && !m.minimized {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

// refreshChat はチャット履歴を描画し直し、最新のメッセージまでスクロールする
func (m *Model) refreshChat() {
	lines := lo.Map(m.messages, func(msg models.ChatMessage, _ int) string {
		return renderMessage(msg, m.chat.Width)
	})
	m.chat.SetContent(strings.Join(lines, "\n"))
	m.chat.GotoBottom()
}
