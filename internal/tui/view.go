package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/tasukuchiba/ed_monitor/internal/models"
)

func (m Model) View() string {
	w := m.width
	if w == 0 {
		w = defaultWidth
	}

	if m.loading {
		s := lipgloss.NewStyle().Width(w).Align(lipgloss.Center).Foreground(colorTitle)
		return s.Render(m.spinner.View() + "  Connecting to ED monitor...")
	}

	sections := []string{
		m.headerView(w),
		m.metricsView(w),
		lipgloss.JoinHorizontal(lipgloss.Top, m.casesView(w*3/5), m.activityView(w-w*3/5)),
		m.chatView(w),
	}
	if m.status != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(colorCritical).Render("! "+m.status))
	}
	sections = append(sections, dimStyle.Width(w).Align(lipgloss.Center).Render(m.help.View(keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// headerView はタイトル、接続状態、シミュレーションボタン
func (m Model) headerView(w int) string {
	badge := lipgloss.NewStyle().Foreground(colorOK).Render("● Connected")
	if !m.connected {
		badge = lipgloss.NewStyle().Foreground(colorCritical).Render("○ Disconnected")
	}

	button := lipgloss.NewStyle().
		Foreground(colorFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		button.Render("F1 Simulate STEMI"),
		button.Render("F2 Simulate Stroke"),
		button.Render("F3 Simulate Trauma"),
	)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorTitle).Render("ED Flow Monitor")
	left := lipgloss.JoinVertical(lipgloss.Left, title, badge)

	gap := w - lipgloss.Width(left) - lipgloss.Width(buttons) - 4
	if gap < 1 {
		gap = 1
	}
	return panelStyle.Width(w - 2).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, left, strings.Repeat(" ", gap), buttons))
}

// metricsView は4枚のメトリクスカード
func (m Model) metricsView(w int) string {
	cardW := (w - 8) / 4
	card := func(label, value string) string {
		return panelStyle.Width(cardW).Render(
			dimStyle.Render(label) + "\n" +
				lipgloss.NewStyle().Bold(true).Foreground(colorFg).Render(value))
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Active Cases", fmt.Sprintf("%d", m.metrics.ActiveCases)),
		card("Avg Lab ETA", fmt.Sprintf("%d min", m.metrics.AvgLabETA)),
		card("ICU Beds Held", fmt.Sprintf("%d", m.metrics.ICUBedsHeld)),
		card("Doctors Paged", fmt.Sprintf("%d", m.metrics.DoctorsPaged)),
	)

	updated := "--"
	if !m.metrics.LastUpdated.IsZero() {
		updated = m.metrics.LastUpdated.Local().Format("15:04:05")
	}
	return lipgloss.JoinVertical(lipgloss.Right, cards, dimStyle.Render("Last updated "+updated))
}

// casesView はライブ症例リスト
func (m Model) casesView(w int) string {
	rows := []string{panelTitleStyle.Render(fmt.Sprintf("Live Cases (%d)", len(m.cases)))}
	if len(m.cases) == 0 {
		rows = append(rows, dimStyle.Render("No active cases"))
	}

	now := m.now()
	for i, c := range m.cases {
		typ := lipgloss.NewStyle().Foreground(caseTypeColor(c.Type)).Bold(true).Render(fmt.Sprintf("%-6s", c.Type))
		line := fmt.Sprintf("%s %-15s %3dm  %s  %s", typ, c.ID, c.DurationMinutes(now), vitalsLine(c.Vitals), c.Status)
		if m.focus == focusCases && i == m.cursor {
			line = selectedStyle.Render(line)
		}
		rows = append(rows, line)

		if m.expanded == c.ID {
			rows = append(rows, dimStyle.Render(fmt.Sprintf("  P%d  %s  bed %s  lab ETA %d min",
				c.Priority, c.Location, lo.Ternary(c.AssignedBed == "", "--", c.AssignedBed), c.LabETA)))
			if c.ChiefComplaint != "" {
				rows = append(rows, dimStyle.Render("  "+c.ChiefComplaint))
			}
			if c.EMSReport != "" {
				rows = append(rows, dimStyle.Render("  EMS: "+c.EMSReport))
			}
		}
	}
	return panelStyle.Width(w - 2).Render(strings.Join(rows, "\n"))
}

func vitalsLine(v models.Vitals) string {
	return fmt.Sprintf("HR %d  BP %d/%d  SpO2 %d%%  T %.1f", v.HR, v.BPSys, v.BPDia, v.SpO2, v.Temp)
}

// activityView は新しい順のアクティビティログ
func (m Model) activityView(w int) string {
	rows := []string{panelTitleStyle.Render("Activity Log")}
	for _, a := range m.activities {
		status := lipgloss.NewStyle().Foreground(activityStatusColor(a.Status)).Render(string(a.Status))
		rows = append(rows, fmt.Sprintf("%s %-6s %s  %s",
			dimStyle.Render(a.Timestamp.Local().Format("15:04")), a.Type, a.Message, status))
	}
	return panelStyle.Width(w - 2).Render(strings.Join(rows, "\n"))
}

// chatView はチャットパネル。最小化時は直近のメッセージだけを表示する
func (m Model) chatView(w int) string {
	title := panelTitleStyle.Render("Agent Chat")
	if m.minimized {
		recent := lo.Subset(m.messages, -minimizedMessages, minimizedMessages)
		lines := lo.Map(recent, func(msg models.ChatMessage, _ int) string {
			return renderMessage(msg, w-4)
		})
		return panelStyle.Width(w - 2).Render(
			title + dimStyle.Render("  (minimized)") + "\n" + strings.Join(lines, "\n"))
	}

	return panelStyle.Width(w - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, m.chat.View(), m.input.View()))
}

// renderMessage は時刻、送信者の頭文字、送信者名と本文を1行に描画する
func renderMessage(msg models.ChatMessage, w int) string {
	color := senderColor(msg)
	initial := "?"
	if r := []rune(msg.Sender); len(r) > 0 {
		initial = strings.ToUpper(string(r[0]))
	}

	avatar := lipgloss.NewStyle().Foreground(color).Bold(true).Render("(" + initial + ")")
	sender := lipgloss.NewStyle().Foreground(color).Render(msg.Sender + ":")
	line := fmt.Sprintf("%s %s %s %s", dimStyle.Render(msg.Timestamp.Local().Format("15:04")), avatar, sender, msg.Content)
	if w > 0 {
		line = lipgloss.NewStyle().Width(w).Render(line)
	}
	return line
}
