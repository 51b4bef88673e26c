package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tasukuchiba/ed_monitor/internal/models"
)

var (
	colorTitle    = lipgloss.Color("#7aa2f7")
	colorBorder   = lipgloss.Color("#3b4261")
	colorFg       = lipgloss.Color("#c0caf5")
	colorDim      = lipgloss.Color("#565f89")
	colorSelBg    = lipgloss.Color("#283457")
	colorOK       = lipgloss.Color("#9ece6a")
	colorWarn     = lipgloss.Color("#e0af68")
	colorCritical = lipgloss.Color("#f7768e")
)

var (
	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	dimStyle        = lipgloss.NewStyle().Foreground(colorDim)
	selectedStyle   = lipgloss.NewStyle().Background(colorSelBg).Bold(true)
)

// caseTypeColor は症例種別ごとの表示色
func caseTypeColor(t models.CaseType) lipgloss.Color {
	switch t {
	case models.CaseSTEMI, models.CaseTrauma:
		return colorCritical
	case models.CaseStroke:
		return colorWarn
	default:
		return colorFg
	}
}

func activityStatusColor(s models.ActivityStatus) lipgloss.Color {
	switch s {
	case models.StatusReady, models.StatusComplete:
		return colorOK
	case models.StatusPending:
		return colorWarn
	default:
		return colorTitle
	}
}

// senderColor はチャットの送信者の表示色
//
// ユーザーのメッセージはエージェント種別を持たないので灰色になる。
func senderColor(msg models.ChatMessage) lipgloss.Color {
	if msg.Type == models.MessageTypeSystem {
		return colorDim
	}
	return lipgloss.Color(msg.AgentType.Color())
}
