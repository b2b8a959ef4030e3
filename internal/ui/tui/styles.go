package tui

import (
	"github.com/charmbracelet/lipgloss"

	"focustimer/internal/core/model"
)

var (
	focusColor      = lipgloss.Color("#e53935")
	shortBreakColor = lipgloss.Color("#8BC34A")
	longBreakColor  = lipgloss.Color("#2196F3")
	mutedColor      = lipgloss.Color("#7a8699")

	appStyle     = lipgloss.NewStyle().Padding(1, 2)
	clockStyle   = lipgloss.NewStyle().Bold(true).Padding(1, 0)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	taskStyle    = lipgloss.NewStyle().Italic(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
)

func modeColor(mode model.Mode) lipgloss.Color {
	switch mode {
	case model.ModeShortBreak:
		return shortBreakColor
	case model.ModeLongBreak:
		return longBreakColor
	default:
		return focusColor
	}
}

func titleStyle(mode model.Mode) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#f2f2f2")).
		Background(modeColor(mode)).
		Padding(0, 1)
}
