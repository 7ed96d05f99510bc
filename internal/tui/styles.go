package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	title   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	sub     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pointer = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	active  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	value   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Bold(true)
	muted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	key     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	changed = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00")).Bold(true)
	good    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")).Bold(true)
	bad     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)

	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	barHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	barMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	barLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// sliderBar draws where v sits between min and max.
func sliderBar(v, min, max float64, width int) string {
	frac := 0.0
	if max > min {
		frac = (v - min) / (max - min)
	}
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case frac > 0.8:
		return barHigh.Render(bar)
	case frac > 0.4:
		return barMid.Render(bar)
	}
	return barLow.Render(bar)
}

// hints renders "key action" pairs.
func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(key.Render(pairs[i]))
		b.WriteString(muted.Render(" " + pairs[i+1] + "  "))
	}
	return strings.TrimRight(b.String(), " ")
}

func separator(width int) string {
	return sub.Render(strings.Repeat("─", width))
}
