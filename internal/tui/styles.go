package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/tokenmeter/internal/core"
)

// Catppuccin Mocha subset.
var (
	colorText    = lipgloss.Color("#CDD6F4")
	colorSubtext = lipgloss.Color("#A6ADC8")
	colorDim     = lipgloss.Color("#585B70")
	colorAccent  = lipgloss.Color("#CBA6F7")
	colorGreen   = lipgloss.Color("#A6E3A1")
	colorYellow  = lipgloss.Color("#F9E2AF")
	colorRed     = lipgloss.Color("#F38BA8")
	colorTeal    = lipgloss.Color("#94E2D5")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorText)

	metricStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	barStyle = lipgloss.NewStyle().
			Foreground(colorTeal)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(colorTeal).
			Bold(true)
)

func tierColor(tier core.Tier) lipgloss.Color {
	switch tier {
	case core.TierNominal:
		return colorGreen
	case core.TierWarning:
		return colorYellow
	case core.TierCritical:
		return colorRed
	default:
		return colorDim
	}
}
