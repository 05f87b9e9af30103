package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha subset.
const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"
	colorPink     lipgloss.Color = "#f5c2e7"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
)

const (
	colorAccent  = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var domainColors = map[string]lipgloss.Color{
	"health":   colorGreen,
	"finance":  colorPeach,
	"study":    colorBlue,
	"personal": colorMauve,
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(colorOverlay1)
	activeTab     = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorFocus).Underline(true)
	cursorStyle   = lipgloss.NewStyle().Background(colorSurface1).Foreground(colorText)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorOverlay1)
	doneStyle     = lipgloss.NewStyle().Foreground(colorOverlay1).Strikethrough(true)
	statusStyle   = lipgloss.NewStyle().Foreground(colorInfo)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	warnStyle     = lipgloss.NewStyle().Foreground(colorWarning)
	okStyle       = lipgloss.NewStyle().Foreground(colorSuccess)
	helpKeyStyle  = lipgloss.NewStyle().Bold(true)
	insightsStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1).Padding(0, 1)
)

func domainStyle(domain string) lipgloss.Style {
	c, ok := domainColors[domain]
	if !ok {
		c = colorText
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
