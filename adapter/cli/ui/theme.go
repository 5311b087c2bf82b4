package ui

import "github.com/charmbracelet/lipgloss"

// Palette for terminal output. Calm colors for the list, one loud color for
// the focus task.
var (
	Focus    = lipgloss.Color("#FF8C42")
	Calm     = lipgloss.Color("#7FB7BE")
	Leaf     = lipgloss.Color("#6BCB77")
	Alert    = lipgloss.Color("#E63946")
	Amber    = lipgloss.Color("#F4A261")
	Dim      = lipgloss.Color("#6C757D")
	Bright   = lipgloss.Color("#F8F9FA")
	Slate    = lipgloss.Color("#495057")
	Lavender = lipgloss.Color("#B8B8FF")

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Calm)

	Success = lipgloss.NewStyle().
		Foreground(Leaf)

	Error = lipgloss.NewStyle().
		Foreground(Alert).
		Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Amber)

	Muted = lipgloss.NewStyle().
		Foreground(Dim)

	KeyStyle = lipgloss.NewStyle().
		Foreground(Calm).
		Bold(true)

	ValueStyle = lipgloss.NewStyle().
		Foreground(Bright)

	FocusBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Focus).
		Padding(0, 1)

	FocusText = lipgloss.NewStyle().
		Foreground(Focus).
		Bold(true)
)

// Priority badge styles, keyed by priority name.
var priorityStyles = map[string]lipgloss.Style{
	"urgent": lipgloss.NewStyle().Foreground(Bright).Background(Alert).Padding(0, 1).Bold(true),
	"high":   lipgloss.NewStyle().Foreground(Bright).Background(Amber).Padding(0, 1),
	"medium": lipgloss.NewStyle().Foreground(Bright).Background(Slate).Padding(0, 1),
	"lowest": lipgloss.NewStyle().Foreground(Lavender).Padding(0, 1),
}

const (
	IconFocus  = "➤ "
	IconOk     = "✓ "
	IconWarn   = "! "
	IconError  = "✗ "
	IconTimer  = "⏱ "
	IconBell   = "🔔 "
	IconDot    = "· "
	IconTrophy = "🏆 "
)
