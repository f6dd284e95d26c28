package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/s1natex/todo-GO/internal/tasks"
	"github.com/s1natex/todo-GO/internal/theme"
)

type palette struct {
	text, muted, accent, success, danger, high, medium, low lipgloss.Color
}

var palettes = map[theme.Theme]palette{
	theme.Light: {
		text:    "#1f2937",
		muted:   "#6b7280",
		accent:  "#4f46e5",
		success: "#059669",
		danger:  "#dc2626",
		high:    "#dc2626",
		medium:  "#d97706",
		low:     "#2563eb",
	},
	theme.Dark: {
		text:    "#f3f4f6",
		muted:   "#9ca3af",
		accent:  "#818cf8",
		success: "#34d399",
		danger:  "#f87171",
		high:    "#f87171",
		medium:  "#fbbf24",
		low:     "#60a5fa",
	},
}

type styles struct {
	title    lipgloss.Style
	text     lipgloss.Style
	muted    lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
	active   lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	dialog   lipgloss.Style
	priority map[tasks.Priority]lipgloss.Style
}

func newStyles(t theme.Theme) styles {
	p, ok := palettes[t]
	if !ok {
		p = palettes[theme.Light]
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		text:     lipgloss.NewStyle().Foreground(p.text),
		muted:    lipgloss.NewStyle().Foreground(p.muted),
		selected: lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		done:     lipgloss.NewStyle().Strikethrough(true).Foreground(p.muted),
		active:   lipgloss.NewStyle().Bold(true).Underline(true).Foreground(p.accent),
		ok:       lipgloss.NewStyle().Bold(true).Foreground(p.success),
		err:      lipgloss.NewStyle().Bold(true).Foreground(p.danger),
		dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.danger).
			Padding(0, 1),
		priority: map[tasks.Priority]lipgloss.Style{
			tasks.PriorityHigh:   lipgloss.NewStyle().Foreground(p.high),
			tasks.PriorityMedium: lipgloss.NewStyle().Foreground(p.medium),
			tasks.PriorityLow:    lipgloss.NewStyle().Foreground(p.low),
		},
	}
}
