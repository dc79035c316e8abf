// internal/tui/styles.go
package tui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"adminsync/internal/notify"
	"adminsync/internal/theme"
)

type palette struct {
	text, muted, accent, selectedBG color.Color
	success, failure, warning, info color.Color
}

var palettes = map[theme.Theme]palette{
	theme.Light: {
		text:       lipgloss.Color("#2c3e50"),
		muted:      lipgloss.Color("#7f8c8d"),
		accent:     lipgloss.Color("#2980b9"),
		selectedBG: lipgloss.Color("#dfe6e9"),
		success:    lipgloss.Color("#27ae60"),
		failure:    lipgloss.Color("#c0392b"),
		warning:    lipgloss.Color("#d35400"),
		info:       lipgloss.Color("#2980b9"),
	},
	theme.Dark: {
		text:       lipgloss.Color("#ecf0f1"),
		muted:      lipgloss.Color("#95a5a6"),
		accent:     lipgloss.Color("#5dade2"),
		selectedBG: lipgloss.Color("#34495e"),
		success:    lipgloss.Color("#2ecc71"),
		failure:    lipgloss.Color("#e74c3c"),
		warning:    lipgloss.Color("#f39c12"),
		info:       lipgloss.Color("#5dade2"),
	},
}

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	label    lipgloss.Style
	focused  lipgloss.Style
	prompt   lipgloss.Style
	banners  map[notify.Level]lipgloss.Style
}

func newStyles(t theme.Theme) styles {
	p, ok := palettes[t]
	if !ok {
		p = palettes[theme.Light]
	}
	banner := func(c color.Color) lipgloss.Style {
		return lipgloss.NewStyle().Bold(true).Foreground(c).Padding(0, 1)
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.accent).MarginBottom(1),
		header:   lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		cell:     lipgloss.NewStyle().Foreground(p.text),
		selected: lipgloss.NewStyle().Foreground(p.text).Background(p.selectedBG).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(p.muted),
		label:    lipgloss.NewStyle().Foreground(p.text),
		focused:  lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		prompt:   lipgloss.NewStyle().Foreground(p.warning).Bold(true),
		banners: map[notify.Level]lipgloss.Style{
			notify.Success: banner(p.success),
			notify.Error:   banner(p.failure),
			notify.Warning: banner(p.warning),
			notify.Info:    banner(p.info),
		},
	}
}
