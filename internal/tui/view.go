// internal/tui/view.go
package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"adminsync/internal/entity"
	"adminsync/internal/listsync"
	"adminsync/internal/theme"
)

const maxCellWidth = 32

func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m Model) render() string {
	var b strings.Builder

	meta := m.page.Meta()
	title := meta.Title
	if m.theme == theme.Dark {
		title += "  ☾"
	} else {
		title += "  ☀"
	}
	b.WriteString(m.styles.title.Render(title))
	b.WriteString("\n")

	for _, n := range m.notes.Active() {
		b.WriteString(m.styles.banners[n.Level].Render(listsync.StripControl(n.Text)))
		b.WriteString("\n")
	}

	if !m.page.Loaded() {
		b.WriteString(m.styles.muted.Render("Loading…"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTable(m.page.Table()))
	}

	summary := m.page.Summary()
	if m.page.Filterable() {
		genre := "all"
		if m.genre >= 0 {
			genre = entity.Genres[m.genre]
		}
		summary += "  ·  genre: " + genre
	}
	b.WriteString(m.styles.muted.Render(summary))
	b.WriteString("\n\n")

	switch m.mode {
	case editing:
		b.WriteString(m.renderForm())
	case confirming:
		b.WriteString(m.styles.prompt.Render(m.prompt + " [y/N]"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render(m.help()))
	return b.String()
}

func (m Model) renderTable(table listsync.Table) string {
	if len(table.Rows) == 0 {
		return m.styles.muted.Render("No records.") + "\n"
	}

	widths := make([]int, len(table.Columns))
	for i, c := range table.Columns {
		widths[i] = lipgloss.Width(c.Label())
	}
	cells := make([][]string, len(table.Rows))
	for r, row := range table.Rows {
		cells[r] = make([]string, len(row.Text))
		for i, v := range row.Text {
			cells[r][i] = truncate(v, maxCellWidth)
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cells[r][i]))
			}
		}
	}

	var b strings.Builder
	header := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = pad(c.Label(), widths[i])
	}
	b.WriteString("  " + m.styles.header.Render(strings.Join(header, "  ")))
	b.WriteString("\n")

	for r := range table.Rows {
		line := make([]string, len(cells[r]))
		for i, v := range cells[r] {
			w := 0
			if i < len(widths) {
				w = widths[i]
			}
			line[i] = pad(v, w)
		}
		text := strings.Join(line, "  ")
		if r == m.row {
			b.WriteString("> " + m.styles.selected.Render(text))
		} else {
			b.WriteString("  " + m.styles.cell.Render(text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderForm() string {
	var b strings.Builder
	b.WriteString(m.styles.header.Render(listsync.StripControl(m.page.Heading())))
	b.WriteString("\n")

	form := m.page.Form()
	for i, f := range m.page.Meta().Fields {
		label := f.Label
		if f.Required {
			label += " *"
		}
		value := listsync.StripControl(form[f.Name])
		if f.Type == entity.Choice {
			if opts := m.page.FieldOptions(f.Name); len(opts) > 0 {
				value = "‹ " + value + " ›"
			}
		}
		line := fmt.Sprintf("%-14s %s", label+":", value)
		if i == m.field {
			b.WriteString(m.styles.focused.Render("▸ " + line + "▏"))
		} else {
			b.WriteString(m.styles.label.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.focused.Render("[enter] " + m.page.SubmitLabel()))
	b.WriteString(m.styles.muted.Render("   [esc] Cancel"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) help() string {
	switch m.mode {
	case editing:
		return "tab/shift+tab field · ←/→ choice · enter save · esc cancel"
	case confirming:
		return "y confirm · n cancel"
	}
	keys := []string{"j/k move", "e edit", "d delete", "n new", "r reload"}
	if m.page.Meta().Sortable() {
		keys = append(keys, "s sort by price")
	}
	if m.page.Filterable() {
		keys = append(keys, "g genre")
	}
	keys = append(keys, "t theme", "q quit")
	return strings.Join(keys, " · ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func pad(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
