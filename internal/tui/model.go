// internal/tui/model.go

// Package tui attaches an entity page to the terminal.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"adminsync/internal/entity"
	"adminsync/internal/listsync"
	"adminsync/internal/notify"
	"adminsync/internal/prefs"
	"adminsync/internal/theme"
)

type mode int

const (
	browsing mode = iota
	editing
	confirming
)

const tickInterval = 250 * time.Millisecond

type (
	loadedMsg    struct{ err error }
	submittedMsg struct{ err error }
	removedMsg   struct{ err error }
	themeMsg     struct {
		theme theme.Theme
		err   error
	}
	tickMsg time.Time
)

// Model is the bubbletea model of one page.
type Model struct {
	ctx   context.Context
	page  listsync.Page
	notes *notify.Center
	store prefs.Store

	theme  theme.Theme
	styles styles

	mode    mode
	row     int
	field   int
	pending entity.ID
	prompt  string
	// genre is the index into entity.Genres of the genre filter; -1 shows all.
	genre int
	busy  bool

	width, height int
	tickEvery     time.Duration
}

// New creates the model. The page is loaded by Init.
func New(ctx context.Context, page listsync.Page, notes *notify.Center, store prefs.Store, current theme.Theme) Model {
	return Model{
		ctx:       ctx,
		page:      page,
		notes:     notes,
		store:     store,
		theme:     current,
		styles:    newStyles(current),
		genre:     -1,
		tickEvery: tickInterval,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, page listsync.Page, notes *notify.Center, store prefs.Store, current theme.Theme) error {
	_, err := tea.NewProgram(New(ctx, page, notes, store, current)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.page.Load(m.ctx)}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		// Expired banners disappear on the next render.
		m.notes.Active()
		return m, m.tick()

	case loadedMsg:
		m.busy = false
		m.clampRow()
		return m, nil

	case submittedMsg:
		m.busy = false
		if msg.err == nil {
			m.mode = browsing
			m.field = 0
		}
		m.clampRow()
		return m, nil

	case removedMsg:
		m.busy = false
		m.clampRow()
		return m, nil

	case themeMsg:
		m.theme = msg.theme
		m.styles = newStyles(msg.theme)
		if msg.err != nil {
			m.notes.Post(notify.Warning, fmt.Sprintf("Theme not saved: %v", msg.err))
		}
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case editing:
			return m.updateForm(msg)
		case confirming:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	rows := m.page.Table().Rows

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(rows)-1 {
			m.row++
		}
	case "r":
		m.busy = true
		return m, m.load()
	case "n":
		m.page.ResetForm()
		m.mode = editing
		m.field = 0
	case "e", "enter":
		if len(rows) == 0 {
			return m, nil
		}
		if err := m.page.SelectForEdit(rows[m.row].Edit.ID); err == nil {
			m.mode = editing
			m.field = 0
		}
	case "d", "delete":
		if len(rows) == 0 {
			return m, nil
		}
		id := rows[m.row].Delete.ID
		prompt, err := m.page.DeletePrompt(id)
		if err != nil {
			m.notes.Post(notify.Error, err.Error())
			return m, nil
		}
		m.pending = id
		m.prompt = prompt
		m.mode = confirming
	case "s":
		if m.page.Meta().Sortable() {
			m.page.ToggleSort()
		}
	case "g":
		if m.page.Filterable() {
			m.genre++
			if m.genre >= len(entity.Genres) {
				m.genre = -1
				m.page.SetGenreFilter()
			} else {
				m.page.SetGenreFilter(entity.Genres[m.genre])
			}
			m.clampRow()
		}
	case "t":
		ctx, store, current := m.ctx, m.store, m.theme
		return m, func() tea.Msg {
			next, err := theme.Toggle(ctx, store, current)
			return themeMsg{theme: next, err: err}
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	fields := m.page.Meta().Fields
	if len(fields) == 0 {
		m.mode = browsing
		return m, nil
	}
	f := fields[m.field]

	switch msg.String() {
	case "esc":
		m.page.ResetForm()
		m.mode = browsing
		m.field = 0
	case "tab", "down":
		m.field = (m.field + 1) % len(fields)
	case "shift+tab", "up":
		m.field = (m.field - 1 + len(fields)) % len(fields)
	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		page, ctx := m.page, m.ctx
		return m, func() tea.Msg {
			return submittedMsg{err: page.Submit(ctx)}
		}
	case "left", "right":
		if opts := m.page.FieldOptions(f.Name); f.Type == entity.Choice && len(opts) > 0 {
			step := 1
			if msg.String() == "left" {
				step = -1
			}
			m.setField(f.Name, cycle(opts, m.page.Form()[f.Name], step))
		}
	case "backspace":
		v := []rune(m.page.Form()[f.Name])
		if len(v) > 0 {
			m.setField(f.Name, string(v[:len(v)-1]))
		}
	default:
		if msg.Text != "" {
			m.setField(f.Name, m.page.Form()[f.Name]+msg.Text)
		}
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.pending
		page, ctx := m.page, m.ctx
		m.mode = browsing
		m.pending, m.prompt = "", ""
		m.busy = true
		return m, func() tea.Msg {
			// The user has just answered the prompt.
			err := page.Remove(ctx, id, listsync.Approved)
			return removedMsg{err: err}
		}
	case "n", "N", "esc":
		m.mode = browsing
		m.pending, m.prompt = "", ""
	}
	return m, nil
}

func (m Model) setField(name, value string) {
	if err := m.page.SetField(name, value); err != nil {
		m.notes.Post(notify.Error, err.Error())
	}
}

func (m *Model) clampRow() {
	n := len(m.page.Table().Rows)
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

// cycle returns the option step places away from current, wrapping around.
// An unknown current value selects the first option.
func cycle(options []string, current string, step int) string {
	for i, o := range options {
		if o == current {
			return options[(i+step+len(options))%len(options)]
		}
	}
	return options[0]
}
