// Package tui implements the interactive cache browser: a scrollable key
// list with a per-record detail view and deletion.
package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/hoard/internal/cache"
)

// defaultHeight is the list height used before the first WindowSizeMsg.
const defaultHeight = 20

// Styles for the browser views.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)                   //nolint:gochecknoglobals // Style definition
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")) //nolint:gochecknoglobals // Style definition
	expiredStyle  = lipgloss.NewStyle().Faint(true)                                  //nolint:gochecknoglobals // Style definition
	helpStyle     = lipgloss.NewStyle().Faint(true).MarginTop(1)                     //nolint:gochecknoglobals // Style definition
)

// keyMap defines the browser key bindings.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Delete key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// defaultKeyMap returns the standard bindings, vim-style navigation
// included.
func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the browser's bubbletea model. The list view shows every key
// visible to a reader (primary shadowing legacy); enter loads one record
// through the normal read path, so expired records evict on view.
type Model struct {
	store   *cache.Store
	entries []cache.EntryInfo
	keys    keyMap

	cursor int
	height int

	// detail holds the rendered record when the detail view is open.
	detail    string
	detailKey string
}

// NewModel builds a browser model over the store's current listing.
func NewModel(store *cache.Store) Model {
	return Model{
		store:   store,
		entries: store.List(),
		keys:    defaultKeyMap(),
		height:  defaultHeight,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleKey processes one key press.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.detail = ""
		m.detailKey = ""
		return m, nil
	}

	if m.detail != "" {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Enter):
		if len(m.entries) == 0 {
			return m, nil
		}
		entry := m.entries[m.cursor]
		env, ok := m.store.Load(entry.Key)
		if !ok {
			// Expired or vanished since listing; refresh the list.
			m.refresh()
			return m, nil
		}
		data, err := json.MarshalIndent(env.Storage, "", "  ")
		if err != nil {
			return m, nil
		}
		m.detailKey = entry.Key
		m.detail = string(data)

	case key.Matches(msg, m.keys.Delete):
		if len(m.entries) == 0 {
			return m, nil
		}
		m.store.Delete(m.entries[m.cursor].Key)
		m.refresh()
	}

	return m, nil
}

// refresh re-lists the store and clamps the cursor.
func (m *Model) refresh() {
	m.entries = m.store.List()
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.detail != "" {
		var b strings.Builder
		b.WriteString(titleStyle.Render(m.detailKey))
		b.WriteString("\n")
		b.WriteString(m.detail)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • q quit"))
		return b.String()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("hoard · %d key(s)", len(m.entries))))
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString("cache is empty\n")
	} else {
		now := time.Now()
		for i, entry := range m.entries {
			line := fmt.Sprintf("%-32s %-8s %s", entry.Key, entry.Root.String(), expiryLabel(entry.Expires, now))
			switch {
			case i == m.cursor:
				line = selectedStyle.Render("> " + line)
			case entry.Expires != nil && *entry.Expires <= now.Unix():
				line = expiredStyle.Render("  " + line)
			default:
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("↑/↓ move • enter view • d delete • q quit"))
	return b.String()
}

// expiryLabel formats a record's expiry column.
func expiryLabel(expires *int64, now time.Time) string {
	if expires == nil {
		return "never"
	}
	at := time.Unix(*expires, 0)
	if !at.After(now) {
		return "expired"
	}
	return at.Format(time.RFC3339)
}

// Browse runs the interactive browser over the store.
func Browse(store *cache.Store) error {
	_, err := tea.NewProgram(NewModel(store), tea.WithAltScreen()).Run()
	return err
}
