// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tui is the interactive terminal front end. It renders controller
// snapshots and routes keystrokes to controller operations; it holds no
// query or suggestion state of its own.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/pdiddy/metasearch/internal/augment"
	"github.com/pdiddy/metasearch/internal/controller"
	"github.com/pdiddy/metasearch/internal/logger"
)

type focus int

const (
	focusQuery focus = iota
	focusResults
)

// changedMsg reports that controller state changed. The model reads the
// latest snapshot itself, so late or reordered deliveries are harmless.
type changedMsg struct{}

type searchDoneMsg struct{ err error }

type augmentDoneMsg struct {
	link string
	err  error
}

// Model is the bubbletea model.
type Model struct {
	ctx    context.Context
	ctrl   *controller.Controller
	log    *log.Logger
	styles *Styles

	input  textinput.Model
	snap   controller.Snapshot
	focus  focus
	cursor int
	width  int
	height int
}

// New creates a Model bound to ctrl.
func New(ctx context.Context, ctrl *controller.Controller, l *log.Logger) *Model {
	ti := textinput.New()
	ti.Placeholder = "Search the web"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()
	return &Model{
		ctx:    ctx,
		ctrl:   ctrl,
		log:    logger.OrDiscard(l),
		styles: NewStyles(),
		input:  ti,
		snap:   ctrl.Snapshot(),
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, ctrl *controller.Controller, l *log.Logger) error {
	m := New(ctx, ctrl, l)
	// All-motion reporting is needed for hover without a button held.
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	// Subscribers may run on the update goroutine, so Send must not block it.
	unsubscribe := ctrl.Subscribe(func(controller.Snapshot) {
		go p.Send(changedMsg{})
	})
	defer unsubscribe()
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case changedMsg:
		m.refresh()
		return m, nil

	case searchDoneMsg:
		if msg.err != nil {
			m.log.Debug("search finished with error", "err", msg.err)
		}
		m.cursor = 0
		m.refresh()
		return m, nil

	case augmentDoneMsg:
		if msg.err != nil {
			m.log.Debug("augmentation finished with error", "link", msg.link, "err", msg.err)
		}
		m.refresh()
		return m, nil

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.ctrl.Close()
			return m, tea.Quit
		}
		if m.focus == focusResults {
			return m.updateResults(msg)
		}
		return m.updateQuery(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// KeyFor maps a key press to the suggestion list's key set.
func KeyFor(msg tea.KeyMsg) controller.Key {
	switch msg.String() {
	case "down":
		return controller.KeyDown
	case "up":
		return controller.KeyUp
	case "enter":
		return controller.KeyEnter
	case "esc":
		return controller.KeyEscape
	default:
		return controller.KeyOther
	}
}

func (m *Model) updateQuery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The suggestion list owns navigation keys only while it is visible.
	if k := KeyFor(msg); k != controller.KeyOther && m.snap.SuggestionsVisible() {
		if m.ctrl.OnKey(k) {
			m.refresh()
			return m, nil
		}
	}

	switch msg.String() {
	case "enter":
		return m, m.submit()
	case "ctrl+t":
		m.ctrl.SetImageMode(!m.snap.ImageMode)
		m.refresh()
		return m, nil
	case "ctrl+n":
		if !m.snap.HasNext() || m.snap.Loading {
			return m, nil
		}
		return m, m.nextPage()
	case "tab":
		if len(m.snap.Results) > 0 {
			m.focus = focusResults
			m.input.Blur()
		}
		return m, nil
	case "up", "down", "esc":
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.ctrl.SetQuery(v)
		m.refresh()
	}
	return m, cmd
}

// updateMouse highlights the suggestion under the pointer and commits it on
// a left click, the same transitions the arrow keys and Enter make.
func (m *Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	i, ok := m.suggestionAt(msg.Y)
	if !ok {
		return m, nil
	}
	switch {
	case msg.Action == tea.MouseActionMotion:
		if i != m.snap.SelectedIndex && m.ctrl.Hover(i) {
			m.refresh()
		}
	case msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft:
		if m.ctrl.Click(i) {
			m.refresh()
			if m.focus == focusResults {
				m.focus = focusQuery
				return m, m.input.Focus()
			}
		}
	}
	return m, nil
}

// suggestionAt maps a screen row to a suggestion index.
func (m *Model) suggestionAt(y int) (int, bool) {
	top := lipgloss.Height(m.styles.Title.Render(m.title())) + lipgloss.Height(m.input.View())
	i := y - top
	if i < 0 || i >= len(m.snap.Suggestions) {
		return 0, false
	}
	return i, true
}

func (m *Model) title() string {
	if m.snap.ImageMode {
		return "metasearch · images"
	}
	return "metasearch"
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Results)-1 {
			m.cursor++
		}
	case "p":
		if m.cursor < len(m.snap.Results) {
			return m, m.augment(m.snap.Results[m.cursor].Link)
		}
	case "tab", "esc":
		m.focus = focusQuery
		return m, m.input.Focus()
	case "q":
		m.ctrl.Close()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) submit() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		_, err := ctrl.Submit(ctx)
		return searchDoneMsg{err: err}
	}
}

func (m *Model) nextPage() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		_, err := ctrl.NextPage(ctx)
		return searchDoneMsg{err: err}
	}
}

func (m *Model) augment(link string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		_, err := ctrl.RequestAugmentation(ctx, link)
		return augmentDoneMsg{link: link, err: err}
	}
}

func (m *Model) refresh() {
	m.apply(m.ctrl.Snapshot())
}

// apply adopts s, syncing the input when the controller changed the query
// itself (a committed suggestion).
func (m *Model) apply(s controller.Snapshot) {
	m.snap = s
	if m.input.Value() != s.Query {
		m.input.SetValue(s.Query)
		m.input.CursorEnd()
	}
	if m.cursor >= len(s.Results) {
		m.cursor = max(len(s.Results)-1, 0)
	}
}

func (m *Model) View() string {
	st := m.styles
	var b strings.Builder

	b.WriteString(st.Title.Render(m.title()))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	for i, s := range m.snap.Suggestions {
		if i == m.snap.SelectedIndex {
			b.WriteString(st.Selected.Render(s))
		} else {
			b.WriteString(st.Suggestion.Render(s))
		}
		b.WriteString("\n")
	}
	if m.snap.SuggestionError != "" {
		b.WriteString(st.Dim.Render("  " + m.snap.SuggestionError))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.snap.Loading:
		b.WriteString(st.Loading.Render("Searching..."))
		b.WriteString("\n")
	case m.snap.Error != "":
		b.WriteString(st.Error.Render(m.snap.Error))
		b.WriteString("\n")
	}

	for i, item := range m.snap.Results {
		b.WriteString(m.renderResult(i, item.Title, item.Link))
	}
	if n := len(m.snap.Results); n > 0 {
		footer := fmt.Sprintf("%d results", n)
		if m.snap.TotalResults >= 0 {
			footer += fmt.Sprintf(" (about %d total)", m.snap.TotalResults)
		}
		b.WriteString(st.Dim.Render(footer))
		b.WriteString("\n")
	}

	b.WriteString(st.Help.Render(m.help()))
	return b.String()
}

func (m *Model) renderResult(i int, title, link string) string {
	st := m.styles
	marker := "  "
	if m.focus == focusResults && i == m.cursor {
		marker = st.Cursor.Render("> ")
	}
	if title == "" {
		title = link
	}
	line := marker + st.ResultHead.Render(title)
	if e, ok := m.snap.Augmented[link]; ok {
		line += "  " + m.renderEntry(e)
	}
	return line + "\n    " + st.Link.Render(link) + "\n"
}

func (m *Model) renderEntry(e augment.Entry) string {
	st := m.styles
	switch e.Status {
	case augment.StatusPending:
		return st.Loading.Render("fetching price...")
	case augment.StatusReady:
		return st.Price.Render(e.Value)
	default:
		if e.HasValue() {
			return st.Price.Render(e.Value) + " " + st.Dim.Render("("+e.Message+")")
		}
		return st.Dim.Render(e.Message)
	}
}

func (m *Model) help() string {
	if m.focus == focusResults {
		return "↑/↓ move • p price • tab back • q quit"
	}
	parts := []string{"enter search", "ctrl+t image mode"}
	if m.snap.HasNext() {
		parts = append(parts, "ctrl+n next page")
	}
	if len(m.snap.Results) > 0 {
		parts = append(parts, "tab results")
	}
	return strings.Join(append(parts, "ctrl+c quit"), " • ")
}
