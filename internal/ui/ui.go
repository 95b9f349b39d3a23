// Package ui is a terminal launcher that hosts the keyword handler: it
// re-queries on every keystroke and activates the selected entry.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/robottwo/mapsroute/internal/extension"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const windowTitle = "Google Maps Routes"

var (
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	headerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// Handler produces entries for a query.
type Handler interface {
	Handle(query string) []extension.Entry
}

// Activator carries out an entry action.
type Activator interface {
	Run(ctx context.Context, a extension.Action) error
}

// item adapts an entry to bubbles/list.
type item struct {
	entry extension.Entry
}

func (i item) Title() string       { return i.entry.Title }
func (i item) Description() string { return i.entry.Description }
func (i item) FilterValue() string { return i.entry.Title }

type actionDoneMsg struct {
	action extension.Action
	quit   bool
	err    error
}

type model struct {
	ctx       context.Context
	handler   Handler
	activator Activator
	logger    *zap.Logger

	input    textinput.Model
	list     list.Model
	query    string
	width    int
	height   int
	quitting bool
	errorMsg string
	status   string
}

func initialModel(ctx context.Context, handler Handler, activator Activator, logger *zap.Logger, query string) model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedItemStyle
	delegate.Styles.SelectedDesc = selectedItemStyle.Foreground(lipgloss.Color("240"))

	l := list.New(nil, delegate, 0, 0)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	ti := textinput.New()
	ti.Placeholder = "Vienna to Munich"
	ti.Prompt = "route ▸ "
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	ti.SetValue(query)
	ti.Focus()

	m := model{
		ctx:       ctx,
		handler:   handler,
		activator: activator,
		logger:    logger,
		input:     ti,
		list:      l,
	}
	m.refresh()
	return m
}

// refresh re-runs the handler for the current input.
func (m *model) refresh() {
	m.query = m.input.Value()
	entries := m.handler.Handle(m.query)
	m.list.SetItems(lo.Map(entries, func(e extension.Entry, _ int) list.Item {
		return item{entry: e}
	}))
	m.list.Select(0)
}

func (m model) selected() (extension.Entry, bool) {
	i, ok := m.list.SelectedItem().(item)
	if !ok {
		return extension.Entry{}, false
	}
	return i.entry, true
}

func (m model) activate(a extension.Action, quit bool) tea.Cmd {
	return func() tea.Msg {
		err := m.activator.Run(m.ctx, a)
		return actionDoneMsg{action: a, quit: quit, err: err}
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-16, 10)
		m.list.SetWidth(max(msg.Width-4, 20))
		m.list.SetHeight(max(msg.Height-8, 4))
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.logger.Warn("action failed", zap.Stringer("kind", msg.action.Kind), zap.Error(msg.err))
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		if msg.quit {
			m.quitting = true
			return m, tea.Quit
		}
		if msg.action.Kind == extension.ActionCopyToClipboard {
			m.status = "Link copied to clipboard"
		}
		return m, nil

	case tea.KeyMsg:
		m.errorMsg = ""
		m.status = ""

		switch {
		case msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case msg.Type == tea.KeyEnter && msg.Alt, msg.Type == tea.KeyCtrlY:
			entry, ok := m.selected()
			if !ok || entry.OnAltEnter == nil {
				return m, nil
			}
			return m, m.activate(*entry.OnAltEnter, false)

		case msg.Type == tea.KeyEnter:
			entry, ok := m.selected()
			if !ok {
				return m, nil
			}
			if entry.OnEnter.Kind == extension.ActionHideWindow {
				m.quitting = true
				return m, tea.Quit
			}
			return m, m.activate(entry.OnEnter, true)
		}

		switch msg.String() {
		case "up", "down", "ctrl+p", "ctrl+n", "pgup", "pgdown":
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}

		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != m.query {
			m.refresh()
		}
		return m, cmd
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	availableWidth := max(m.width-4, 20)
	availableHeight := max(m.height-4, 8)

	var box strings.Builder

	titlePadding := max((availableWidth-runewidth.StringWidth(windowTitle))/2, 0)
	box.WriteString(headerStyle.Render(strings.Repeat(" ", titlePadding)+windowTitle) + "\n\n")
	box.WriteString(m.input.View() + "\n\n")

	contentLines := strings.Split(m.list.View(), "\n")
	contentHeight := max(availableHeight-6, 1)
	if len(contentLines) > contentHeight {
		contentLines = contentLines[:contentHeight]
	}
	box.WriteString(strings.Join(contentLines, "\n"))
	for i := len(contentLines); i < contentHeight; i++ {
		box.WriteString("\n")
	}

	footer := helpStyle.Render("↑/↓: Navigate | Enter: Open | Alt+Enter/Ctrl+Y: Copy link | Esc: Close")
	switch {
	case m.errorMsg != "":
		footer = errorStyle.Render(runewidth.Truncate(m.errorMsg, availableWidth, "…")) + "\n" + footer
	case m.status != "":
		footer = statusStyle.Render(m.status) + "\n" + footer
	}
	box.WriteString("\n" + footer)

	boxStyle := lipgloss.NewStyle().
		Width(availableWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62"))

	return boxStyle.Render(box.String())
}

// Run starts the interactive launcher with query pre-filled.
func Run(ctx context.Context, handler Handler, activator Activator, logger *zap.Logger, query string) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := tea.NewProgram(initialModel(ctx, handler, activator, logger, query), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
