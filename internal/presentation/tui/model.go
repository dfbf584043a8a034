// Package tui is a terminal preview of the aggregated feed page.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wookhyung/blog/internal/application/usecase"
	"github.com/wookhyung/blog/internal/presentation/tui/metrics"
	"github.com/wookhyung/blog/internal/presentation/tui/presenter"
	listview "github.com/wookhyung/blog/internal/presentation/tui/view/list"
)

// FeedPager builds the aggregated feed page.
type FeedPager interface {
	FeedPage(ctx context.Context) usecase.FeedPage
}

// FeedLoadedMsg carries a finished aggregation.
type FeedLoadedMsg struct {
	Page usecase.FeedPage
}

// LinkOpenedMsg reports the result of opening a link.
type LinkOpenedMsg struct {
	URL string
	Err error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Model represents the feed preview state.
type Model struct {
	pager   FeedPager
	date    presenter.DateFunc
	list    list.Model
	spinner spinner.Model
	help    help.Model
	keys    KeyMap

	loading bool
	status  string
	err     error
	width   int
	height  int

	// OpenURL opens a link; replaced in tests.
	OpenURL func(string) error
}

// NewModel creates a model that loads pages from pager.
func NewModel(pager FeedPager, date presenter.DateFunc) *Model {
	l := list.New([]list.Item{}, listview.NewItemDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &Model{
		pager:   pager,
		date:    date,
		list:    l,
		spinner: s,
		help:    help.New(),
		keys:    NewKeyMap(),
		loading: true,
		OpenURL: openBrowser,
	}
}

// Init starts the first aggregation.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

func (m *Model) fetchCmd() tea.Cmd {
	pager := m.pager
	return func() tea.Msg {
		return FeedLoadedMsg{Page: pager.FeedPage(context.Background())}
	}
}

func (m *Model) openCmd(url string) tea.Cmd {
	open := m.OpenURL
	return func() tea.Msg {
		return LinkOpenedMsg{URL: url, Err: open(url)}
	}
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resizeList()
		return m, nil

	case FeedLoadedMsg:
		m.loading = false
		m.err = nil
		m.list.SetItems(presenter.BuildItems(msg.Page.Items, m.date))
		m.list.ResetSelected()
		m.status = msg.Page.StatusMessage()
		if msg.Page.Empty() {
			m.status = usecase.FeedEmptyText
		}
		return m, nil

	case LinkOpenedMsg:
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resizeList()
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.fetchCmd())
		case key.Matches(msg, m.keys.Open):
			if it, ok := m.list.SelectedItem().(*presenter.Item); ok && it.Link != "" {
				return m, m.openCmd(it.Link)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) resizeList() {
	helpLines := 1
	if m.help.ShowAll {
		helpLines = len(m.keys.FullHelp()[0])
	}
	h := m.height - metrics.HeaderLines - metrics.FooterLines - helpLines + 1
	if h < 0 {
		h = 0
	}
	m.list.SetSize(m.width, h)
}

// View renders the preview.
func (m *Model) View() string {
	header := titleStyle.Render("Feed") + "\n"

	var status string
	switch {
	case m.loading:
		status = m.spinner.View() + " Loading feeds..."
	case m.err != nil:
		status = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	default:
		status = statusStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.list.View(),
		status,
		m.help.View(m.keys),
	)
}
