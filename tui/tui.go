// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Full-screen browser for contacts, their history and upcoming meets
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/models"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Tab is the list shown in list mode
type Tab int

const (
	TabContacts Tab = iota
	TabUpcoming
	tabCount
)

// UpcomingWindow is how many days ahead the upcoming tab looks.
const UpcomingWindow = 30

// Model is the main bubbletea model
type Model struct {
	ctx    context.Context
	agenda *agenda.Agenda

	viewMode ViewMode
	tab      Tab

	// List view state
	selectedRow int
	contacts    []models.Contact
	upcoming    []upcomingRow

	// Detail view state
	selectedID uuid.UUID
	detail     *contactDetail

	// UI state
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model over one address book.
func NewModel(ctx context.Context, a *agenda.Agenda) Model {
	return Model{
		ctx:      ctx,
		agenda:   a,
		viewMode: ViewList,
		tab:      TabContacts,
		width:    80,
		height:   24,
	}
}

// listLoadedMsg carries both lists so switching tabs never waits on the store.
type listLoadedMsg struct {
	contacts []models.Contact
	upcoming []upcomingRow
	err      error
}

type detailLoadedMsg struct {
	detail *contactDetail
	err    error
}

func (m Model) Init() tea.Cmd {
	return m.loadLists
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case listLoadedMsg:
		m.err = msg.err
		m.contacts = msg.contacts
		m.upcoming = msg.upcoming
		m.clampSelection()
		return m, nil
	case detailLoadedMsg:
		m.err = msg.err
		m.detail = msg.detail
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		if m.viewMode == ViewDetail {
			return m, m.loadDetail(m.selectedID)
		}
		return m, m.loadLists
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	}

	return m, nil
}

func (m *Model) clampSelection() {
	n := m.rowCount()
	if m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m Model) rowCount() int {
	if m.tab == TabUpcoming {
		return len(m.upcoming)
	}
	return len(m.contacts)
}

func (m Model) tableHeight() int {
	if h := m.height - 10; h > 3 {
		return h
	}
	return 3
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)
