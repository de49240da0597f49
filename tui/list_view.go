package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/networkia/networkia/store"
)

func (m Model) loadLists() tea.Msg {
	contacts, err := m.agenda.Store().FindContacts(m.ctx, store.Filter{})
	if err != nil {
		return listLoadedMsg{err: fmt.Errorf("failed to list contacts: %w", err)}
	}
	upcoming, err := m.upcomingRows()
	if err != nil {
		return listLoadedMsg{contacts: contacts, err: err}
	}
	return listLoadedMsg{contacts: contacts, upcoming: upcoming}
}

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("NETWORKIA"))
	s.WriteString("\n\n")

	// Tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
	}

	// Table
	s.WriteString(m.renderTable())
	s.WriteString("\n\n")

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	tabs := []string{"Contacts", "Upcoming"}
	var rendered []string

	for i, tab := range tabs {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	switch m.tab {
	case TabContacts:
		return m.renderContactsTable()
	case TabUpcoming:
		return m.renderUpcomingTable()
	}
	return ""
}

func (m Model) renderContactsTable() string {
	columns := []table.Column{
		{Title: "Name", Width: 25},
		{Title: "Next meet", Width: 12},
		{Title: "Cadence", Width: 12},
		{Title: "Circles", Width: 25},
	}

	var rows []table.Row
	for _, contact := range m.contacts {
		next := "-"
		if date, _ := m.agenda.EffectiveNextMeet(contact); !date.IsZero() {
			next = date.String()
		}
		rows = append(rows, table.Row{
			contact.Name,
			next,
			contact.Cadence.Label(),
			strings.Join(contact.Circles, ", "),
		})
	}

	return m.renderRows(columns, rows)
}

func (m Model) renderRows(columns []table.Column, rows []table.Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: View details",
		"r: Refresh",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % tabCount
		m.selectedRow = 0
	case "enter":
		id, ok := m.getSelectedID()
		if !ok {
			return m, nil
		}
		m.viewMode = ViewDetail
		m.selectedID = id
		m.detail = nil
		return m, m.loadDetail(id)
	}

	return m, nil
}

func (m Model) getSelectedID() (uuid.UUID, bool) {
	switch m.tab {
	case TabContacts:
		if m.selectedRow < len(m.contacts) {
			return m.contacts[m.selectedRow].ID, true
		}
	case TabUpcoming:
		if m.selectedRow < len(m.upcoming) {
			return m.upcoming[m.selectedRow].contactID, true
		}
	}
	return uuid.Nil, false
}
