// ABOUTME: TUI view for upcoming next meets and birthdays
// ABOUTME: Merges both agenda lists into one date-ordered table
package tui

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	"github.com/google/uuid"

	"github.com/networkia/networkia/nextmeet"
)

type upcomingRow struct {
	contactID uuid.UUID
	indicator string
	name      string
	date      nextmeet.Date
	when      string
	kind      string
}

func (m Model) upcomingRows() ([]upcomingRow, error) {
	items, err := m.agenda.Upcoming(m.ctx, UpcomingWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming meets: %w", err)
	}
	birthdays, err := m.agenda.UpcomingBirthdays(m.ctx, UpcomingWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to list birthdays: %w", err)
	}

	rows := make([]upcomingRow, 0, len(items)+len(birthdays))
	for _, item := range items {
		indicator := "🟢"
		when := fmt.Sprintf("in %d days", item.DaysAway)
		switch {
		case item.Overdue:
			indicator = "🔴"
			when = fmt.Sprintf("%d days overdue", -item.DaysAway)
		case item.DaysAway == 0:
			indicator = "🟡"
			when = "today"
		}
		rows = append(rows, upcomingRow{
			contactID: item.Contact.ID,
			indicator: indicator,
			name:      item.Contact.Name,
			date:      item.Date,
			when:      when,
			kind:      item.Contact.Cadence.Label(),
		})
	}
	for _, b := range birthdays {
		when := fmt.Sprintf("in %d days", b.DaysAway)
		if b.DaysAway == 0 {
			when = "today"
		}
		rows = append(rows, upcomingRow{
			contactID: b.Contact.ID,
			indicator: "🎂",
			name:      b.Contact.Name,
			date:      b.Date,
			when:      when,
			kind:      "Birthday",
		})
	}

	// Meets come before birthdays on the same day
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].date.Before(rows[j].date)
	})
	return rows, nil
}

func (m Model) renderUpcomingTable() string {
	columns := []table.Column{
		{Title: "", Width: 3},
		{Title: "Name", Width: 25},
		{Title: "Date", Width: 12},
		{Title: "When", Width: 18},
		{Title: "Kind", Width: 12},
	}

	var rows []table.Row
	for _, r := range m.upcoming {
		rows = append(rows, table.Row{
			r.indicator,
			r.name,
			r.date.String(),
			r.when,
			r.kind,
		})
	}

	return m.renderRows(columns, rows)
}
