// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides ASCII overview of circles, due meets and neglected contacts
package viz

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/store"
)

// StaleAfterDays is how long without an interaction marks a contact as neglected.
const StaleAfterDays = 30

type DashboardStats struct {
	TotalContacts int
	ByCircle      map[string]int

	DueThisWeek int
	Overdue     int
	Birthdays   []agenda.BirthdayItem

	// Never contacted, or no interaction in StaleAfterDays
	StaleContacts []StaleContact
}

type StaleContact struct {
	Name      string
	DaysSince int // -1 when never contacted
}

func GenerateDashboardStats(ctx context.Context, a *agenda.Agenda) (*DashboardStats, error) {
	stats := &DashboardStats{ByCircle: make(map[string]int)}

	contacts, err := a.Store().FindContacts(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	stats.TotalContacts = len(contacts)

	today := a.Today()
	for _, c := range contacts {
		for _, circle := range c.Circles {
			stats.ByCircle[circle]++
		}

		if c.LastContactedAt == nil {
			stats.StaleContacts = append(stats.StaleContacts, StaleContact{Name: c.Name, DaysSince: -1})
			continue
		}
		last := a.DateOf(*c.LastContactedAt)
		if days := last.DaysUntil(today); days > StaleAfterDays {
			stats.StaleContacts = append(stats.StaleContacts, StaleContact{Name: c.Name, DaysSince: days})
		}
	}

	upcoming, err := a.Upcoming(ctx, 7)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming meets: %w", err)
	}
	for _, item := range upcoming {
		if item.Overdue {
			stats.Overdue++
		} else {
			stats.DueThisWeek++
		}
	}

	stats.Birthdays, err = a.UpcomingBirthdays(ctx, 7)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch birthdays: %w", err)
	}

	return stats, nil
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	// Header
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  NETWORKIA DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("CIRCLES\n")
	renderCircles(&out, stats.ByCircle)
	out.WriteString("\n")

	out.WriteString("THIS WEEK\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  📅 %d meets due  🎂 %d birthdays\n\n",
		stats.TotalContacts, stats.DueThisWeek, len(stats.Birthdays)))

	for _, b := range stats.Birthdays {
		out.WriteString(fmt.Sprintf("  🎂 %s on %s\n", b.Contact.Name, b.Date))
	}
	if len(stats.Birthdays) > 0 {
		out.WriteString("\n")
	}

	// Needs attention
	if stats.Overdue > 0 || len(stats.StaleContacts) > 0 {
		out.WriteString("NEEDS ATTENTION\n")

		if stats.Overdue > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d meets overdue\n", stats.Overdue))
		}

		if len(stats.StaleContacts) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d contacts - no contact in %d+ days\n", len(stats.StaleContacts), StaleAfterDays))
		}
	}

	return out.String()
}

func renderCircles(out *strings.Builder, byCircle map[string]int) {
	if len(byCircle) == 0 {
		out.WriteString("  (no circles yet)\n")
		return
	}

	names := make([]string, 0, len(byCircle))
	maxCount := 1
	for name, count := range byCircle {
		names = append(names, name)
		if count > maxCount {
			maxCount = count
		}
	}
	sort.Strings(names)

	for _, name := range names {
		count := byCircle[name]

		// Calculate bar length (0-10 blocks)
		barLength := (count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-13s %s  %2d\n", name, bar, count))
	}
}
