// ABOUTME: Follow-up tracking CLI commands
// ABOUTME: Commands for upcoming meets, advancing stale dates, logging interactions and notes
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/models"
)

// UpcomingCommand lists next meets and birthdays inside the window.
func UpcomingCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("upcoming", flag.ExitOnError)
	days := fs.Int("days", agenda.DefaultWindow, "Look-ahead window in days")
	overdueOnly := fs.Bool("overdue-only", false, "Show only overdue meets")
	_ = fs.Parse(args)

	ctx := context.Background()
	items, err := a.Upcoming(ctx, *days)
	if err != nil {
		return fmt.Errorf("failed to list upcoming meets: %w", err)
	}
	birthdays, err := a.UpcomingBirthdays(ctx, *days)
	if err != nil {
		return fmt.Errorf("failed to list birthdays: %w", err)
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDATE\tWHEN\tCADENCE")
	_, _ = fmt.Fprintln(w, "----\t----\t----\t-------")

	shown := 0
	for _, item := range items {
		if *overdueOnly && !item.Overdue {
			continue
		}
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
		_, _ = fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\n",
			indicator, item.Contact.Name, item.Date, when, item.Contact.Cadence.Label())
		shown++
	}
	if !*overdueOnly {
		for _, b := range birthdays {
			_, _ = fmt.Fprintf(w, "🎂 %s\t%s\tin %d days\t%s\n", b.Contact.Name, b.Date, b.DaysAway, "Birthday")
			shown++
		}
	}
	_ = w.Flush()

	if shown == 0 {
		_, _ = fmt.Fprintln(stdout, "\nNothing coming up")
	}
	return nil
}

// AdvanceCommand saves rolled-forward dates for stale recurring meets.
func AdvanceCommand(a *agenda.Agenda, args []string) error {
	n, err := a.AdvanceStale(context.Background())
	if err != nil {
		return fmt.Errorf("failed to advance next meets: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Advanced %d next meet(s)\n", n)
	return nil
}

// LogInteractionCommand records an interaction with a contact.
func LogInteractionCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	interactionType := fs.String("type", models.InteractionMeeting, "meeting, call, email, message or event")
	notes := fs.String("notes", "", "What happened")
	when := fs.String("date", "", "When it happened (YYYY-MM-DD or RFC3339, default now)")
	_ = fs.Parse(args)

	contact, err := contactArg(a, fs)
	if err != nil {
		return err
	}

	timestamp := time.Now()
	if *when != "" {
		if timestamp, err = parseWhen(*when); err != nil {
			return err
		}
	}

	interaction := &models.InteractionLog{
		ContactID:       contact.ID,
		InteractionType: *interactionType,
		Timestamp:       timestamp,
		Notes:           *notes,
	}
	if err := a.Store().LogInteraction(context.Background(), interaction); err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Logged %s with %s\n", interaction.InteractionType, contact.Name)
	return nil
}

// NoteCommand attaches a note to a contact.
func NoteCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("note", flag.ExitOnError)
	content := fs.String("text", "", "Note text (required)")
	_ = fs.Parse(args)

	if *content == "" {
		return fmt.Errorf("--text is required")
	}
	contact, err := contactArg(a, fs)
	if err != nil {
		return err
	}

	note := &models.Note{ContactID: contact.ID, Content: *content}
	if err := a.Store().AddNote(context.Background(), note); err != nil {
		return fmt.Errorf("failed to add note: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Note added to %s\n", contact.Name)
	return nil
}

func parseWhen(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or RFC3339)", s)
	}
	return t, nil
}
