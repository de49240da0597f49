// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing contacts
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/nextmeet"
	"github.com/networkia/networkia/store"
)

// stdout is where commands print; tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// AddContactCommand adds a new contact.
func AddContactCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "Contact name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	company := fs.String("company", "", "Company name")
	bio := fs.String("bio", "", "Background notes")
	birthday := fs.String("birthday", "", "Birthday, e.g. \"August 18\"")
	nextMeet := fs.String("next-meet", "", "Next meet date (YYYY-MM-DD)")
	cadence := fs.String("cadence", "", "weekly, biweekly, monthly, quarterly or none")
	circles := fs.String("circles", "", "Comma-separated circles")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	contact := &models.Contact{
		Name:     *name,
		Email:    *email,
		Phone:    *phone,
		Company:  *company,
		Bio:      *bio,
		Birthday: *birthday,
		Circles:  splitList(*circles),
	}

	var err error
	if contact.Cadence, err = nextmeet.ParseCadence(*cadence); err != nil {
		return err
	}
	if contact.NextMeetDate, err = parseDateFlag(*nextMeet); err != nil {
		return err
	}

	if err := a.Store().CreateContact(context.Background(), contact); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Contact created: %s (ID: %s)\n", contact.Name, contact.ID)
	if contact.Email != "" {
		_, _ = fmt.Fprintf(stdout, "  Email: %s\n", contact.Email)
	}
	if next, _ := a.EffectiveNextMeet(*contact); !next.IsZero() {
		_, _ = fmt.Fprintf(stdout, "  Next meet: %s (%s)\n", next, contact.Cadence.Label())
	}
	if len(contact.Circles) > 0 {
		_, _ = fmt.Fprintf(stdout, "  Circles: %s\n", strings.Join(contact.Circles, ", "))
	}

	return nil
}

// ListContactsCommand lists all contacts.
func ListContactsCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	query := fs.String("query", "", "Search by name or email")
	circle := fs.String("circle", "", "Filter by circle")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	contacts, err := a.Store().FindContacts(context.Background(), store.Filter{
		Query:  *query,
		Circle: *circle,
		Limit:  *limit,
	})
	if err != nil {
		return fmt.Errorf("failed to find contacts: %w", err)
	}

	if len(contacts) == 0 {
		_, _ = fmt.Fprintln(stdout, "No contacts found")
		return nil
	}

	// Pretty print results
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tNEXT MEET\tCADENCE\tCIRCLES\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t---------\t-------\t-------\t--")

	for _, contact := range contacts {
		next := "-"
		if d, _ := a.EffectiveNextMeet(contact); !d.IsZero() {
			next = d.String()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			contact.Name, orDash(contact.Email), next, orDash(string(contact.Cadence)),
			orDash(strings.Join(contact.Circles, ",")), contact.ID.String()[:8])
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(stdout, "\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

// ShowContactCommand prints one contact with its notes and recent interactions.
func ShowContactCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	_ = fs.Parse(args)

	contact, err := contactArg(a, fs)
	if err != nil {
		return err
	}
	ctx := context.Background()

	_, _ = fmt.Fprintf(stdout, "%s (ID: %s)\n", contact.Name, contact.ID)
	printField("Email", contact.Email)
	printField("Phone", contact.Phone)
	printField("Company", contact.Company)
	printField("Birthday", contact.Birthday)
	printField("Circles", strings.Join(contact.Circles, ", "))
	if next, advanced := a.EffectiveNextMeet(*contact); !next.IsZero() {
		suffix := ""
		if advanced {
			suffix = fmt.Sprintf(", stored %s", contact.NextMeetDate)
		}
		printField("Next meet", fmt.Sprintf("%s (%s%s)", next, contact.Cadence.Label(), suffix))
	}
	if contact.LastContactedAt != nil {
		printField("Last contacted", contact.LastContactedAt.Format("2006-01-02"))
	}
	if contact.IsPublic {
		printField("Public page", "/p/"+contact.PublicSlug)
	}
	printField("Bio", contact.Bio)

	notes, err := a.Store().ListNotes(ctx, contact.ID)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}
	if len(notes) > 0 {
		_, _ = fmt.Fprintln(stdout, "\nNotes:")
		for _, n := range notes {
			_, _ = fmt.Fprintf(stdout, "  %s  %s\n", n.CreatedAt.Format("2006-01-02"), n.Content)
		}
	}

	interactions, err := a.Store().ListInteractions(ctx, contact.ID, 10)
	if err != nil {
		return fmt.Errorf("failed to list interactions: %w", err)
	}
	if len(interactions) > 0 {
		_, _ = fmt.Fprintln(stdout, "\nInteractions:")
		for _, i := range interactions {
			_, _ = fmt.Fprintf(stdout, "  %s  %-8s %s\n", i.Timestamp.Format("2006-01-02"), i.InteractionType, i.Notes)
		}
	}

	return nil
}

// UpdateContactCommand updates an existing contact.
func UpdateContactCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	name := fs.String("name", "", "Contact name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	company := fs.String("company", "", "Company name")
	bio := fs.String("bio", "", "Background notes")
	birthday := fs.String("birthday", "", "Birthday, e.g. \"August 18\"")
	nextMeet := fs.String("next-meet", "", "Next meet date (YYYY-MM-DD, \"none\" clears it)")
	cadence := fs.String("cadence", "", "weekly, biweekly, monthly, quarterly or none")
	circles := fs.String("circles", "", "Comma-separated circles (replaces existing)")
	public := fs.String("public", "", "Share a public profile page (true/false)")
	_ = fs.Parse(args)

	existing, err := contactArg(a, fs)
	if err != nil {
		return err
	}

	// Apply updates from flags
	if *name != "" {
		existing.Name = *name
	}
	if *email != "" {
		existing.Email = *email
	}
	if *phone != "" {
		existing.Phone = *phone
	}
	if *company != "" {
		existing.Company = *company
	}
	if *bio != "" {
		existing.Bio = *bio
	}
	if *birthday != "" {
		existing.Birthday = *birthday
	}
	if *circles != "" {
		existing.Circles = splitList(*circles)
	}
	if *cadence != "" {
		if existing.Cadence, err = nextmeet.ParseCadence(*cadence); err != nil {
			return err
		}
	}
	switch *nextMeet {
	case "":
	case "none":
		existing.NextMeetDate = ""
	default:
		if existing.NextMeetDate, err = parseDateFlag(*nextMeet); err != nil {
			return err
		}
	}
	switch *public {
	case "":
	case "true", "yes":
		existing.IsPublic = true
		if existing.PublicSlug == "" {
			existing.PublicSlug = models.NewPublicSlug()
		}
	case "false", "no":
		existing.IsPublic = false
	default:
		return fmt.Errorf("--public must be true or false")
	}

	if err := a.Store().UpdateContact(context.Background(), existing); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Contact updated: %s (ID: %s)\n", existing.Name, existing.ID)
	return nil
}

// DeleteContactCommand deletes a contact.
func DeleteContactCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	_ = fs.Parse(args)

	contact, err := contactArg(a, fs)
	if err != nil {
		return err
	}

	if err := a.Store().DeleteContact(context.Background(), contact.ID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Contact deleted: %s (%s)\n", contact.Name, contact.ID)
	return nil
}

// contactArg loads the contact named by the first positional argument.
func contactArg(a *agenda.Agenda, fs *flag.FlagSet) (*models.Contact, error) {
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("contact ID is required")
	}

	contactID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return nil, fmt.Errorf("invalid contact ID: %w", err)
	}

	contact, err := a.Store().GetContact(context.Background(), contactID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("contact not found: %s", contactID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

func parseDateFlag(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	d, ok := nextmeet.ParseDate(s)
	if !ok {
		return "", fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return d.String(), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printField(label, value string) {
	if value != "" {
		_, _ = fmt.Fprintf(stdout, "  %-15s %s\n", label+":", value)
	}
}
