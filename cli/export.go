// ABOUTME: Calendar export CLI command
// ABOUTME: Writes next meets and birthdays as an .ics file or to stdout
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/calexport"
)

// ExportCommand exports the calendar document.
func ExportCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	contact := fs.String("contact", "", "Only export this contact ID")
	_ = fs.Parse(args)

	ctx := context.Background()
	var (
		doc string
		err error
	)
	if *contact != "" {
		id, perr := uuid.Parse(*contact)
		if perr != nil {
			return fmt.Errorf("invalid contact ID: %w", perr)
		}
		doc, err = a.ExportContact(ctx, id)
	} else {
		doc, err = a.Export(ctx)
	}

	if errors.Is(err, calexport.ErrNothingToExport) {
		_, _ = fmt.Fprintln(os.Stderr, "Nothing to export: no next meets or birthdays")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to export calendar: %w", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(doc), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", *output, err)
		}
		_, _ = fmt.Fprintf(stdout, "✓ Calendar written to %s\n", *output)
		return nil
	}

	_, _ = fmt.Fprint(stdout, doc)
	return nil
}
