// ABOUTME: Circle CLI commands
// ABOUTME: Create, list and delete the circles contacts are grouped into
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/store"
)

// CircleAddCommand creates or recolors a circle.
func CircleAddCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("circle add", flag.ExitOnError)
	color := fs.String("color", "", "Color used in graphs, e.g. #ffcc00")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("circle name is required")
	}

	circle := &models.Circle{Name: fs.Arg(0), Color: *color}
	if err := a.Store().SaveCircle(context.Background(), circle); err != nil {
		return fmt.Errorf("failed to save circle: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Circle saved: %s\n", circle.Name)
	return nil
}

// CircleListCommand lists circles with their member counts.
func CircleListCommand(a *agenda.Agenda, args []string) error {
	ctx := context.Background()
	circles, err := a.Store().ListCircles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list circles: %w", err)
	}

	if len(circles) == 0 {
		_, _ = fmt.Fprintln(stdout, "No circles found")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CIRCLE\tMEMBERS\tCOLOR")
	_, _ = fmt.Fprintln(w, "------\t-------\t-----")
	for _, c := range circles {
		members, err := a.Store().FindContacts(ctx, store.Filter{Circle: c.Name})
		if err != nil {
			return fmt.Errorf("failed to count members of %s: %w", c.Name, err)
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", c.Name, len(members), orDash(c.Color))
	}
	return w.Flush()
}

// CircleDeleteCommand removes a circle and untags its members.
func CircleDeleteCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("circle delete", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("circle name is required")
	}

	if err := a.Store().DeleteCircle(context.Background(), fs.Arg(0)); err != nil {
		return fmt.Errorf("failed to delete circle: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Circle deleted: %s\n", fs.Arg(0))
	return nil
}
