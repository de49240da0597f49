// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard and circle graph generation commands
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/viz"
)

// VizGraphCirclesCommand draws every contact with its circles.
func VizGraphCirclesCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("viz graph circles", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	format := fs.String("format", "dot", "dot or svg")

	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := viz.ParseFormat(*format)
	if err != nil {
		return err
	}

	generator := viz.NewGraphGenerator(a.Store())
	graph, err := generator.GenerateCircleGraph(context.Background(), f)
	if err != nil {
		return err
	}

	return writeGraph(graph, *output)
}

// VizGraphContactCommand draws one contact and the people sharing its circles.
func VizGraphContactCommand(a *agenda.Agenda, args []string) error {
	fs := flag.NewFlagSet("viz graph contact", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	format := fs.String("format", "dot", "dot or svg")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("contact ID required")
	}

	contactID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid contact ID: %w", err)
	}

	f, err := viz.ParseFormat(*format)
	if err != nil {
		return err
	}

	generator := viz.NewGraphGenerator(a.Store())
	graph, err := generator.GenerateContactGraph(context.Background(), contactID, f)
	if err != nil {
		return err
	}

	return writeGraph(graph, *output)
}

func writeGraph(graph *viz.Graph, output string) error {
	if output != "" {
		return os.WriteFile(output, []byte(graph.Source), 0644)
	}

	_, _ = fmt.Fprintln(stdout, graph.Source)
	return nil
}

func VizDashboardCommand(a *agenda.Agenda, args []string) error {
	stats, err := viz.GenerateDashboardStats(context.Background(), a)
	if err != nil {
		return fmt.Errorf("failed to generate dashboard stats: %w", err)
	}

	output := viz.RenderDashboard(stats)
	_, _ = fmt.Fprint(stdout, output)

	return nil
}
