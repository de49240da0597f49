// ABOUTME: GraphViz rendering of circle membership
// ABOUTME: Contacts link to the circles they belong to; output is DOT or SVG
package viz

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/google/uuid"

	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/store"
)

// Format selects the renderer output.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
)

// ParseFormat accepts "dot" (the default for "") and "svg".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatDOT:
		return FormatDOT, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unknown graph format: %s (valid formats: dot, svg)", s)
}

type GraphGenerator struct {
	store store.Store
}

func NewGraphGenerator(s store.Store) *GraphGenerator {
	return &GraphGenerator{store: s}
}

// Graph is a rendered graph plus a few counts for callers that summarize it.
type Graph struct {
	Source    string
	NodeCount int
	EdgeCount int
}

// GenerateCircleGraph draws every contact and the circles they are tagged with.
// Circles without members are still drawn when they exist as circle records.
func (g *GraphGenerator) GenerateCircleGraph(ctx context.Context, format Format) (*Graph, error) {
	contacts, err := g.store.FindContacts(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	circles, err := g.store.ListCircles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch circles: %w", err)
	}

	return render(ctx, "Circles", format, circles, contacts, false)
}

// GenerateContactGraph draws one contact, its circles, and the other contacts
// sharing those circles.
func (g *GraphGenerator) GenerateContactGraph(ctx context.Context, id uuid.UUID, format Format) (*Graph, error) {
	center, err := g.store.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}

	contacts := []models.Contact{*center}
	seen := map[uuid.UUID]bool{center.ID: true}
	for _, circle := range center.Circles {
		members, err := g.store.FindContacts(ctx, store.Filter{Circle: circle})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch circle members: %w", err)
		}
		for _, m := range members {
			if !seen[m.ID] {
				seen[m.ID] = true
				contacts = append(contacts, m)
			}
		}
	}

	var circles []models.Circle
	for _, name := range center.Circles {
		circles = append(circles, models.Circle{Name: name})
	}

	return render(ctx, center.Name, format, circles, contacts, true)
}

// render draws circles and contacts. With onlyListed set, edges to circles
// missing from circles are left out.
func render(ctx context.Context, title string, format Format, circles []models.Circle, contacts []models.Contact, onlyListed bool) (*Graph, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel(title)
	graph.SetRankDir(cgraph.LRRank)

	out := &Graph{}
	circleNodes := make(map[string]*cgraph.Node)
	addCircle := func(name, color string) (*cgraph.Node, error) {
		if node, ok := circleNodes[name]; ok {
			return node, nil
		}
		node, err := graph.CreateNodeByName("circle_" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to create circle node: %w", err)
		}
		node.SetLabel(name)
		node.SetShape("box")
		node.SetStyle("filled")
		if color == "" {
			color = "lightblue"
		}
		node.SetFillColor(color)
		circleNodes[name] = node
		out.NodeCount++
		return node, nil
	}

	for _, c := range circles {
		if _, err := addCircle(c.Name, c.Color); err != nil {
			return nil, err
		}
	}

	for _, contact := range contacts {
		node, err := graph.CreateNodeByName("contact_" + contact.ID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to create contact node: %w", err)
		}
		node.SetLabel(contact.Name)
		node.SetShape("ellipse")
		out.NodeCount++

		names := append([]string(nil), contact.Circles...)
		sort.Strings(names)
		for _, name := range names {
			if _, listed := circleNodes[name]; onlyListed && !listed {
				continue
			}
			circleNode, err := addCircle(name, "")
			if err != nil {
				return nil, err
			}
			if _, err := graph.CreateEdgeByName("", node, circleNode); err != nil {
				return nil, fmt.Errorf("failed to create edge: %w", err)
			}
			out.EdgeCount++
		}
	}

	var buf bytes.Buffer
	gvFormat := graphviz.XDOT
	if format == FormatSVG {
		gvFormat = graphviz.SVG
	}
	if err := gv.Render(ctx, graph, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}
	out.Source = buf.String()
	return out, nil
}
