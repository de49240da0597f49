// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides the generate_graph tool for circle membership graphs
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/viz"
)

type VizHandlers struct {
	agenda *agenda.Agenda
}

func NewVizHandlers(a *agenda.Agenda) *VizHandlers {
	return &VizHandlers{agenda: a}
}

type GenerateGraphInput struct {
	Type      string `json:"type" jsonschema:"Graph type: circles or contact"`
	ContactID string `json:"contact_id,omitempty" jsonschema:"UUID of the contact (required for contact graphs)"`
	Format    string `json:"format,omitempty" jsonschema:"Output format: dot (default) or svg"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	Format    string `json:"format"`
	Source    string `json:"source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, request *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	}
	format, err := viz.ParseFormat(input.Format)
	if err != nil {
		return nil, GenerateGraphOutput{}, err
	}

	generator := viz.NewGraphGenerator(h.agenda.Store())
	var graph *viz.Graph

	switch input.Type {
	case "circles":
		graph, err = generator.GenerateCircleGraph(ctx, format)

	case "contact":
		id, perr := parseID(input.ContactID, "contact_id")
		if perr != nil {
			return nil, GenerateGraphOutput{}, perr
		}
		graph, err = generator.GenerateContactGraph(ctx, id, format)

	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s (valid types: circles, contact)", input.Type)
	}

	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		Format:    string(format),
		Source:    graph.Source,
		NodeCount: graph.NodeCount,
		EdgeCount: graph.EdgeCount,
	}, nil
}
