// ABOUTME: MCP resource handlers for exposing address book data
// ABOUTME: Provides read-only access to contacts, the upcoming list and the calendar export via URI
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/calexport"
	"github.com/networkia/networkia/store"
)

const resourceScheme = "networkia://"

type ResourceHandlers struct {
	agenda *agenda.Agenda
}

func NewResourceHandlers(a *agenda.Agenda) *ResourceHandlers {
	return &ResourceHandlers{agenda: a}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")

	switch parts[0] {
	case "contacts":
		if len(parts) == 1 || parts[1] == "" {
			return h.readAllContacts(ctx, uri)
		}
		return h.readContact(ctx, uri, parts[1])

	case "upcoming":
		return h.readUpcoming(ctx, uri)

	case "calendar.ics":
		return h.readCalendar(ctx, uri)

	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
}

func (h *ResourceHandlers) readAllContacts(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	contacts, err := h.agenda.Store().FindContacts(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	result := make([]ContactOutput, len(contacts))
	for i := range contacts {
		result[i] = contactToOutput(h.agenda, &contacts[i])
	}
	return jsonResource(uri, result)
}

func (h *ResourceHandlers) readContact(ctx context.Context, uri, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid contact ID: %w", err)
	}

	contact, err := h.agenda.Store().GetContact(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}

	notes, err := h.agenda.Store().ListNotes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notes: %w", err)
	}
	interactions, err := h.agenda.Store().ListInteractions(ctx, id, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}

	contactData := struct {
		ContactOutput
		Notes        any `json:"notes"`
		Interactions any `json:"interactions"`
	}{
		ContactOutput: contactToOutput(h.agenda, contact),
		Notes:         notes,
		Interactions:  interactions,
	}
	return jsonResource(uri, contactData)
}

func (h *ResourceHandlers) readUpcoming(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	_, output, err := NewAgendaHandlers(h.agenda).UpcomingMeets(ctx, nil, UpcomingMeetsInput{})
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, output)
}

func (h *ResourceHandlers) readCalendar(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	doc, err := h.agenda.Export(ctx)
	if errors.Is(err, calexport.ErrNothingToExport) {
		// An empty calendar is still a valid document
		doc, err = calexport.BuildCalendarDocument(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to export calendar: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: calexport.MIMEType,
			Text:     doc,
		},
	}}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
