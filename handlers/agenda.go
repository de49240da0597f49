// ABOUTME: Agenda MCP tool handlers
// ABOUTME: Implements upcoming_meets, advance_next_meets and export_calendar
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/calexport"
)

type AgendaHandlers struct {
	agenda *agenda.Agenda
}

func NewAgendaHandlers(a *agenda.Agenda) *AgendaHandlers {
	return &AgendaHandlers{agenda: a}
}

type UpcomingMeetsInput struct {
	Days int `json:"days,omitempty" jsonschema:"Look-ahead window in days (default 14)"`
}

type UpcomingMeet struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	DaysAway  int    `json:"days_away"`
	Overdue   bool   `json:"overdue"`
	Advanced  bool   `json:"advanced"`
	Cadence   string `json:"cadence,omitempty"`
}

type UpcomingBirthday struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	DaysAway  int    `json:"days_away"`
}

type UpcomingMeetsOutput struct {
	Today     string             `json:"today"`
	Meets     []UpcomingMeet     `json:"meets"`
	Birthdays []UpcomingBirthday `json:"birthdays"`
}

func (h *AgendaHandlers) UpcomingMeets(ctx context.Context, request *mcp.CallToolRequest, input UpcomingMeetsInput) (*mcp.CallToolResult, UpcomingMeetsOutput, error) {
	items, err := h.agenda.Upcoming(ctx, input.Days)
	if err != nil {
		return nil, UpcomingMeetsOutput{}, fmt.Errorf("failed to list upcoming meets: %w", err)
	}
	birthdays, err := h.agenda.UpcomingBirthdays(ctx, input.Days)
	if err != nil {
		return nil, UpcomingMeetsOutput{}, fmt.Errorf("failed to list birthdays: %w", err)
	}

	output := UpcomingMeetsOutput{
		Today:     h.agenda.Today().String(),
		Meets:     make([]UpcomingMeet, 0, len(items)),
		Birthdays: make([]UpcomingBirthday, 0, len(birthdays)),
	}
	for _, item := range items {
		output.Meets = append(output.Meets, UpcomingMeet{
			ContactID: item.Contact.ID.String(),
			Name:      item.Contact.Name,
			Date:      item.Date.String(),
			DaysAway:  item.DaysAway,
			Overdue:   item.Overdue,
			Advanced:  item.Advanced,
			Cadence:   string(item.Contact.Cadence),
		})
	}
	for _, b := range birthdays {
		output.Birthdays = append(output.Birthdays, UpcomingBirthday{
			ContactID: b.Contact.ID.String(),
			Name:      b.Contact.Name,
			Date:      b.Date.String(),
			DaysAway:  b.DaysAway,
		})
	}

	return nil, output, nil
}

type AdvanceNextMeetsInput struct{}

type AdvanceNextMeetsOutput struct {
	Advanced int `json:"advanced"`
}

func (h *AgendaHandlers) AdvanceNextMeets(ctx context.Context, request *mcp.CallToolRequest, input AdvanceNextMeetsInput) (*mcp.CallToolResult, AdvanceNextMeetsOutput, error) {
	n, err := h.agenda.AdvanceStale(ctx)
	if err != nil {
		return nil, AdvanceNextMeetsOutput{}, fmt.Errorf("failed to advance next meets: %w", err)
	}
	return nil, AdvanceNextMeetsOutput{Advanced: n}, nil
}

type ExportCalendarInput struct {
	ContactID string `json:"contact_id,omitempty" jsonschema:"Only export this contact (optional)"`
}

type ExportCalendarOutput struct {
	FileName string `json:"file_name"`
	MIMEType string `json:"mime_type"`
	Content  string `json:"content"`
	Message  string `json:"message,omitempty"`
}

func (h *AgendaHandlers) ExportCalendar(ctx context.Context, request *mcp.CallToolRequest, input ExportCalendarInput) (*mcp.CallToolResult, ExportCalendarOutput, error) {
	var (
		doc  string
		err  error
		base = "networkia"
	)
	if input.ContactID != "" {
		id, perr := parseID(input.ContactID, "contact_id")
		if perr != nil {
			return nil, ExportCalendarOutput{}, perr
		}
		base = "contact-" + id.String()
		doc, err = h.agenda.ExportContact(ctx, id)
	} else {
		doc, err = h.agenda.Export(ctx)
	}

	output := ExportCalendarOutput{FileName: calexport.FileName(base), MIMEType: calexport.MIMEType}
	if errors.Is(err, calexport.ErrNothingToExport) {
		output.Message = "No next meets or birthdays to export"
		return nil, output, nil
	}
	if err != nil {
		return nil, ExportCalendarOutput{}, fmt.Errorf("failed to export calendar: %w", err)
	}

	output.Content = doc
	return nil, output, nil
}
