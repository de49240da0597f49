// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add_contact, find_contacts, update_contact, set_next_meet, log_contact_interaction, add_note and delete_contact
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/nextmeet"
	"github.com/networkia/networkia/store"
)

type ContactHandlers struct {
	agenda *agenda.Agenda
}

func NewContactHandlers(a *agenda.Agenda) *ContactHandlers {
	return &ContactHandlers{agenda: a}
}

type AddContactInput struct {
	Name         string   `json:"name" jsonschema:"Contact name (required)"`
	Email        string   `json:"email,omitempty" jsonschema:"Contact email address"`
	Phone        string   `json:"phone,omitempty" jsonschema:"Contact phone number"`
	Company      string   `json:"company,omitempty" jsonschema:"Where the contact works"`
	Bio          string   `json:"bio,omitempty" jsonschema:"Free-form background"`
	Birthday     string   `json:"birthday,omitempty" jsonschema:"Birthday as 'Month Day', e.g. 'August 18'"`
	NextMeetDate string   `json:"next_meet_date,omitempty" jsonschema:"Next meeting date (YYYY-MM-DD)"`
	Cadence      string   `json:"cadence,omitempty" jsonschema:"Meeting cadence: weekly, biweekly, monthly, quarterly or none"`
	Circles      []string `json:"circles,omitempty" jsonschema:"Circles to tag the contact with"`
}

type ContactOutput struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email,omitempty"`
	Phone             string   `json:"phone,omitempty"`
	Company           string   `json:"company,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	Birthday          string   `json:"birthday,omitempty"`
	NextMeetDate      string   `json:"next_meet_date,omitempty"`
	EffectiveNextMeet string   `json:"effective_next_meet,omitempty"`
	Cadence           string   `json:"cadence,omitempty"`
	Circles           []string `json:"circles,omitempty"`
	PublicSlug        string   `json:"public_slug,omitempty"`
	IsPublic          bool     `json:"is_public"`
	LastContactedAt   *string  `json:"last_contacted_at,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, request *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ContactOutput{}, fmt.Errorf("name is required")
	}

	cadence, err := nextmeet.ParseCadence(input.Cadence)
	if err != nil {
		return nil, ContactOutput{}, err
	}
	nextMeet, err := normalizeDate(input.NextMeetDate)
	if err != nil {
		return nil, ContactOutput{}, err
	}

	contact := &models.Contact{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Company:      input.Company,
		Bio:          input.Bio,
		Birthday:     input.Birthday,
		NextMeetDate: nextMeet,
		Cadence:      cadence,
		Circles:      input.Circles,
	}

	if err := h.agenda.Store().CreateContact(ctx, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}

	return nil, h.contactToOutput(contact), nil
}

type FindContactsInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Search query (searches name and email)"`
	Circle string `json:"circle,omitempty" jsonschema:"Only contacts in this circle"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, request *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	contacts, err := h.agenda.Store().FindContacts(ctx, store.Filter{
		Query:  input.Query,
		Circle: input.Circle,
		Limit:  limit,
	})
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to find contacts: %w", err)
	}

	result := make([]ContactOutput, len(contacts))
	for i := range contacts {
		result[i] = h.contactToOutput(&contacts[i])
	}

	return nil, FindContactsOutput{Contacts: result}, nil
}

type UpdateContactInput struct {
	ID       string   `json:"id" jsonschema:"Contact ID (required)"`
	Name     string   `json:"name,omitempty" jsonschema:"Updated contact name"`
	Email    string   `json:"email,omitempty" jsonschema:"Updated email address"`
	Phone    string   `json:"phone,omitempty" jsonschema:"Updated phone number"`
	Company  string   `json:"company,omitempty" jsonschema:"Updated company"`
	Bio      string   `json:"bio,omitempty" jsonschema:"Updated bio"`
	Birthday string   `json:"birthday,omitempty" jsonschema:"Updated birthday ('Month Day')"`
	Circles  []string `json:"circles,omitempty" jsonschema:"Replaces the contact's circles"`
	IsPublic *bool    `json:"is_public,omitempty" jsonschema:"Share a public profile page"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, request *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	contact, err := h.lookup(ctx, input.ID, "id")
	if err != nil {
		return nil, ContactOutput{}, err
	}

	// Update fields if provided
	if input.Name != "" {
		contact.Name = input.Name
	}
	if input.Email != "" {
		contact.Email = input.Email
	}
	if input.Phone != "" {
		contact.Phone = input.Phone
	}
	if input.Company != "" {
		contact.Company = input.Company
	}
	if input.Bio != "" {
		contact.Bio = input.Bio
	}
	if input.Birthday != "" {
		contact.Birthday = input.Birthday
	}
	if input.Circles != nil {
		contact.Circles = input.Circles
	}
	if input.IsPublic != nil {
		contact.IsPublic = *input.IsPublic
		if contact.IsPublic && contact.PublicSlug == "" {
			contact.PublicSlug = models.NewPublicSlug()
		}
	}

	if err := h.agenda.Store().UpdateContact(ctx, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}

	return nil, h.contactToOutput(contact), nil
}

type SetNextMeetInput struct {
	ID      string `json:"id" jsonschema:"Contact ID (required)"`
	Date    string `json:"date,omitempty" jsonschema:"Next meeting date (YYYY-MM-DD); empty clears it"`
	Cadence string `json:"cadence,omitempty" jsonschema:"New cadence: weekly, biweekly, monthly, quarterly or none; empty keeps the current one"`
}

func (h *ContactHandlers) SetNextMeet(ctx context.Context, request *mcp.CallToolRequest, input SetNextMeetInput) (*mcp.CallToolResult, ContactOutput, error) {
	contact, err := h.lookup(ctx, input.ID, "id")
	if err != nil {
		return nil, ContactOutput{}, err
	}

	if contact.NextMeetDate, err = normalizeDate(input.Date); err != nil {
		return nil, ContactOutput{}, err
	}
	if input.Cadence != "" {
		if contact.Cadence, err = nextmeet.ParseCadence(input.Cadence); err != nil {
			return nil, ContactOutput{}, err
		}
	}

	if err := h.agenda.Store().UpdateContact(ctx, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}

	return nil, h.contactToOutput(contact), nil
}

type LogContactInteractionInput struct {
	ContactID       string `json:"contact_id" jsonschema:"Contact ID (required)"`
	InteractionType string `json:"interaction_type,omitempty" jsonschema:"meeting, call, email, message or event (default meeting)"`
	Note            string `json:"note,omitempty" jsonschema:"Note about the interaction"`
	InteractionDate string `json:"interaction_date,omitempty" jsonschema:"Date of interaction (ISO 8601 format, defaults to now)"`
}

func (h *ContactHandlers) LogContactInteraction(ctx context.Context, request *mcp.CallToolRequest, input LogContactInteractionInput) (*mcp.CallToolResult, ContactOutput, error) {
	contact, err := h.lookup(ctx, input.ContactID, "contact_id")
	if err != nil {
		return nil, ContactOutput{}, err
	}

	interactionType := input.InteractionType
	if interactionType == "" {
		interactionType = models.InteractionMeeting
	}

	// Parse interaction date or use current time
	interactionTime := time.Now()
	if input.InteractionDate != "" {
		parsedTime, err := time.Parse(time.RFC3339, input.InteractionDate)
		if err != nil {
			return nil, ContactOutput{}, fmt.Errorf("invalid interaction_date format (use ISO 8601/RFC3339): %w", err)
		}
		interactionTime = parsedTime
	}

	err = h.agenda.Store().LogInteraction(ctx, &models.InteractionLog{
		ContactID:       contact.ID,
		InteractionType: interactionType,
		Timestamp:       interactionTime,
		Notes:           input.Note,
	})
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to log interaction: %w", err)
	}

	// Reload contact to get updated values
	contact, err = h.agenda.Store().GetContact(ctx, contact.ID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to reload contact: %w", err)
	}

	return nil, h.contactToOutput(contact), nil
}

type AddNoteInput struct {
	ContactID string `json:"contact_id" jsonschema:"Contact ID (required)"`
	Content   string `json:"content" jsonschema:"Note text (required)"`
}

type NoteOutput struct {
	ID        string `json:"id"`
	ContactID string `json:"contact_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (h *ContactHandlers) AddNote(ctx context.Context, request *mcp.CallToolRequest, input AddNoteInput) (*mcp.CallToolResult, NoteOutput, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, NoteOutput{}, fmt.Errorf("content is required")
	}
	contact, err := h.lookup(ctx, input.ContactID, "contact_id")
	if err != nil {
		return nil, NoteOutput{}, err
	}

	note := &models.Note{ContactID: contact.ID, Content: input.Content}
	if err := h.agenda.Store().AddNote(ctx, note); err != nil {
		return nil, NoteOutput{}, fmt.Errorf("failed to add note: %w", err)
	}

	return nil, NoteOutput{
		ID:        note.ID.String(),
		ContactID: note.ContactID.String(),
		Content:   note.Content,
		CreatedAt: note.CreatedAt.Format(time.RFC3339),
	}, nil
}

type DeleteContactInput struct {
	ID string `json:"id" jsonschema:"Contact ID (required)"`
}

type DeleteContactOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *ContactHandlers) DeleteContact(ctx context.Context, request *mcp.CallToolRequest, input DeleteContactInput) (*mcp.CallToolResult, DeleteContactOutput, error) {
	contactID, err := parseID(input.ID, "id")
	if err != nil {
		return nil, DeleteContactOutput{}, err
	}

	if err := h.agenda.Store().DeleteContact(ctx, contactID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, DeleteContactOutput{}, fmt.Errorf("contact not found")
		}
		return nil, DeleteContactOutput{}, fmt.Errorf("failed to delete contact: %w", err)
	}

	return nil, DeleteContactOutput{
		Success: true,
		Message: fmt.Sprintf("Deleted contact: %s", contactID),
	}, nil
}

func (h *ContactHandlers) lookup(ctx context.Context, raw, field string) (*models.Contact, error) {
	id, err := parseID(raw, field)
	if err != nil {
		return nil, err
	}
	contact, err := h.agenda.Store().GetContact(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("contact not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

func parseID(raw, field string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return id, nil
}

// normalizeDate accepts "" or a YYYY-MM-DD date (a trailing time part is dropped).
func normalizeDate(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	d, ok := nextmeet.ParseDate(raw)
	if !ok {
		return "", fmt.Errorf("invalid date %q (use YYYY-MM-DD)", raw)
	}
	return d.String(), nil
}

func (h *ContactHandlers) contactToOutput(contact *models.Contact) ContactOutput {
	return contactToOutput(h.agenda, contact)
}

func contactToOutput(a *agenda.Agenda, contact *models.Contact) ContactOutput {
	output := ContactOutput{
		ID:           contact.ID.String(),
		Name:         contact.Name,
		Email:        contact.Email,
		Phone:        contact.Phone,
		Company:      contact.Company,
		Bio:          contact.Bio,
		Birthday:     contact.Birthday,
		NextMeetDate: contact.NextMeetDate,
		Cadence:      string(contact.Cadence),
		Circles:      contact.Circles,
		PublicSlug:   contact.PublicSlug,
		IsPublic:     contact.IsPublic,
		CreatedAt:    contact.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    contact.UpdatedAt.Format(time.RFC3339),
	}

	if effective, _ := a.EffectiveNextMeet(*contact); !effective.IsZero() {
		output.EffectiveNextMeet = effective.String()
	}

	if contact.LastContactedAt != nil {
		lca := contact.LastContactedAt.Format(time.RFC3339)
		output.LastContactedAt = &lca
	}

	return output
}
