// ABOUTME: MCP prompt handlers for reusable address book workflow templates
// ABOUTME: Provides contact-summary, weekly-checkin and reconnect-suggestions prompts
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/store"
)

type PromptHandlers struct {
	agenda *agenda.Agenda
}

func NewPromptHandlers(a *agenda.Agenda) *PromptHandlers {
	return &PromptHandlers{agenda: a}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "contact-summary":
		return h.getContactSummaryPrompt(ctx, arguments)
	case "weekly-checkin":
		return h.getWeeklyCheckinPrompt(ctx, arguments)
	case "reconnect-suggestions":
		return h.getReconnectSuggestionsPrompt(ctx, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func (h *PromptHandlers) getContactSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	contactID, err := parseID(args["contact_id"], "contact_id")
	if err != nil {
		return nil, err
	}

	contact, err := h.agenda.Store().GetContact(ctx, contactID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("contact not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}

	notes, err := h.agenda.Store().ListNotes(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notes: %w", err)
	}
	interactions, err := h.agenda.Store().ListInteractions(ctx, contactID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please provide a summary of this contact:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", contact.Name))
	if contact.Email != "" {
		promptText.WriteString(fmt.Sprintf("Email: %s\n", contact.Email))
	}
	if contact.Company != "" {
		promptText.WriteString(fmt.Sprintf("Company: %s\n", contact.Company))
	}
	if contact.Birthday != "" {
		promptText.WriteString(fmt.Sprintf("Birthday: %s\n", contact.Birthday))
	}
	if len(contact.Circles) > 0 {
		promptText.WriteString(fmt.Sprintf("Circles: %s\n", strings.Join(contact.Circles, ", ")))
	}
	if next, _ := h.agenda.EffectiveNextMeet(*contact); !next.IsZero() {
		promptText.WriteString(fmt.Sprintf("Next Meet: %s (%s)\n", next, contact.Cadence.Label()))
	}
	if contact.LastContactedAt != nil {
		promptText.WriteString(fmt.Sprintf("Last Contacted: %s\n", contact.LastContactedAt.Format("2006-01-02")))
	}
	if contact.Bio != "" {
		promptText.WriteString(fmt.Sprintf("\nBio: %s\n", contact.Bio))
	}

	if len(notes) > 0 {
		promptText.WriteString("\nNotes:\n")
		for _, n := range notes {
			promptText.WriteString(fmt.Sprintf("  - %s: %s\n", n.CreatedAt.Format("2006-01-02"), n.Content))
		}
	}
	if len(interactions) > 0 {
		promptText.WriteString("\nRecent Interactions:\n")
		for _, i := range interactions {
			promptText.WriteString(fmt.Sprintf("  - %s %s", i.Timestamp.Format("2006-01-02"), i.InteractionType))
			if i.Notes != "" {
				promptText.WriteString(": " + i.Notes)
			}
			promptText.WriteString("\n")
		}
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. A brief summary of who they are to me")
	promptText.WriteString("\n2. Topics worth bringing up next time we meet")
	promptText.WriteString("\n3. Whether the current meeting cadence still fits")

	return textPrompt(fmt.Sprintf("Summary for contact: %s", contact.Name), promptText.String()), nil
}

func (h *PromptHandlers) getWeeklyCheckinPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	days := 7
	if raw, ok := args["days"]; ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("days must be a positive number")
		}
		days = n
	}

	items, err := h.agenda.Upcoming(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming meets: %w", err)
	}
	birthdays, err := h.agenda.UpcomingBirthdays(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch birthdays: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Help me plan the next %d days (today is %s).\n\n", days, h.agenda.Today()))

	if len(items) == 0 {
		promptText.WriteString("No meets are scheduled.\n")
	} else {
		promptText.WriteString("Meets:\n")
		for _, item := range items {
			status := fmt.Sprintf("in %d days", item.DaysAway)
			switch {
			case item.Overdue:
				status = fmt.Sprintf("OVERDUE by %d days", -item.DaysAway)
			case item.DaysAway == 0:
				status = "today"
			}
			promptText.WriteString(fmt.Sprintf("  - %s on %s (%s)\n", item.Contact.Name, item.Date, status))
		}
	}

	if len(birthdays) > 0 {
		promptText.WriteString("\nBirthdays:\n")
		for _, b := range birthdays {
			promptText.WriteString(fmt.Sprintf("  - %s on %s\n", b.Contact.Name, b.Date))
		}
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. A suggested order for reaching out")
	promptText.WriteString("\n2. A short message draft for each overdue meet")
	promptText.WriteString("\n3. Gift or message ideas for the birthdays")

	return textPrompt("Weekly check-in plan", promptText.String()), nil
}

func (h *PromptHandlers) getReconnectSuggestionsPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	circle := args["circle"]
	contacts, err := h.agenda.Store().FindContacts(ctx, store.Filter{Circle: circle})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	today := h.agenda.Today()
	var promptText strings.Builder
	if circle != "" {
		promptText.WriteString(fmt.Sprintf("These are the people in my %s circle:\n\n", circle))
	} else {
		promptText.WriteString("These are the people in my address book:\n\n")
	}

	for _, c := range contacts {
		last := "never contacted"
		if c.LastContactedAt != nil {
			last = fmt.Sprintf("last contacted %d days ago", h.agenda.DateOf(*c.LastContactedAt).DaysUntil(today))
		}
		promptText.WriteString(fmt.Sprintf("  - %s (%s", c.Name, last))
		if c.Cadence.Recurring() {
			promptText.WriteString(", " + strings.ToLower(c.Cadence.Label()))
		}
		promptText.WriteString(")\n")
	}

	promptText.WriteString("\nSuggest who I should reconnect with first and why, and a cadence for anyone without one.")

	return textPrompt("Reconnect suggestions", promptText.String()), nil
}

func textPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: text,
				},
			},
		},
	}
}
