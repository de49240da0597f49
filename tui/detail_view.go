package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/nextmeet"
)

const detailInteractionLimit = 10

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

type contactDetail struct {
	contact      *models.Contact
	nextMeet     nextmeet.Date
	advanced     bool
	notes        []models.Note
	interactions []models.InteractionLog
}

func (m Model) loadDetail(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		s := m.agenda.Store()
		contact, err := s.GetContact(m.ctx, id)
		if err != nil {
			return detailLoadedMsg{err: fmt.Errorf("failed to get contact: %w", err)}
		}
		notes, err := s.ListNotes(m.ctx, id)
		if err != nil {
			return detailLoadedMsg{err: fmt.Errorf("failed to list notes: %w", err)}
		}
		interactions, err := s.ListInteractions(m.ctx, id, detailInteractionLimit)
		if err != nil {
			return detailLoadedMsg{err: fmt.Errorf("failed to list interactions: %w", err)}
		}
		next, advanced := m.agenda.EffectiveNextMeet(*contact)
		return detailLoadedMsg{detail: &contactDetail{
			contact:      contact,
			nextMeet:     next,
			advanced:     advanced,
			notes:        notes,
			interactions: interactions,
		}}
	}
}

func (m Model) renderDetailView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("CONTACT"))
	s.WriteString("\n\n")

	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.detail == nil:
		s.WriteString("Loading...")
	default:
		s.WriteString(m.renderContactDetail())
	}

	s.WriteString("\n\n")

	// Help
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderContactDetail() string {
	d := m.detail
	contact := d.contact

	var s strings.Builder

	s.WriteString(m.renderField("Name", contact.Name))
	s.WriteString(m.renderField("Email", contact.Email))
	s.WriteString(m.renderField("Phone", contact.Phone))
	s.WriteString(m.renderField("Company", contact.Company))
	s.WriteString(m.renderField("Birthday", contact.Birthday))
	s.WriteString(m.renderField("Circles", strings.Join(contact.Circles, ", ")))

	next := ""
	if !d.nextMeet.IsZero() {
		next = d.nextMeet.String()
		if d.advanced {
			next += fmt.Sprintf(" (stored %s)", contact.NextMeetDate)
		}
	}
	s.WriteString(m.renderField("Next Meet", next))
	s.WriteString(m.renderField("Cadence", contact.Cadence.Label()))

	if contact.LastContactedAt != nil {
		s.WriteString(m.renderField("Last Contacted", contact.LastContactedAt.Format("2006-01-02")))
	}

	s.WriteString(m.renderField("Bio", contact.Bio))

	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("NOTES"))
	s.WriteString("\n")
	for _, note := range d.notes {
		s.WriteString(fmt.Sprintf("  • [%s] %s\n", note.CreatedAt.Format("2006-01-02"), note.Content))
	}

	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("INTERACTIONS"))
	s.WriteString("\n")
	for _, in := range d.interactions {
		line := fmt.Sprintf("  • [%s] %s", in.Timestamp.Format("2006-01-02"), in.InteractionType)
		if in.Notes != "" {
			line += ": " + in.Notes
		}
		s.WriteString(line + "\n")
	}

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"r: Refresh",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.viewMode = ViewList
		m.detail = nil
		m.err = nil
	}

	return m, nil
}
