// ABOUTME: HTML page handlers for the contact list, contact detail and public profiles
// ABOUTME: Pages render through layout.html with a named content block
package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/store"
	"github.com/networkia/networkia/viz"
)

// contactRow is a contact as shown in lists, with its resolved next meet.
type contactRow struct {
	models.Contact
	NextMeet string
	DaysAway int
	Overdue  bool
	Advanced bool
}

func toRow(a *agenda.Agenda, c models.Contact) contactRow {
	row := contactRow{Contact: c}
	next, advanced := a.EffectiveNextMeet(c)
	if !next.IsZero() {
		today := a.Today()
		row.NextMeet = next.String()
		row.DaysAway = today.DaysUntil(next)
		row.Overdue = next.Before(today)
		row.Advanced = advanced
	}
	return row
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	a := s.agendaFor(r)
	ctx := r.Context()

	contacts, err := a.Store().FindContacts(ctx, store.Filter{
		Query:  r.URL.Query().Get("q"),
		Circle: r.URL.Query().Get("circle"),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rows := make([]contactRow, len(contacts))
	for i, c := range contacts {
		rows[i] = toRow(a, c)
	}

	stats, err := viz.GenerateDashboardStats(ctx, a)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	upcoming, err := a.Upcoming(ctx, s.opts.UpcomingDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Title":           "Contacts",
		"ContentTemplate": "contacts-content",
		"Contacts":        rows,
		"Upcoming":        upcoming,
		"Stats":           stats,
		"Query":           r.URL.Query().Get("q"),
		"SignedIn":        sessionFrom(r).Authenticated(),
		"Today":           a.Today().String(),
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	a := s.agendaFor(r)
	contact, ok := s.lookupContact(w, r, a)
	if !ok {
		return
	}

	notes, err := a.Store().ListNotes(r.Context(), contact.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	interactions, err := a.Store().ListInteractions(r.Context(), contact.ID, 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Title":           contact.Name,
		"ContentTemplate": "contact-content",
		"Contact":         toRow(a, *contact),
		"Notes":           notes,
		"Interactions":    interactions,
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleQuickLog(w http.ResponseWriter, r *http.Request) {
	a := s.agendaFor(r)
	contact, ok := s.lookupContact(w, r, a)
	if !ok {
		return
	}

	interaction := &models.InteractionLog{
		ContactID:       contact.ID,
		InteractionType: models.InteractionMessage,
		Timestamp:       time.Now(),
		Notes:           "Quick contact via web UI",
	}
	if err := a.Store().LogInteraction(r.Context(), interaction); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(`<span class="logged">✓ Interaction logged</span>`)); err != nil {
		s.logger.Warn("error writing response", zap.Error(err))
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	contact, err := s.selector.PublicProfile(r.Context(), r.PathValue("slug"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Title":           contact.Name,
		"ContentTemplate": "profile-content",
		"Contact":         contact,
		"Public":          true,
	}

	s.renderTemplate(w, "layout.html", data)
}

// lookupContact resolves the {id} path value, writing the error response itself
// when it fails.
func (s *Server) lookupContact(w http.ResponseWriter, r *http.Request, a *agenda.Agenda) (*models.Contact, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid contact ID", http.StatusBadRequest)
		return nil, false
	}

	contact, err := a.Store().GetContact(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Contact not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return contact, true
}
