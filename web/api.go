// ABOUTME: JSON API, calendar downloads and graph endpoint
// ABOUTME: Every handler works against the store chosen by the request session
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/networkia/networkia/calexport"
	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/nextmeet"
	"github.com/networkia/networkia/store"
	"github.com/networkia/networkia/viz"
)

type contactJSON struct {
	models.Contact
	EffectiveNextMeet string `json:"effective_next_meet,omitempty"`
	DaysAway          *int   `json:"days_away,omitempty"`
	Overdue           bool   `json:"overdue"`
}

func toJSON(row contactRow) contactJSON {
	out := contactJSON{Contact: row.Contact, EffectiveNextMeet: row.NextMeet, Overdue: row.Overdue}
	if row.NextMeet != "" {
		days := row.DaysAway
		out.DaysAway = &days
	}
	return out
}

// contactRequest is the create/update body. Absent fields keep their value on update.
type contactRequest struct {
	Name         *string   `json:"name"`
	Email        *string   `json:"email"`
	Phone        *string   `json:"phone"`
	Company      *string   `json:"company"`
	Bio          *string   `json:"bio"`
	Birthday     *string   `json:"birthday"`
	NextMeetDate *string   `json:"next_meet_date"`
	Cadence      *string   `json:"cadence"`
	Circles      *[]string `json:"circles"`
	IsPublic     *bool     `json:"is_public"`
}

func (req contactRequest) apply(c *models.Contact) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Name, req.Name)
	set(&c.Email, req.Email)
	set(&c.Phone, req.Phone)
	set(&c.Company, req.Company)
	set(&c.Bio, req.Bio)
	set(&c.Birthday, req.Birthday)

	if req.NextMeetDate != nil {
		c.NextMeetDate = ""
		if *req.NextMeetDate != "" {
			d, ok := nextmeet.ParseDate(*req.NextMeetDate)
			if !ok {
				return errors.New("next_meet_date must be YYYY-MM-DD")
			}
			c.NextMeetDate = d.String()
		}
	}
	if req.Cadence != nil {
		cadence, err := nextmeet.ParseCadence(*req.Cadence)
		if err != nil {
			return err
		}
		c.Cadence = cadence
	}
	if req.Circles != nil {
		c.Circles = *req.Circles
	}
	if req.IsPublic != nil {
		c.IsPublic = *req.IsPublic
		if c.IsPublic && c.PublicSlug == "" {
			c.PublicSlug = models.NewPublicSlug()
		}
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("error writing response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidContact),
		errors.Is(err, store.ErrInvalidInteraction),
		errors.Is(err, nextmeet.ErrUnknownCadence):
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) handleAPIListContacts(w http.ResponseWriter, r *http.Request) {
	a := s.agendaFor(r)
	contacts, err := a.Store().FindContacts(r.Context(), store.Filter{
		Query:  r.URL.Query().Get("q"),
		Circle: r.URL.Query().Get("circle"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]contactJSON, len(contacts))
	for i, c := range contacts {
		out[i] = toJSON(toRow(a, c))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPICreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	contact := &models.Contact{}
	if err := req.apply(contact); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	a := s.agendaFor(r)
	if err := a.Store().CreateContact(r.Context(), contact); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toJSON(toRow(a, *contact)))
}

func (s *Server) handleAPIGetContact(w http.ResponseWriter, r *http.Request) {
	a := s.agendaFor(r)
	contact, ok := s.lookupContact(w, r, a)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, toJSON(toRow(a, *contact)))
}

func (s *Server) handleAPIUpdateContact(w http.ResponseWriter, r *http.Request) {
	a := s.agendaFor(r)
	contact, ok := s.lookupContact(w, r, a)
	if !ok {
		return
	}

	var req contactRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := req.apply(contact); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := a.Store().UpdateContact(r.Context(), contact); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toJSON(toRow(a, *contact)))
}

func (s *Server) handleAPIDeleteContact(w http.ResponseWriter, r *http.Request) {
	a := s.agendaFor(r)
	contact, ok := s.lookupContact(w, r, a)
	if !ok {
		return
	}
	if err := a.Store().DeleteContact(r.Context(), contact.ID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIAddNote(w http.ResponseWriter, r *http.Request) {
	a := s.agendaFor(r)
	contact, ok := s.lookupContact(w, r, a)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.Content) == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	note := &models.Note{ContactID: contact.ID, Content: req.Content}
	if err := a.Store().AddNote(r.Context(), note); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleAPILogInteraction(w http.ResponseWriter, r *http.Request) {
	a := s.agendaFor(r)
	contact, ok := s.lookupContact(w, r, a)
	if !ok {
		return
	}

	var req struct {
		Type      string     `json:"interaction_type"`
		Notes     string     `json:"notes"`
		Timestamp *time.Time `json:"timestamp"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	interaction := &models.InteractionLog{
		ContactID:       contact.ID,
		InteractionType: req.Type,
		Timestamp:       time.Now(),
		Notes:           req.Notes,
	}
	if interaction.InteractionType == "" {
		interaction.InteractionType = models.InteractionMeeting
	}
	if req.Timestamp != nil {
		interaction.Timestamp = *req.Timestamp
	}

	if err := a.Store().LogInteraction(r.Context(), interaction); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, interaction)
}

type upcomingJSON struct {
	Today     string             `json:"today"`
	Meets     []upcomingMeet     `json:"meets"`
	Birthdays []upcomingBirthday `json:"birthdays"`
}

type upcomingMeet struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	DaysAway  int    `json:"days_away"`
	Overdue   bool   `json:"overdue"`
	Advanced  bool   `json:"advanced"`
}

type upcomingBirthday struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	DaysAway  int    `json:"days_away"`
}

func (s *Server) handleAPIUpcoming(w http.ResponseWriter, r *http.Request) {
	a := s.agendaFor(r)
	days := s.windowFrom(r)

	items, err := a.Upcoming(r.Context(), days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	birthdays, err := a.UpcomingBirthdays(r.Context(), days)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := upcomingJSON{
		Today:     a.Today().String(),
		Meets:     []upcomingMeet{},
		Birthdays: []upcomingBirthday{},
	}
	for _, item := range items {
		out.Meets = append(out.Meets, upcomingMeet{
			ContactID: item.Contact.ID.String(),
			Name:      item.Contact.Name,
			Date:      item.Date.String(),
			DaysAway:  item.DaysAway,
			Overdue:   item.Overdue,
			Advanced:  item.Advanced,
		})
	}
	for _, b := range birthdays {
		out.Birthdays = append(out.Birthdays, upcomingBirthday{
			ContactID: b.Contact.ID.String(),
			Name:      b.Contact.Name,
			Date:      b.Date.String(),
			DaysAway:  b.DaysAway,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIListCircles(w http.ResponseWriter, r *http.Request) {
	circles, err := s.selector.For(sessionFrom(r)).ListCircles(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if circles == nil {
		circles = []models.Circle{}
	}
	s.writeJSON(w, http.StatusOK, circles)
}

func (s *Server) handleAPISaveCircle(w http.ResponseWriter, r *http.Request) {
	var circle models.Circle
	if err := decodeBody(w, r, &circle); err != nil || strings.TrimSpace(circle.Name) == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if err := s.selector.For(sessionFrom(r)).SaveCircle(r.Context(), &circle); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, circle)
}

// handleAPIImport copies the local scope into the signed-in account.
func (s *Server) handleAPIImport(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	if !session.Authenticated() {
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "sign in to import local data"})
		return
	}
	to := s.selector.Server(session.UserID)
	if to == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no server database configured"})
		return
	}

	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = s.selector.LocalScope()
	}

	result, err := store.Import(r.Context(), s.selector.Local(scope), to)
	if err != nil {
		s.logger.Error("import failed", zap.String("user", session.UserID), zap.Error(err))
		s.writeError(w, err)
		return
	}
	s.logger.Info("imported local data",
		zap.String("user", session.UserID),
		zap.String("scope", scope),
		zap.Int("contacts", result.Contacts),
		zap.Int("skipped", result.Skipped),
		zap.Int("reslugged", result.Reslugged),
	)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.agendaFor(r).Export(r.Context())
	s.writeCalendar(w, "networkia", doc, err)
}

func (s *Server) handleExportContact(w http.ResponseWriter, r *http.Request) {
	a := s.agendaFor(r)
	contact, ok := s.lookupContact(w, r, a)
	if !ok {
		return
	}
	doc, err := a.ExportContact(r.Context(), contact.ID)
	s.writeCalendar(w, "contact-"+contact.ID.String(), doc, err)
}

func (s *Server) writeCalendar(w http.ResponseWriter, base, doc string, err error) {
	if errors.Is(err, calexport.ErrNothingToExport) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no next meets or birthdays to export"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", calexport.MIMEType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+calexport.FileName(base)+`"`)
	if _, err := w.Write([]byte(doc)); err != nil {
		s.logger.Warn("error writing calendar", zap.Error(err))
	}
}

func (s *Server) handleCircleGraph(w http.ResponseWriter, r *http.Request) {
	format, err := viz.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	graph, err := viz.NewGraphGenerator(s.selector.For(sessionFrom(r))).GenerateCircleGraph(r.Context(), format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	contentType := "text/vnd.graphviz; charset=utf-8"
	if format == viz.FormatSVG {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write([]byte(graph.Source)); err != nil {
		s.logger.Warn("error writing graph", zap.Error(err))
	}
}
