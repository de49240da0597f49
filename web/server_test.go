// ABOUTME: Tests for the web UI, JSON API and calendar downloads
// ABOUTME: Drives the routed handler through httptest with in-memory backends
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/db"
	"github.com/networkia/networkia/localstore"
	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/store"
)

var fixedNow = time.Date(2024, 1, 24, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	sel     *store.Selector
	handler http.Handler
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	kv, err := localstore.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	sel := store.NewSelector(database, kv, "")
	srv, err := NewServer(sel, Options{
		Theme: "dark",
		AgendaOptions: []agenda.Option{
			agenda.WithClock(func() time.Time { return fixedNow }),
			agenda.WithLocation(time.UTC),
		},
	})
	require.NoError(t, err)

	return &testEnv{sel: sel, handler: srv.Handler()}
}

func (e *testEnv) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set(SessionHeader, user)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestContactsAPIRoundTrip(t *testing.T) {
	env := setupServer(t)

	rec := env.do(t, http.MethodPost, "/api/contacts", "", map[string]interface{}{
		"name":           "Ana",
		"next_meet_date": "2024-01-10",
		"cadence":        "weekly",
		"circles":        []string{"Friends"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[contactJSON](t, rec)
	assert.Equal(t, "2024-01-10", created.NextMeetDate)
	assert.Equal(t, "2024-01-31", created.EffectiveNextMeet)
	require.NotNil(t, created.DaysAway)
	assert.Equal(t, 7, *created.DaysAway)
	assert.False(t, created.Overdue)

	id := created.ID.String()

	rec = env.do(t, http.MethodPut, "/api/contacts/"+id, "", map[string]interface{}{
		"email":     "ana@example.com",
		"is_public": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[contactJSON](t, rec)
	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, "ana@example.com", updated.Email)
	assert.NotEmpty(t, updated.PublicSlug)

	rec = env.do(t, http.MethodGet, "/api/contacts?q=ana@", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]contactJSON](t, rec), 1)

	rec = env.do(t, http.MethodPost, "/api/contacts/"+id+"/notes", "", map[string]string{"content": "likes tea"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/contacts/"+id+"/interactions", "", map[string]string{"interaction_type": "call"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/contacts/"+id+"/interactions", "", map[string]string{"interaction_type": "telegram"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/contacts/"+id, "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/contacts/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactsAPIValidation(t *testing.T) {
	env := setupServer(t)

	rec := env.do(t, http.MethodPost, "/api/contacts", "", map[string]string{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/contacts", "", map[string]string{"name": "X", "cadence": "yearly"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/contacts", "", map[string]string{"name": "X", "next_meet_date": "01/02/2024"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/contacts", "", map[string]string{"name": "X", "unknown": "field"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/contacts/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionSelectsBackend(t *testing.T) {
	env := setupServer(t)

	rec := env.do(t, http.MethodPost, "/api/contacts", "alice", map[string]string{"name": "Server Ana"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/contacts", "", map[string]string{"name": "Local Ben"})
	require.Equal(t, http.StatusCreated, rec.Code)

	signedIn := decode[[]contactJSON](t, env.do(t, http.MethodGet, "/api/contacts", "alice", nil))
	require.Len(t, signedIn, 1)
	assert.Equal(t, "Server Ana", signedIn[0].Name)

	signedOut := decode[[]contactJSON](t, env.do(t, http.MethodGet, "/api/contacts", "", nil))
	require.Len(t, signedOut, 1)
	assert.Equal(t, "Local Ben", signedOut[0].Name)

	assert.Empty(t, decode[[]contactJSON](t, env.do(t, http.MethodGet, "/api/contacts", "bob", nil)))
}

func TestImportEndpoint(t *testing.T) {
	env := setupServer(t)
	ctx := context.Background()
	require.NoError(t, env.sel.Local(store.DefaultLocalScope).CreateContact(ctx, &models.Contact{Name: "Local Ana"}))

	rec := env.do(t, http.MethodPost, "/api/import", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/import", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, store.ImportResult{Contacts: 1}, decode[store.ImportResult](t, rec))

	contacts := decode[[]contactJSON](t, env.do(t, http.MethodGet, "/api/contacts", "alice", nil))
	require.Len(t, contacts, 1)
	assert.Equal(t, "Local Ana", contacts[0].Name)

	rec = env.do(t, http.MethodPost, "/api/import", "alice", nil)
	assert.Equal(t, store.ImportResult{Skipped: 1}, decode[store.ImportResult](t, rec))
	// A second account can import the same local data
	rec = env.do(t, http.MethodPost, "/api/import", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, store.ImportResult{Contacts: 1}, decode[store.ImportResult](t, rec))
	assert.Len(t, decode[[]contactJSON](t, env.do(t, http.MethodGet, "/api/contacts", "bob", nil)), 1)
}

func TestUpcomingEndpoint(t *testing.T) {
	env := setupServer(t)
	for _, body := range []map[string]string{
		{"name": "Late", "next_meet_date": "2024-01-20"},
		{"name": "Soon", "next_meet_date": "2024-01-26"},
		{"name": "Far", "next_meet_date": "2024-03-01"},
		{"name": "Bday", "birthday": "Jan 28"},
	} {
		require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/contacts", "", body).Code)
	}

	out := decode[upcomingJSON](t, env.do(t, http.MethodGet, "/api/upcoming?days=7", "", nil))
	assert.Equal(t, "2024-01-24", out.Today)
	require.Len(t, out.Meets, 2)
	assert.Equal(t, "Late", out.Meets[0].Name)
	assert.True(t, out.Meets[0].Overdue)
	assert.Equal(t, "Soon", out.Meets[1].Name)
	assert.Equal(t, 2, out.Meets[1].DaysAway)
	require.Len(t, out.Birthdays, 1)
	assert.Equal(t, "2024-01-28", out.Birthdays[0].Date)
}

func TestCalendarDownloads(t *testing.T) {
	env := setupServer(t)

	rec := env.do(t, http.MethodGet, "/export.ics", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/contacts", "", map[string]string{
		"name": "Ana", "next_meet_date": "2024-02-01", "birthday": "August 18",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[contactJSON](t, rec).ID.String()

	rec = env.do(t, http.MethodGet, "/export.ics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))
	assert.Equal(t, `attachment; filename="networkia.ics"`, rec.Header().Get("Content-Disposition"))

	cal, err := ics.ParseCalendar(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	assert.Len(t, cal.Events(), 2)

	rec = env.do(t, http.MethodGet, "/api/contacts/"+id+"/export.ics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "contact-"+id+".ics")
	assert.Contains(t, rec.Body.String(), "DTSTART;VALUE=DATE:20240201")
}

func TestPages(t *testing.T) {
	env := setupServer(t)
	rec := env.do(t, http.MethodPost, "/api/contacts", "", map[string]interface{}{
		"name": "Ana <3", "next_meet_date": "2024-01-20", "circles": []string{"Friends"}, "is_public": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[contactJSON](t, rec)

	rec = env.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, `class="theme-dark"`)
	assert.Contains(t, body, "Ana &lt;3")
	assert.Contains(t, body, "overdue by 4 days")

	rec = env.do(t, http.MethodGet, "/contacts/"+created.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/p/"+created.PublicSlug)

	rec = env.do(t, http.MethodPost, "/contacts/"+created.ID.String()+"/log", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Interaction logged")

	rec = env.do(t, http.MethodGet, "/p/"+created.PublicSlug, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ana &lt;3")
	assert.NotContains(t, rec.Body.String(), "Download calendar")

	rec = env.do(t, http.MethodGet, "/p/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCirclesAndGraph(t *testing.T) {
	env := setupServer(t)

	rec := env.do(t, http.MethodPost, "/api/circles", "", map[string]string{"name": "Climbing", "color": "#ffcc00"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/circles", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	circles := decode[[]models.Circle](t, env.do(t, http.MethodGet, "/api/circles", "", nil))
	require.Len(t, circles, 1)
	assert.Equal(t, "#ffcc00", circles[0].Color)

	rec = env.do(t, http.MethodGet, "/graph/circles", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Climbing")

	rec = env.do(t, http.MethodGet, "/graph/circles?format=png", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
