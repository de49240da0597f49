// ABOUTME: Tests for upcoming lists, stale-date advancing and calendar export
// ABOUTME: Runs against an in-memory local store with a pinned clock

package agenda

import (
	"context"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/networkia/networkia/calexport"
	"github.com/networkia/networkia/localstore"
	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/nextmeet"
	"github.com/networkia/networkia/store"
)

var fixedNow = time.Date(2024, time.January, 24, 9, 0, 0, 0, time.UTC)

func newTestAgenda(t *testing.T) (*Agenda, store.Store) {
	t.Helper()
	kv, err := localstore.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	s := store.NewLocalStore(kv, "test")
	a := New(s,
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
		WithLogger(zap.NewNop()),
	)
	return a, s
}

func addContact(t *testing.T, s store.Store, c models.Contact) models.Contact {
	t.Helper()
	require.NoError(t, s.CreateContact(context.Background(), &c))
	return c
}

func TestToday(t *testing.T) {
	a, _ := newTestAgenda(t)
	assert.Equal(t, nextmeet.MustDate(2024, time.January, 24), a.Today())

	// Late evening UTC is already tomorrow further east
	tokyo := time.FixedZone("JST", 9*60*60)
	late := New(nil,
		WithClock(func() time.Time { return time.Date(2024, 1, 24, 20, 0, 0, 0, time.UTC) }),
		WithLocation(tokyo))
	assert.Equal(t, nextmeet.MustDate(2024, time.January, 25), late.Today())
}

func TestUpcoming(t *testing.T) {
	a, s := newTestAgenda(t)
	ctx := context.Background()

	weekly := addContact(t, s, models.Contact{Name: "Weekly", NextMeetDate: "2024-01-10", Cadence: nextmeet.CadenceWeekly})
	overdue := addContact(t, s, models.Contact{Name: "Overdue", NextMeetDate: "2024-01-20"})
	soon := addContact(t, s, models.Contact{Name: "Soon", NextMeetDate: "2024-01-26"})
	addContact(t, s, models.Contact{Name: "Far", NextMeetDate: "2024-06-01"})
	addContact(t, s, models.Contact{Name: "Never"})
	addContact(t, s, models.Contact{Name: "Garbage", NextMeetDate: "not a date", Cadence: nextmeet.CadenceMonthly})

	items, err := a.Upcoming(ctx, 14)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, overdue.ID, items[0].Contact.ID)
	assert.True(t, items[0].Overdue)
	assert.Equal(t, -4, items[0].DaysAway)

	assert.Equal(t, soon.ID, items[1].Contact.ID)
	assert.False(t, items[1].Overdue)
	assert.Equal(t, 2, items[1].DaysAway)

	assert.Equal(t, weekly.ID, items[2].Contact.ID)
	assert.Equal(t, nextmeet.MustDate(2024, time.January, 31), items[2].Date)
	assert.True(t, items[2].Advanced)
	assert.False(t, items[2].Overdue)

	// Display never writes back
	stored, err := s.GetContact(ctx, weekly.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", stored.NextMeetDate)
}

func TestUpcomingDefaultWindow(t *testing.T) {
	a, s := newTestAgenda(t)
	addContact(t, s, models.Contact{Name: "Edge", NextMeetDate: "2024-02-07"})
	addContact(t, s, models.Contact{Name: "Past edge", NextMeetDate: "2024-02-08"})

	items, err := a.Upcoming(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Edge", items[0].Contact.Name)
}

func TestUpcomingBirthdays(t *testing.T) {
	a, s := newTestAgenda(t)
	addContact(t, s, models.Contact{Name: "Feb", Birthday: "Feb 1"})
	addContact(t, s, models.Contact{Name: "Today", Birthday: "January 24"})
	addContact(t, s, models.Contact{Name: "Passed", Birthday: "January 2"})
	addContact(t, s, models.Contact{Name: "Nonsense", Birthday: "sometime in spring"})

	items, err := a.UpcomingBirthdays(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Today", items[0].Contact.Name)
	assert.Equal(t, 0, items[0].DaysAway)
	assert.Equal(t, "Feb", items[1].Contact.Name)
	assert.Equal(t, nextmeet.MustDate(2024, time.February, 1), items[1].Date)
}

func TestAdvanceStale(t *testing.T) {
	a, s := newTestAgenda(t)
	ctx := context.Background()

	weekly := addContact(t, s, models.Contact{Name: "Weekly", NextMeetDate: "2024-01-10", Cadence: nextmeet.CadenceWeekly})
	quarterly := addContact(t, s, models.Contact{Name: "Quarterly", NextMeetDate: "2023-10-31", Cadence: nextmeet.CadenceQuarterly})
	oneOff := addContact(t, s, models.Contact{Name: "One-off", NextMeetDate: "2024-01-01"})
	future := addContact(t, s, models.Contact{Name: "Future", NextMeetDate: "2024-02-01", Cadence: nextmeet.CadenceMonthly})

	n, err := a.AdvanceStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := map[uuid.UUID]string{
		weekly.ID:    "2024-01-31",
		quarterly.ID: "2024-01-31",
		oneOff.ID:    "2024-01-01",
		future.ID:    "2024-02-01",
	}
	for id, date := range want {
		got, err := s.GetContact(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, date, got.NextMeetDate, got.Name)
	}

	// Everything is current now
	n, err = a.AdvanceStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExport(t *testing.T) {
	a, s := newTestAgenda(t)
	ctx := context.Background()

	_, err := a.Export(ctx)
	assert.ErrorIs(t, err, calexport.ErrNothingToExport)

	ana := addContact(t, s, models.Contact{
		Name:         "Ana, Lima",
		NextMeetDate: "2024-01-10",
		Cadence:      nextmeet.CadenceWeekly,
		Birthday:     "August 18",
	})
	addContact(t, s, models.Contact{Name: "Nothing scheduled"})

	doc, err := a.Export(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, doc, "DTSTART;VALUE=DATE:20240131\r\n")
	assert.Contains(t, doc, "SUMMARY:Meet Ana\\, Lima\r\n")
	assert.Contains(t, doc, "DTSTART;VALUE=DATE:20240818\r\n")
	assert.Contains(t, doc, "RRULE:FREQ=YEARLY\r\n")
	assert.Contains(t, doc, "DTSTAMP:20240124T090000Z\r\n")

	cal, err := ics.ParseCalendar(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Len(t, cal.Events(), 2)

	single, err := a.ExportContact(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, single)

	_, err = a.ExportContact(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
