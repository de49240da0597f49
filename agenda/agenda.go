// ABOUTME: Application service combining the store with next-meet resolution
// ABOUTME: Builds upcoming lists, birthday lists and calendar exports for one store

package agenda

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/networkia/networkia/calexport"
	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/nextmeet"
	"github.com/networkia/networkia/store"
)

// DefaultWindow is the look-ahead used when a caller passes a non-positive day count.
const DefaultWindow = 14

type Agenda struct {
	store  store.Store
	now    func() time.Time
	loc    *time.Location
	logger *zap.Logger
}

type Option func(*Agenda)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Agenda) { a.now = now }
}

// WithLocation sets the zone that decides what "today" is. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(a *Agenda) { a.loc = loc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Agenda) { a.logger = logger }
}

func New(s store.Store, opts ...Option) *Agenda {
	a := &Agenda{
		store:  s,
		now:    time.Now,
		loc:    time.Local,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Store returns the backing store.
func (a *Agenda) Store() store.Store { return a.store }

// Today is the current calendar date in the agenda's zone.
func (a *Agenda) Today() nextmeet.Date {
	return a.DateOf(a.now())
}

// DateOf is the calendar date of t in the agenda's zone.
func (a *Agenda) DateOf(t time.Time) nextmeet.Date {
	return nextmeet.DateOf(t.In(a.loc))
}

// EffectiveNextMeet resolves a contact's stored next-meet date against today.
// The contact is not modified.
func (a *Agenda) EffectiveNextMeet(c models.Contact) (nextmeet.Date, bool) {
	return nextmeet.ResolveEffectiveNextMeet(c.NextMeetDate, c.Cadence, a.Today())
}

// Item is one contact on the upcoming list.
type Item struct {
	Contact  models.Contact
	Date     nextmeet.Date
	DaysAway int  // negative when overdue
	Overdue  bool // past date with no cadence to roll it forward
	Advanced bool // stored date was stale and has been rolled forward for display
}

// Upcoming lists contacts whose effective next meet falls within days from
// today, overdue ones included, ordered by date then name.
func (a *Agenda) Upcoming(ctx context.Context, days int) ([]Item, error) {
	if days <= 0 {
		days = DefaultWindow
	}

	contacts, err := a.store.FindContacts(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}

	today := a.Today()
	horizon := today.AddDays(days)

	var items []Item
	for _, c := range contacts {
		date, advanced := a.EffectiveNextMeet(c)
		if date.IsZero() || date.After(horizon) {
			continue
		}
		items = append(items, Item{
			Contact:  c,
			Date:     date,
			DaysAway: today.DaysUntil(date),
			Overdue:  date.Before(today),
			Advanced: advanced,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if c := items[i].Date.Compare(items[j].Date); c != 0 {
			return c < 0
		}
		return strings.ToLower(items[i].Contact.Name) < strings.ToLower(items[j].Contact.Name)
	})
	return items, nil
}

// BirthdayItem is one contact on the upcoming birthdays list.
type BirthdayItem struct {
	Contact  models.Contact
	Date     nextmeet.Date
	DaysAway int
}

// UpcomingBirthdays lists birthdays falling within days from today, soonest first.
// Unrecognised birthday text is ignored.
func (a *Agenda) UpcomingBirthdays(ctx context.Context, days int) ([]BirthdayItem, error) {
	if days <= 0 {
		days = DefaultWindow
	}

	contacts, err := a.store.FindContacts(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}

	today := a.Today()
	var items []BirthdayItem
	for _, c := range contacts {
		b, ok := calexport.ExtractBirthday(c.Birthday)
		if !ok {
			continue
		}
		next, ok := b.NextOccurrence(today)
		if !ok {
			continue
		}
		away := today.DaysUntil(next)
		if away > days {
			continue
		}
		items = append(items, BirthdayItem{Contact: c, Date: next, DaysAway: away})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })
	return items, nil
}

// AdvanceStale persists the effective date for every contact whose stored
// recurring date has gone stale. It returns how many contacts were updated.
func (a *Agenda) AdvanceStale(ctx context.Context) (int, error) {
	contacts, err := a.store.FindContacts(ctx, store.Filter{})
	if err != nil {
		return 0, err
	}

	advanced := 0
	for _, c := range contacts {
		if err := ctx.Err(); err != nil {
			return advanced, err
		}
		date, moved := a.EffectiveNextMeet(c)
		if !moved {
			continue
		}
		if err := a.store.UpdateNextMeetDate(ctx, c.ID, date.String()); err != nil {
			return advanced, fmt.Errorf("failed to advance next meet for %s: %w", c.ID, err)
		}
		a.logger.Debug("advanced next meet",
			zap.String("scope", a.store.Scope()),
			zap.String("contact", c.ID.String()),
			zap.String("from", c.NextMeetDate),
			zap.String("to", date.String()),
		)
		advanced++
	}
	return advanced, nil
}

// Export builds a calendar document with every contact's next meet and
// birthday. It returns calexport.ErrNothingToExport when no contact qualifies.
func (a *Agenda) Export(ctx context.Context) (string, error) {
	contacts, err := a.store.FindContacts(ctx, store.Filter{})
	if err != nil {
		return "", err
	}
	return a.export(contacts)
}

// ExportContact builds a calendar document for a single contact.
func (a *Agenda) ExportContact(ctx context.Context, id uuid.UUID) (string, error) {
	contact, err := a.store.GetContact(ctx, id)
	if err != nil {
		return "", err
	}
	return a.export([]models.Contact{*contact})
}

func (a *Agenda) export(contacts []models.Contact) (string, error) {
	today := a.Today()
	x := calexport.NewExporter()
	for _, c := range contacts {
		date, _ := a.EffectiveNextMeet(c)
		x.AddNextMeet(c.ID.String(), c.Name, date)
		x.AddBirthday(c.ID.String(), c.Name, c.Birthday, today)
	}

	doc, err := x.Document(a.now())
	if errors.Is(err, calexport.ErrNothingToExport) {
		a.logger.Debug("calendar export skipped", zap.Int("contacts", len(contacts)))
	}
	return doc, err
}
