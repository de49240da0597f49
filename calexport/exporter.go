// ABOUTME: Collects deduplicated next-meet and birthday events for export
// ABOUTME: Short-circuits empty exports with ErrNothingToExport
package calexport

import (
	"errors"
	"fmt"
	"time"

	"github.com/networkia/networkia/nextmeet"
)

// ErrNothingToExport means no contact contributed an event. It is a user-facing
// no-op, not a failure.
var ErrNothingToExport = errors.New("nothing to export")

// Exporter accumulates events in insertion order, dropping duplicates. It is not
// safe for concurrent use; build one per export.
type Exporter struct {
	events []Event
	seen   map[string]struct{}
}

func NewExporter() *Exporter {
	return &Exporter{seen: make(map[string]struct{})}
}

// AddNextMeet adds a one-off event for a contact's next meet. It reports whether
// an event was added; zero dates and repeats of (contactID, date) are skipped.
func (x *Exporter) AddNextMeet(contactID, name string, date nextmeet.Date) bool {
	if date.IsZero() {
		return false
	}
	key := fmt.Sprintf("nextmeet|%s|%s", contactID, date)
	if !x.mark(key) {
		return false
	}

	x.events = append(x.events, Event{
		UID:     fmt.Sprintf("nextmeet-%s-%s@networkia", contactID, date.Compact()),
		Summary: "Meet " + name,
		Date:    date,
	})
	return true
}

// AddBirthday adds a yearly event for a free-text birthday field. Unrecognised text,
// days that never occur and repeats of (contactID, month, day) are skipped.
func (x *Exporter) AddBirthday(contactID, name, field string, today nextmeet.Date) bool {
	b, ok := ExtractBirthday(field)
	if !ok {
		return false
	}

	start, ok := b.NextOccurrence(nextmeet.Date{Year: today.Year, Month: time.January, Day: 1})
	if !ok {
		return false
	}

	key := fmt.Sprintf("birthday|%s|%d|%d", contactID, b.Month, b.Day)
	if !x.mark(key) {
		return false
	}

	x.events = append(x.events, Event{
		UID:     fmt.Sprintf("birthday-%s-%02d%02d@networkia", contactID, int(b.Month), b.Day),
		Summary: name + "'s birthday",
		Date:    start,
		RRule:   RRuleYearly,
	})
	return true
}

func (x *Exporter) mark(key string) bool {
	if _, dup := x.seen[key]; dup {
		return false
	}
	x.seen[key] = struct{}{}
	return true
}

// Len returns the number of collected events.
func (x *Exporter) Len() int {
	return len(x.events)
}

// Events returns a copy of the collected events.
func (x *Exporter) Events() []Event {
	out := make([]Event, len(x.events))
	copy(out, x.events)
	return out
}

// Document encodes the collected events, or returns ErrNothingToExport.
func (x *Exporter) Document(stamp time.Time) (string, error) {
	if len(x.events) == 0 {
		return "", ErrNothingToExport
	}
	return BuildCalendarDocumentAt(x.events, stamp), nil
}
