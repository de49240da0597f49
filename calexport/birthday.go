// ABOUTME: Free-text birthday parsing ("August 18", "Sept 5")
// ABOUTME: Finds yearly birthday occurrences with RRULE expansion
package calexport

import (
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/networkia/networkia/nextmeet"
)

// Birthday is a month and day without a year. Month is 1-based (time.August == 8).
type Birthday struct {
	Month time.Month
	Day   int
}

// MonthIndex returns the 0-based month (January == 0).
func (b Birthday) MonthIndex() int {
	return int(b.Month) - 1
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// ExtractBirthday parses "Month Day" text. The day is not checked against the
// month's length, so "February 30" is accepted.
func ExtractBirthday(field string) (Birthday, bool) {
	parts := strings.Fields(field)
	if len(parts) != 2 {
		return Birthday{}, false
	}

	month, ok := monthNames[strings.TrimSuffix(strings.ToLower(parts[0]), ".")]
	if !ok {
		return Birthday{}, false
	}

	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 {
		return Birthday{}, false
	}

	return Birthday{Month: month, Day: day}, true
}

// NextOccurrence returns the first date on or after from that the birthday falls
// on. February 29 only occurs in leap years; a day that never exists (February 30)
// returns false.
func (b Birthday) NextOccurrence(from nextmeet.Date) (nextmeet.Date, bool) {
	if b.Day > 31 {
		return nextmeet.Date{}, false
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.YEARLY,
		Bymonth:    []int{int(b.Month)},
		Bymonthday: []int{b.Day},
		Dtstart:    time.Date(from.Year, time.January, 1, 0, 0, 0, 0, time.UTC),
		// Eight years covers the leap-year gap across a skipped century year.
		Until: time.Date(from.Year+8, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		return nextmeet.Date{}, false
	}

	next := r.After(from.In(time.UTC), true)
	if next.IsZero() {
		return nextmeet.Date{}, false
	}
	return nextmeet.DateOf(next), true
}
