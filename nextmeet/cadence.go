// ABOUTME: Recurrence cadence for next-meet reminders
// ABOUTME: Defines weekly, biweekly, monthly and quarterly periods
package nextmeet

import (
	"errors"
	"fmt"
	"strings"
)

// Cadence is how often a next-meet date recurs. CadenceNone is a one-off date.
type Cadence string

const (
	CadenceNone      Cadence = ""
	CadenceWeekly    Cadence = "weekly"
	CadenceBiweekly  Cadence = "biweekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
)

// ErrUnknownCadence is returned by ParseCadence for values outside the enum.
var ErrUnknownCadence = errors.New("unknown cadence")

// Cadences lists the recurring cadences in display order.
var Cadences = []Cadence{CadenceWeekly, CadenceBiweekly, CadenceMonthly, CadenceQuarterly}

// ParseCadence maps user input to a Cadence. Empty input and "none" mean CadenceNone.
func ParseCadence(s string) (Cadence, error) {
	switch c := Cadence(strings.ToLower(strings.TrimSpace(s))); c {
	case "", "none":
		return CadenceNone, nil
	case CadenceWeekly, CadenceBiweekly, CadenceMonthly, CadenceQuarterly:
		return c, nil
	default:
		return CadenceNone, fmt.Errorf("%w: %q", ErrUnknownCadence, s)
	}
}

// Valid reports whether c is CadenceNone or one of the recurring cadences.
func (c Cadence) Valid() bool {
	switch c {
	case CadenceNone, CadenceWeekly, CadenceBiweekly, CadenceMonthly, CadenceQuarterly:
		return true
	}
	return false
}

// Recurring reports whether c advances the date.
func (c Cadence) Recurring() bool {
	return c != CadenceNone && c.Valid()
}

// Label is the human-readable name shown next to a date.
func (c Cadence) Label() string {
	switch c {
	case CadenceWeekly:
		return "Every week"
	case CadenceBiweekly:
		return "Every 2 weeks"
	case CadenceMonthly:
		return "Every month"
	case CadenceQuarterly:
		return "Every 3 months"
	default:
		return "One-time"
	}
}

// periodDays is the step for day-based cadences, 0 otherwise.
func (c Cadence) periodDays() int {
	switch c {
	case CadenceWeekly:
		return 7
	case CadenceBiweekly:
		return 14
	default:
		return 0
	}
}

// periodMonths is the step for month-based cadences, 0 otherwise.
func (c Cadence) periodMonths() int {
	switch c {
	case CadenceMonthly:
		return 1
	case CadenceQuarterly:
		return 3
	default:
		return 0
	}
}
