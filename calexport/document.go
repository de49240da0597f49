// ABOUTME: Calendar exchange document encoder for next-meet and birthday events
// ABOUTME: Writes CRLF-framed VCALENDAR/VEVENT blocks with all-day start dates
package calexport

import (
	"bytes"
	"io"
	"time"

	"github.com/networkia/networkia/nextmeet"
)

const (
	// MIMEType is the content type of an exported document.
	MIMEType = "text/calendar"

	// ProductID identifies the producer in every exported document.
	ProductID = "-//Networkia//Networkia//EN"

	// RRuleYearly is the recurrence rule carried by birthday events.
	RRuleYearly = "FREQ=YEARLY"

	crlf           = "\r\n"
	beginVCalendar = "BEGIN:VCALENDAR"
	endVCalendar   = "END:VCALENDAR"
	beginVEvent    = "BEGIN:VEVENT"
	endVEvent      = "END:VEVENT"

	stampLayout = "20060102T150405Z"
)

// Event is a single whole-day calendar entry. An empty RRule means the event does
// not recur.
type Event struct {
	UID     string
	Summary string
	Date    nextmeet.Date
	RRule   string
}

// BuildCalendarDocument encodes events into a calendar document stamped with the
// current time. Callers short-circuit empty event sets before calling it.
func BuildCalendarDocument(events []Event) string {
	return BuildCalendarDocumentAt(events, time.Now())
}

// BuildCalendarDocumentAt encodes events with a fixed generation stamp.
func BuildCalendarDocumentAt(events []Event, stamp time.Time) string {
	var buf bytes.Buffer
	// bytes.Buffer writes do not fail.
	_ = WriteCalendarDocument(&buf, events, stamp)
	return buf.String()
}

// WriteCalendarDocument writes the document to w. The stamp is formatted once and
// shared by every event block.
func WriteCalendarDocument(w io.Writer, events []Event, stamp time.Time) error {
	dtstamp := stamp.UTC().Format(stampLayout)

	lines := []string{
		beginVCalendar,
		"VERSION:2.0",
		"PRODID:" + ProductID,
		"CALSCALE:GREGORIAN",
	}
	if err := writeLines(w, lines); err != nil {
		return err
	}

	for _, ev := range events {
		if err := writeEvent(w, ev, dtstamp); err != nil {
			return err
		}
	}

	return writeLines(w, []string{endVCalendar})
}

func writeEvent(w io.Writer, ev Event, dtstamp string) error {
	lines := []string{
		beginVEvent,
		"UID:" + propertyText(ev.UID),
		"DTSTAMP:" + dtstamp,
		"DTSTART;VALUE=DATE:" + ev.Date.Compact(),
		"SUMMARY:" + propertyText(ev.Summary),
	}
	if ev.RRule != "" {
		lines = append(lines, "RRULE:"+ev.RRule)
	}
	lines = append(lines, endVEvent)
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line+crlf); err != nil {
			return err
		}
	}
	return nil
}

// FileName returns the download name for an export called base.
func FileName(base string) string {
	if base == "" {
		base = "networkia"
	}
	return base + ".ics"
}
