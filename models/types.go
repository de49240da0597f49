// ABOUTME: Data models for Networkia entities
// ABOUTME: Defines Contact, Circle, Note and InteractionLog structs
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/networkia/networkia/nextmeet"
)

type Contact struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	Company         string           `json:"company,omitempty"`
	Bio             string           `json:"bio,omitempty"`
	Birthday        string           `json:"birthday,omitempty"`       // free text, e.g. "August 18"
	NextMeetDate    string           `json:"next_meet_date,omitempty"` // YYYY-MM-DD
	Cadence         nextmeet.Cadence `json:"cadence,omitempty"`
	Circles         []string         `json:"circles,omitempty"`
	PublicSlug      string           `json:"public_slug,omitempty"`
	IsPublic        bool             `json:"is_public"`
	LastContactedAt *time.Time       `json:"last_contacted_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ErrInvalidContact wraps every validation failure.
var ErrInvalidContact = errors.New("invalid contact")

// Validate checks the fields a store must never persist in a broken state.
// A malformed NextMeetDate is allowed: it resolves to "no next meet".
func (c *Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidContact)
	}
	if !c.Cadence.Valid() {
		return fmt.Errorf("%w: unknown cadence %q", ErrInvalidContact, c.Cadence)
	}
	return nil
}

// InCircle reports whether the contact is tagged with the named circle.
func (c *Contact) InCircle(name string) bool {
	for _, circle := range c.Circles {
		if strings.EqualFold(circle, name) {
			return true
		}
	}
	return false
}

// NewPublicSlug returns a fresh, URL-safe share slug for a public profile page.
func NewPublicSlug() string {
	return strings.ToLower(ulid.Make().String())
}

type Circle struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color,omitempty"`
}

type Note struct {
	ID        uuid.UUID `json:"id"`
	ContactID uuid.UUID `json:"contact_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// InteractionType constants.
const (
	InteractionMeeting = "meeting"
	InteractionCall    = "call"
	InteractionEmail   = "email"
	InteractionMessage = "message"
	InteractionEvent   = "event"
)

// ValidInteractionType reports whether t is one of the interaction type constants.
func ValidInteractionType(t string) bool {
	switch t {
	case InteractionMeeting, InteractionCall, InteractionEmail, InteractionMessage, InteractionEvent:
		return true
	}
	return false
}

type InteractionLog struct {
	ID              uuid.UUID `json:"id"`
	ContactID       uuid.UUID `json:"contact_id"`
	InteractionType string    `json:"interaction_type"`
	Timestamp       time.Time `json:"timestamp"`
	Notes           string    `json:"notes,omitempty"`
}
