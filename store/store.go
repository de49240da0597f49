// ABOUTME: Storage abstraction shared by the server (SQLite) and local (badger) backends
// ABOUTME: Callers pick a backend per session through Selector and never branch on mode themselves

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/networkia/networkia/models"
)

var (
	// ErrNotFound is returned when a record does not exist in the store's scope.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInteraction is returned for interaction types outside the known set.
	ErrInvalidInteraction = errors.New("invalid interaction type")

	// ErrSlugTaken is returned when a new contact's public slug is already in use.
	ErrSlugTaken = errors.New("public slug already taken")
)

// Filter narrows FindContacts. A zero Limit returns every match.
type Filter struct {
	Query  string // case-insensitive substring of name or email
	Circle string // case-insensitive circle name
	Limit  int
}

// Store persists one owner's contacts and everything hanging off them.
type Store interface {
	// Scope names the owner (server mode) or local scope the store is bound to.
	Scope() string

	CreateContact(ctx context.Context, contact *models.Contact) error
	GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	FindContacts(ctx context.Context, filter Filter) ([]models.Contact, error)
	UpdateContact(ctx context.Context, contact *models.Contact) error
	UpdateNextMeetDate(ctx context.Context, id uuid.UUID, date string) error
	DeleteContact(ctx context.Context, id uuid.UUID) error

	// FindContactBySlug resolves a public profile. Private contacts are not found.
	FindContactBySlug(ctx context.Context, slug string) (*models.Contact, error)

	SaveCircle(ctx context.Context, circle *models.Circle) error
	ListCircles(ctx context.Context) ([]models.Circle, error)
	DeleteCircle(ctx context.Context, name string) error

	AddNote(ctx context.Context, note *models.Note) error
	ListNotes(ctx context.Context, contactID uuid.UUID) ([]models.Note, error)

	LogInteraction(ctx context.Context, interaction *models.InteractionLog) error
	ListInteractions(ctx context.Context, contactID uuid.UUID, limit int) ([]models.InteractionLog, error)
}
