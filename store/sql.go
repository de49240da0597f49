// ABOUTME: Server-mode Store backed by the SQLite db package
// ABOUTME: Every query is scoped to the authenticated owner

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/networkia/networkia/db"
	"github.com/networkia/networkia/models"
)

var _ Store = (*SQLStore)(nil)

type SQLStore struct {
	db    *sql.DB
	owner string
}

func NewSQLStore(database *sql.DB, owner string) *SQLStore {
	return &SQLStore{db: database, owner: owner}
}

func (s *SQLStore) Scope() string { return s.owner }

func (s *SQLStore) CreateContact(ctx context.Context, contact *models.Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}
	// Slugs are unique across every owner
	taken, err := db.PublicSlugTaken(s.db, contact.PublicSlug)
	if err != nil {
		return fmt.Errorf("failed to check public slug: %w", err)
	}
	if taken {
		return ErrSlugTaken
	}
	if err := db.CreateContact(s.db, s.owner, contact); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (s *SQLStore) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	contact, err := db.GetContact(s.db, s.owner, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	if contact == nil {
		return nil, ErrNotFound
	}
	return contact, nil
}

func (s *SQLStore) FindContacts(ctx context.Context, filter Filter) ([]models.Contact, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = math.MaxInt32
	}
	contacts, err := db.FindContacts(s.db, s.owner, filter.Query, filter.Circle, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts: %w", err)
	}
	return contacts, nil
}

func (s *SQLStore) UpdateContact(ctx context.Context, contact *models.Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}
	return notFound(db.UpdateContact(s.db, s.owner, contact), "update contact")
}

func (s *SQLStore) UpdateNextMeetDate(ctx context.Context, id uuid.UUID, date string) error {
	return notFound(db.UpdateNextMeetDate(s.db, s.owner, id, date), "update next meet date")
}

func (s *SQLStore) DeleteContact(ctx context.Context, id uuid.UUID) error {
	return notFound(db.DeleteContact(s.db, s.owner, id), "delete contact")
}

func (s *SQLStore) FindContactBySlug(ctx context.Context, slug string) (*models.Contact, error) {
	contact, err := db.GetPublicContact(s.db, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to find public contact: %w", err)
	}
	if contact == nil {
		return nil, ErrNotFound
	}
	return contact, nil
}

func (s *SQLStore) SaveCircle(ctx context.Context, circle *models.Circle) error {
	if circle.Name == "" {
		return errors.New("circle name is required")
	}
	if err := db.SaveCircle(s.db, s.owner, circle); err != nil {
		return fmt.Errorf("failed to save circle: %w", err)
	}
	return nil
}

func (s *SQLStore) ListCircles(ctx context.Context) ([]models.Circle, error) {
	circles, err := db.ListCircles(s.db, s.owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list circles: %w", err)
	}
	return circles, nil
}

func (s *SQLStore) DeleteCircle(ctx context.Context, name string) error {
	return notFound(db.DeleteCircle(s.db, s.owner, name), "delete circle")
}

func (s *SQLStore) AddNote(ctx context.Context, note *models.Note) error {
	return notFound(db.AddNote(s.db, s.owner, note), "add note")
}

func (s *SQLStore) ListNotes(ctx context.Context, contactID uuid.UUID) ([]models.Note, error) {
	notes, err := db.GetNotes(s.db, s.owner, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (s *SQLStore) LogInteraction(ctx context.Context, interaction *models.InteractionLog) error {
	if !models.ValidInteractionType(interaction.InteractionType) {
		return fmt.Errorf("%w: %q", ErrInvalidInteraction, interaction.InteractionType)
	}
	return notFound(db.LogInteraction(s.db, s.owner, interaction), "log interaction")
}

func (s *SQLStore) ListInteractions(ctx context.Context, contactID uuid.UUID, limit int) ([]models.InteractionLog, error) {
	history, err := db.GetInteractionHistory(s.db, s.owner, contactID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	return history, nil
}

// notFound maps the db layer's sql.ErrNoRows onto ErrNotFound and wraps anything else.
func notFound(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}
