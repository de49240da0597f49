// ABOUTME: Local-mode Store persisted as JSON values in the embedded badger KV
// ABOUTME: Keys are namespaced "scope:kind:id" so several demo scopes can share one KV

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/networkia/networkia/localstore"
	"github.com/networkia/networkia/models"
)

const (
	kindContact     = "contact"
	kindCircle      = "circle"
	kindNote        = "note"
	kindInteraction = "interaction"
)

var _ Store = (*LocalStore)(nil)

type LocalStore struct {
	kv    *localstore.KV
	scope string
	mu    sync.Mutex // serializes read-modify-write sequences
}

// NewLocalStore binds a store to one scope of kv. Colons are not allowed in
// scope names and are replaced.
func NewLocalStore(kv *localstore.KV, scope string) *LocalStore {
	scope = strings.ReplaceAll(strings.TrimSpace(scope), ":", "_")
	if scope == "" {
		scope = DefaultLocalScope
	}
	return &LocalStore{kv: kv, scope: scope}
}

func (s *LocalStore) Scope() string { return s.scope }

func (s *LocalStore) key(kind string, parts ...string) []byte {
	return []byte(s.scope + ":" + kind + ":" + strings.Join(parts, ":"))
}

func (s *LocalStore) prefix(kind string, parts ...string) []byte {
	k := s.scope + ":" + kind + ":"
	for _, p := range parts {
		k += p + ":"
	}
	return []byte(k)
}

func (s *LocalStore) put(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.kv.Set(key, data)
}

func (s *LocalStore) load(key []byte, v interface{}) error {
	data, err := s.kv.Get(key)
	if errors.Is(err, localstore.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) CreateContact(ctx context.Context, contact *models.Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if contact.PublicSlug != "" {
		all, err := s.allContacts()
		if err != nil {
			return err
		}
		for i := range all {
			if all[i].PublicSlug == contact.PublicSlug {
				return ErrSlugTaken
			}
		}
	}

	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	now := time.Now()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}
	contact.UpdatedAt = now
	contact.Circles = normalizeCircles(contact.Circles)

	return s.put(s.key(kindContact, contact.ID.String()), contact)
}

func (s *LocalStore) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	if err := s.load(s.key(kindContact, id.String()), &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *LocalStore) allContacts() ([]models.Contact, error) {
	var contacts []models.Contact
	err := s.kv.ScanPrefix(s.prefix(kindContact), func(key, value []byte) error {
		var c models.Contact
		if err := json.Unmarshal(value, &c); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		contacts = append(contacts, c)
		return nil
	})
	return contacts, err
}

func (s *LocalStore) FindContacts(ctx context.Context, filter Filter) ([]models.Contact, error) {
	all, err := s.allContacts()
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts: %w", err)
	}

	query := strings.ToLower(filter.Query)
	var matched []models.Contact
	for _, c := range all {
		if query != "" && !strings.Contains(strings.ToLower(c.Name), query) &&
			!strings.Contains(strings.ToLower(c.Email), query) {
			continue
		}
		if filter.Circle != "" && !c.InCircle(filter.Circle) {
			continue
		}
		matched = append(matched, c)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *LocalStore) UpdateContact(ctx context.Context, contact *models.Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.GetContact(ctx, contact.ID)
	if err != nil {
		return err
	}
	contact.CreatedAt = existing.CreatedAt
	contact.UpdatedAt = time.Now()
	contact.Circles = normalizeCircles(contact.Circles)

	return s.put(s.key(kindContact, contact.ID.String()), contact)
}

func (s *LocalStore) UpdateNextMeetDate(ctx context.Context, id uuid.UUID, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, err := s.GetContact(ctx, id)
	if err != nil {
		return err
	}
	contact.NextMeetDate = date
	contact.UpdatedAt = time.Now()
	return s.put(s.key(kindContact, id.String()), contact)
}

func (s *LocalStore) DeleteContact(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.GetContact(ctx, id); err != nil {
		return err
	}
	if err := s.kv.Delete(s.key(kindContact, id.String())); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	for _, kind := range []string{kindNote, kindInteraction} {
		if err := s.kv.DeletePrefix(s.prefix(kind, id.String())); err != nil {
			return fmt.Errorf("failed to delete %s records: %w", kind, err)
		}
	}
	return nil
}

func (s *LocalStore) FindContactBySlug(ctx context.Context, slug string) (*models.Contact, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	all, err := s.allContacts()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].IsPublic && all[i].PublicSlug == slug {
			return &all[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *LocalStore) SaveCircle(ctx context.Context, circle *models.Circle) error {
	if circle.Name == "" {
		return errors.New("circle name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(kindCircle, circle.Name)
	var existing models.Circle
	switch err := s.load(key, &existing); {
	case err == nil:
		circle.ID = existing.ID
	case errors.Is(err, ErrNotFound):
		if circle.ID == uuid.Nil {
			circle.ID = uuid.New()
		}
	default:
		return err
	}
	return s.put(key, circle)
}

func (s *LocalStore) ListCircles(ctx context.Context) ([]models.Circle, error) {
	var circles []models.Circle
	err := s.kv.ScanPrefix(s.prefix(kindCircle), func(key, value []byte) error {
		var c models.Circle
		if err := json.Unmarshal(value, &c); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		circles = append(circles, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list circles: %w", err)
	}
	sort.SliceStable(circles, func(i, j int) bool {
		return strings.ToLower(circles[i].Name) < strings.ToLower(circles[j].Name)
	})
	return circles, nil
}

// DeleteCircle removes a circle and untags the scope's contacts.
func (s *LocalStore) DeleteCircle(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(kindCircle, name)
	if _, err := s.kv.Get(key); errors.Is(err, localstore.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	if err := s.kv.Delete(key); err != nil {
		return fmt.Errorf("failed to delete circle: %w", err)
	}

	contacts, err := s.allContacts()
	if err != nil {
		return err
	}
	for i := range contacts {
		c := &contacts[i]
		kept := c.Circles[:0]
		for _, circle := range c.Circles {
			if circle != name {
				kept = append(kept, circle)
			}
		}
		if len(kept) == len(c.Circles) {
			continue
		}
		c.Circles = kept
		if err := s.put(s.key(kindContact, c.ID.String()), c); err != nil {
			return fmt.Errorf("failed to untag contact: %w", err)
		}
	}
	return nil
}

func (s *LocalStore) AddNote(ctx context.Context, note *models.Note) error {
	if _, err := s.GetContact(ctx, note.ContactID); err != nil {
		return err
	}
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	return s.put(s.key(kindNote, note.ContactID.String(), note.ID.String()), note)
}

func (s *LocalStore) ListNotes(ctx context.Context, contactID uuid.UUID) ([]models.Note, error) {
	var notes []models.Note
	err := s.kv.ScanPrefix(s.prefix(kindNote, contactID.String()), func(key, value []byte) error {
		var n models.Note
		if err := json.Unmarshal(value, &n); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		notes = append(notes, n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })
	return notes, nil
}

// LogInteraction records an interaction and moves the contact's
// LastContactedAt forward, never back.
func (s *LocalStore) LogInteraction(ctx context.Context, interaction *models.InteractionLog) error {
	if !models.ValidInteractionType(interaction.InteractionType) {
		return fmt.Errorf("%w: %q", ErrInvalidInteraction, interaction.InteractionType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contact, err := s.GetContact(ctx, interaction.ContactID)
	if err != nil {
		return err
	}
	if interaction.ID == uuid.Nil {
		interaction.ID = uuid.New()
	}
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now()
	}

	if err := s.put(s.key(kindInteraction, interaction.ContactID.String(), interaction.ID.String()), interaction); err != nil {
		return err
	}

	if contact.LastContactedAt == nil || contact.LastContactedAt.Before(interaction.Timestamp) {
		ts := interaction.Timestamp
		contact.LastContactedAt = &ts
		return s.put(s.key(kindContact, contact.ID.String()), contact)
	}
	return nil
}

func (s *LocalStore) ListInteractions(ctx context.Context, contactID uuid.UUID, limit int) ([]models.InteractionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var history []models.InteractionLog
	err := s.kv.ScanPrefix(s.prefix(kindInteraction, contactID.String()), func(key, value []byte) error {
		var i models.InteractionLog
		if err := json.Unmarshal(value, &i); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		history = append(history, i)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}

	sort.SliceStable(history, func(i, j int) bool { return history[i].Timestamp.After(history[j].Timestamp) })
	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

// Clear removes every record in the scope.
func (s *LocalStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.DeletePrefix([]byte(s.scope + ":")); err != nil {
		return fmt.Errorf("failed to clear scope %s: %w", s.scope, err)
	}
	return nil
}

// normalizeCircles trims, drops empties and duplicates, and sorts, matching
// what the SQL backend hands back.
func normalizeCircles(circles []string) []string {
	seen := make(map[string]bool, len(circles))
	var out []string
	for _, name := range circles {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
