// ABOUTME: Behavioral tests run against both the SQL and local backends
// ABOUTME: Both stores must be interchangeable behind the Store interface

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkia/networkia/db"
	"github.com/networkia/networkia/localstore"
	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/nextmeet"
)

func newSQLTestStore(t *testing.T, owner string) *SQLStore {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewSQLStore(database, owner)
}

func newTestKV(t *testing.T) *localstore.KV {
	t.Helper()
	kv, err := localstore.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

var backends = map[string]func(t *testing.T) Store{
	"sql": func(t *testing.T) Store {
		return newSQLTestStore(t, "alice")
	},
	"local": func(t *testing.T) Store {
		return NewLocalStore(newTestKV(t), "alice")
	},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, newStore(t))
		})
	}
}

func TestContactLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		contact := &models.Contact{
			Name:         "Ana Lima",
			Email:        "ana@example.com",
			NextMeetDate: "2024-01-10",
			Cadence:      nextmeet.CadenceWeekly,
			Circles:      []string{"Friends", " Climbing ", ""},
		}
		require.NoError(t, s.CreateContact(ctx, contact))
		require.NotEqual(t, uuid.Nil, contact.ID)

		got, err := s.GetContact(ctx, contact.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana Lima", got.Name)
		assert.Equal(t, []string{"Climbing", "Friends"}, got.Circles)

		got.Cadence = nextmeet.CadenceMonthly
		got.Circles = []string{"Work"}
		require.NoError(t, s.UpdateContact(ctx, got))

		require.NoError(t, s.UpdateNextMeetDate(ctx, contact.ID, "2024-02-10"))
		got, err = s.GetContact(ctx, contact.ID)
		require.NoError(t, err)
		assert.Equal(t, "2024-02-10", got.NextMeetDate)
		assert.Equal(t, nextmeet.CadenceMonthly, got.Cadence)
		assert.Equal(t, []string{"Work"}, got.Circles)

		require.NoError(t, s.DeleteContact(ctx, contact.ID))
		_, err = s.GetContact(ctx, contact.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeleteContact(ctx, contact.ID), ErrNotFound)
		assert.ErrorIs(t, s.UpdateNextMeetDate(ctx, contact.ID, "2024-03-01"), ErrNotFound)
	})
}

func TestContactValidation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		err := s.CreateContact(ctx, &models.Contact{Name: "  "})
		assert.ErrorIs(t, err, models.ErrInvalidContact)

		err = s.CreateContact(ctx, &models.Contact{Name: "Ana", Cadence: "daily"})
		assert.ErrorIs(t, err, models.ErrInvalidContact)

		err = s.UpdateContact(ctx, &models.Contact{ID: uuid.New(), Name: "Ghost"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFindContactsFilters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		for _, c := range []*models.Contact{
			{Name: "zoe", Email: "zoe@work.com", Circles: []string{"Work"}},
			{Name: "Ana", Email: "ana@home.com", Circles: []string{"Friends"}},
			{Name: "Ben", Email: "ben@work.com", Circles: []string{"Work"}},
		} {
			require.NoError(t, s.CreateContact(ctx, c))
		}

		all, err := s.FindContacts(ctx, Filter{})
		require.NoError(t, err)
		names := make([]string, len(all))
		for i, c := range all {
			names[i] = c.Name
		}
		if diff := cmp.Diff([]string{"Ana", "Ben", "zoe"}, names); diff != "" {
			t.Errorf("FindContacts order mismatch (-want +got):\n%s", diff)
		}

		work, err := s.FindContacts(ctx, Filter{Circle: "work"})
		require.NoError(t, err)
		assert.Len(t, work, 2)

		byEmail, err := s.FindContacts(ctx, Filter{Query: "HOME"})
		require.NoError(t, err)
		require.Len(t, byEmail, 1)
		assert.Equal(t, "Ana", byEmail[0].Name)

		limited, err := s.FindContacts(ctx, Filter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})
}

func TestPublicProfiles(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		public := &models.Contact{Name: "Shared", PublicSlug: models.NewPublicSlug(), IsPublic: true}
		private := &models.Contact{Name: "Private", PublicSlug: models.NewPublicSlug()}
		require.NoError(t, s.CreateContact(ctx, public))
		require.NoError(t, s.CreateContact(ctx, private))

		got, err := s.FindContactBySlug(ctx, public.PublicSlug)
		require.NoError(t, err)
		assert.Equal(t, public.ID, got.ID)

		_, err = s.FindContactBySlug(ctx, private.PublicSlug)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.FindContactBySlug(ctx, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCircleOperations(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		friends := &models.Circle{Name: "Friends", Color: "#f00"}
		require.NoError(t, s.SaveCircle(ctx, friends))
		again := &models.Circle{Name: "Friends", Color: "#0f0"}
		require.NoError(t, s.SaveCircle(ctx, again))
		assert.Equal(t, friends.ID, again.ID)

		require.NoError(t, s.SaveCircle(ctx, &models.Circle{Name: "Work"}))
		assert.Error(t, s.SaveCircle(ctx, &models.Circle{}))

		circles, err := s.ListCircles(ctx)
		require.NoError(t, err)
		require.Len(t, circles, 2)
		assert.Equal(t, "Friends", circles[0].Name)
		assert.Equal(t, "#0f0", circles[0].Color)

		contact := &models.Contact{Name: "Ana", Circles: []string{"Friends", "Work"}}
		require.NoError(t, s.CreateContact(ctx, contact))

		require.NoError(t, s.DeleteCircle(ctx, "Friends"))
		got, err := s.GetContact(ctx, contact.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Work"}, got.Circles)

		assert.ErrorIs(t, s.DeleteCircle(ctx, "Friends"), ErrNotFound)
	})
}

func TestNotesAndInteractionHistory(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		contact := &models.Contact{Name: "Ana"}
		require.NoError(t, s.CreateContact(ctx, contact))

		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, s.AddNote(ctx, &models.Note{ContactID: contact.ID, Content: "old", CreatedAt: base}))
		require.NoError(t, s.AddNote(ctx, &models.Note{ContactID: contact.ID, Content: "new", CreatedAt: base.Add(time.Hour)}))

		notes, err := s.ListNotes(ctx, contact.ID)
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, "new", notes[0].Content)

		err = s.AddNote(ctx, &models.Note{ContactID: uuid.New(), Content: "orphan"})
		assert.ErrorIs(t, err, ErrNotFound)

		latest := base.Add(24 * time.Hour)
		require.NoError(t, s.LogInteraction(ctx, &models.InteractionLog{
			ContactID: contact.ID, InteractionType: models.InteractionCall, Timestamp: latest,
		}))
		require.NoError(t, s.LogInteraction(ctx, &models.InteractionLog{
			ContactID: contact.ID, InteractionType: models.InteractionMeeting, Timestamp: base,
		}))

		err = s.LogInteraction(ctx, &models.InteractionLog{ContactID: contact.ID, InteractionType: "fax"})
		assert.ErrorIs(t, err, ErrInvalidInteraction)

		history, err := s.ListInteractions(ctx, contact.ID, 0)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, models.InteractionCall, history[0].InteractionType)

		one, err := s.ListInteractions(ctx, contact.ID, 1)
		require.NoError(t, err)
		assert.Len(t, one, 1)

		got, err := s.GetContact(ctx, contact.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastContactedAt)
		assert.True(t, got.LastContactedAt.Equal(latest))

		require.NoError(t, s.DeleteContact(ctx, contact.ID))
		notes, err = s.ListNotes(ctx, contact.ID)
		require.NoError(t, err)
		assert.Empty(t, notes)
	})
}

func TestLocalScopesAreIsolated(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	a := NewLocalStore(kv, "a")
	b := NewLocalStore(kv, "b")

	contact := &models.Contact{Name: "Only in A"}
	require.NoError(t, a.CreateContact(ctx, contact))

	_, err := b.GetContact(ctx, contact.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	listed, err := b.FindContacts(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.Equal(t, DefaultLocalScope, NewLocalStore(kv, "").Scope())
	assert.Equal(t, "x_y", NewLocalStore(kv, "x:y").Scope())
}

func TestSQLOwnersAreIsolated(t *testing.T) {
	database, err := db.OpenMemory()
	require.NoError(t, err)
	defer func() { _ = database.Close() }()
	ctx := context.Background()

	alice := NewSQLStore(database, "alice")
	bob := NewSQLStore(database, "bob")

	contact := &models.Contact{Name: "Alice's friend"}
	require.NoError(t, alice.CreateContact(ctx, contact))

	_, err = bob.GetContact(ctx, contact.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, bob.DeleteContact(ctx, contact.ID), ErrNotFound)
}
