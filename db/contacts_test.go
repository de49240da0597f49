// ABOUTME: Tests for contact, circle, note and interaction database operations
// ABOUTME: Every test runs against a fresh in-memory SQLite database
package db

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/nextmeet"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestCreateAndGetContact(t *testing.T) {
	database := setupTestDB(t)

	contact := &models.Contact{
		Name:         "Ana Lima",
		Email:        "ana@example.com",
		Birthday:     "August 18",
		NextMeetDate: "2024-01-10",
		Cadence:      nextmeet.CadenceWeekly,
		Circles:      []string{"Friends", "Climbing"},
	}
	require.NoError(t, CreateContact(database, "alice", contact))
	assert.NotEqual(t, uuid.Nil, contact.ID)

	got, err := GetContact(database, "alice", contact.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ana Lima", got.Name)
	assert.Equal(t, "2024-01-10", got.NextMeetDate)
	assert.Equal(t, nextmeet.CadenceWeekly, got.Cadence)
	assert.Equal(t, []string{"Climbing", "Friends"}, got.Circles)
	assert.Nil(t, got.LastContactedAt)

	// Another owner cannot see it
	other, err := GetContact(database, "bob", contact.ID)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestFindContacts(t *testing.T) {
	database := setupTestDB(t)

	for _, c := range []*models.Contact{
		{Name: "Zoe", Email: "zoe@work.com", Circles: []string{"Work"}},
		{Name: "Ana", Email: "ana@home.com", Circles: []string{"Friends"}},
		{Name: "Ben", Email: "ben@work.com", Circles: []string{"Work", "Friends"}},
	} {
		require.NoError(t, CreateContact(database, "alice", c))
	}
	require.NoError(t, CreateContact(database, "bob", &models.Contact{Name: "Ana Elsewhere"}))

	all, err := FindContacts(database, "alice", "", "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Ana", all[0].Name)
	assert.Equal(t, "Zoe", all[2].Name)

	byEmail, err := FindContacts(database, "alice", "WORK.com", "", 10)
	require.NoError(t, err)
	assert.Len(t, byEmail, 2)

	friends, err := FindContacts(database, "alice", "", "friends", 10)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, []string{"Friends", "Work"}, friends[1].Circles)

	limited, err := FindContacts(database, "alice", "", "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUpdateContact(t *testing.T) {
	database := setupTestDB(t)

	contact := &models.Contact{Name: "Ana", Circles: []string{"Friends"}}
	require.NoError(t, CreateContact(database, "alice", contact))

	contact.Name = "Ana Lima"
	contact.Cadence = nextmeet.CadenceQuarterly
	contact.Circles = []string{"Family"}
	contact.PublicSlug = "ana-slug"
	contact.IsPublic = true
	require.NoError(t, UpdateContact(database, "alice", contact))

	got, err := GetContact(database, "alice", contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", got.Name)
	assert.Equal(t, nextmeet.CadenceQuarterly, got.Cadence)
	assert.Equal(t, []string{"Family"}, got.Circles)
	assert.True(t, got.IsPublic)

	err = UpdateContact(database, "bob", contact)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestGetPublicContact(t *testing.T) {
	database := setupTestDB(t)

	shared := &models.Contact{Name: "Shared", PublicSlug: "abc", IsPublic: true}
	hidden := &models.Contact{Name: "Hidden", PublicSlug: "def", IsPublic: false}
	require.NoError(t, CreateContact(database, "alice", shared))
	require.NoError(t, CreateContact(database, "bob", hidden))

	got, err := GetPublicContact(database, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Shared", got.Name)

	got, err = GetPublicContact(database, "def")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Slugs are unique across owners
	err = CreateContact(database, "carol", &models.Contact{Name: "Dup", PublicSlug: "abc"})
	assert.Error(t, err)
}

func TestUpdateNextMeetDate(t *testing.T) {
	database := setupTestDB(t)

	contact := &models.Contact{Name: "Ana", NextMeetDate: "2024-01-10", Cadence: nextmeet.CadenceWeekly}
	require.NoError(t, CreateContact(database, "alice", contact))

	require.NoError(t, UpdateNextMeetDate(database, "alice", contact.ID, "2024-01-31"))
	got, err := GetContact(database, "alice", contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", got.NextMeetDate)

	err = UpdateNextMeetDate(database, "alice", uuid.New(), "2024-01-31")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteContactCascades(t *testing.T) {
	database := setupTestDB(t)

	contact := &models.Contact{Name: "Ana", Circles: []string{"Friends"}}
	require.NoError(t, CreateContact(database, "alice", contact))
	require.NoError(t, AddNote(database, "alice", &models.Note{ContactID: contact.ID, Content: "likes tea"}))
	require.NoError(t, LogInteraction(database, "alice", &models.InteractionLog{
		ContactID:       contact.ID,
		InteractionType: models.InteractionCall,
	}))

	assert.ErrorIs(t, DeleteContact(database, "bob", contact.ID), sql.ErrNoRows)
	require.NoError(t, DeleteContact(database, "alice", contact.ID))

	for _, table := range []string{"notes", "interaction_log", "contact_circles"} {
		var count int
		require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Zero(t, count, table)
	}
}

func TestCircles(t *testing.T) {
	database := setupTestDB(t)

	friends := &models.Circle{Name: "Friends", Color: "#ff0000"}
	require.NoError(t, SaveCircle(database, "alice", friends))
	originalID := friends.ID

	recolor := &models.Circle{Name: "Friends", Color: "#00ff00"}
	require.NoError(t, SaveCircle(database, "alice", recolor))
	assert.Equal(t, originalID, recolor.ID)

	require.NoError(t, SaveCircle(database, "alice", &models.Circle{Name: "Work"}))
	require.NoError(t, SaveCircle(database, "bob", &models.Circle{Name: "Family"}))

	circles, err := ListCircles(database, "alice")
	require.NoError(t, err)
	require.Len(t, circles, 2)
	assert.Equal(t, "#00ff00", circles[0].Color)

	contact := &models.Contact{Name: "Ana", Circles: []string{"Friends", "Work"}}
	require.NoError(t, CreateContact(database, "alice", contact))

	require.NoError(t, DeleteCircle(database, "alice", "Friends"))
	got, err := GetContact(database, "alice", contact.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Work"}, got.Circles)

	assert.ErrorIs(t, DeleteCircle(database, "alice", "Friends"), sql.ErrNoRows)
}

func TestNotesAndInteractions(t *testing.T) {
	database := setupTestDB(t)

	contact := &models.Contact{Name: "Ana"}
	require.NoError(t, CreateContact(database, "alice", contact))

	older := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	require.NoError(t, AddNote(database, "alice", &models.Note{ContactID: contact.ID, Content: "first", CreatedAt: older}))
	require.NoError(t, AddNote(database, "alice", &models.Note{ContactID: contact.ID, Content: "second", CreatedAt: newer}))

	notes, err := GetNotes(database, "alice", contact.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Content)

	require.NoError(t, LogInteraction(database, "alice", &models.InteractionLog{
		ContactID: contact.ID, InteractionType: models.InteractionMeeting, Timestamp: newer, Notes: "coffee",
	}))
	require.NoError(t, LogInteraction(database, "alice", &models.InteractionLog{
		ContactID: contact.ID, InteractionType: models.InteractionEmail, Timestamp: older,
	}))

	history, err := GetInteractionHistory(database, "alice", contact.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "coffee", history[0].Notes)

	got, err := GetContact(database, "alice", contact.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastContactedAt)
	assert.True(t, got.LastContactedAt.Equal(newer), "backfilled interaction must not move last_contacted_at back")

	// Other owners cannot attach data to the contact
	err = AddNote(database, "bob", &models.Note{ContactID: contact.ID, Content: "sneaky"})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	err = LogInteraction(database, "alice", &models.InteractionLog{ContactID: contact.ID, InteractionType: "telepathy"})
	assert.Error(t, err)
}

func TestListOwners(t *testing.T) {
	database := setupTestDB(t)

	require.NoError(t, CreateContact(database, "bob", &models.Contact{Name: "A"}))
	require.NoError(t, CreateContact(database, "alice", &models.Contact{Name: "B"}))
	require.NoError(t, CreateContact(database, "alice", &models.Contact{Name: "C"}))

	owners, err := ListOwners(database)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, owners)
}

func TestSameIDsUnderTwoOwners(t *testing.T) {
	database := setupTestDB(t)

	id := uuid.New()
	noteID := uuid.New()
	logID := uuid.New()
	for _, owner := range []string{"alice", "bob"} {
		contact := &models.Contact{ID: id, Name: "Ana " + owner, Circles: []string{"Friends"}}
		require.NoError(t, CreateContact(database, owner, contact))
		require.NoError(t, AddNote(database, owner, &models.Note{ID: noteID, ContactID: id, Content: owner}))
		require.NoError(t, LogInteraction(database, owner, &models.InteractionLog{
			ID: logID, ContactID: id, InteractionType: models.InteractionCall,
		}))
	}

	require.NoError(t, DeleteCircle(database, "alice", "Friends"))
	require.NoError(t, DeleteContact(database, "alice", id))

	got, err := GetContact(database, "bob", id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ana bob", got.Name)
	assert.Equal(t, []string{"Friends"}, got.Circles)

	notes, err := GetNotes(database, "bob", id)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "bob", notes[0].Content)

	history, err := GetInteractionHistory(database, "bob", id, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPublicSlugTaken(t *testing.T) {
	database := setupTestDB(t)
	require.NoError(t, CreateContact(database, "alice", &models.Contact{Name: "Ana", PublicSlug: "ana"}))

	taken, err := PublicSlugTaken(database, "ana")
	require.NoError(t, err)
	assert.True(t, taken, "a private contact still holds its slug")

	taken, err = PublicSlugTaken(database, "ben")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = PublicSlugTaken(database, "")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestHistoryRejectsCorruptIDs(t *testing.T) {
	database := setupTestDB(t)
	contact := &models.Contact{Name: "Ana"}
	require.NoError(t, CreateContact(database, "alice", contact))

	_, err := database.Exec(`INSERT INTO notes (id, owner_id, contact_id, content, created_at)
		VALUES ('not-a-uuid', 'alice', ?, 'x', CURRENT_TIMESTAMP)`, contact.ID.String())
	require.NoError(t, err)
	_, err = GetNotes(database, "alice", contact.ID)
	assert.ErrorContains(t, err, "failed to parse note ID")

	_, err = database.Exec(`INSERT INTO interaction_log (id, owner_id, contact_id, interaction_type)
		VALUES ('not-a-uuid', 'alice', ?, 'call')`, contact.ID.String())
	require.NoError(t, err)
	_, err = GetInteractionHistory(database, "alice", contact.ID, 10)
	assert.ErrorContains(t, err, "failed to parse interaction ID")
}
