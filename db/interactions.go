// ABOUTME: Database operations for notes and interaction logging
// ABOUTME: Logging an interaction also stamps the contact's last_contacted_at
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/networkia/networkia/models"
)

// AddNote stores a personal note on a contact the owner can see.
func AddNote(db *sql.DB, owner string, note *models.Note) error {
	if err := requireContact(db, owner, note.ContactID); err != nil {
		return err
	}

	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO notes (id, owner_id, contact_id, content, created_at) VALUES (?, ?, ?, ?, ?)
	`, note.ID.String(), owner, note.ContactID.String(), note.Content, note.CreatedAt)
	return err
}

// GetNotes returns a contact's notes, newest first.
func GetNotes(db *sql.DB, owner string, contactID uuid.UUID) ([]models.Note, error) {
	rows, err := db.Query(`
		SELECT id, contact_id, content, created_at
		FROM notes
		WHERE owner_id = ? AND contact_id = ?
		ORDER BY created_at DESC
	`, owner, contactID.String())
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		var id, cid string
		if err := rows.Scan(&id, &cid, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		var err error
		if n.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse note ID: %w", err)
		}
		if n.ContactID, err = uuid.Parse(cid); err != nil {
			return nil, fmt.Errorf("failed to parse contact ID: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// LogInteraction records a new interaction and updates the contact's last_contacted_at.
func LogInteraction(db *sql.DB, owner string, interaction *models.InteractionLog) error {
	if err := requireContact(db, owner, interaction.ContactID); err != nil {
		return err
	}

	// Generate ID if not set
	if interaction.ID == uuid.Nil {
		interaction.ID = uuid.New()
	}
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now()
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(`
		INSERT INTO interaction_log (id, owner_id, contact_id, interaction_type, timestamp, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, interaction.ID.String(), owner, interaction.ContactID.String(), interaction.InteractionType,
		interaction.Timestamp, interaction.Notes)
	if err != nil {
		return err
	}

	// Only move last_contacted_at forward when backfilling older interactions
	_, err = tx.Exec(`
		UPDATE contacts SET last_contacted_at = ?
		WHERE owner_id = ? AND id = ? AND (last_contacted_at IS NULL OR last_contacted_at < ?)
	`, interaction.Timestamp, owner, interaction.ContactID.String(), interaction.Timestamp)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetInteractionHistory retrieves interaction history for a contact, newest first.
func GetInteractionHistory(db *sql.DB, owner string, contactID uuid.UUID, limit int) ([]models.InteractionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT id, contact_id, interaction_type, timestamp, notes
		FROM interaction_log
		WHERE owner_id = ? AND contact_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, owner, contactID.String(), limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var interactions []models.InteractionLog
	for rows.Next() {
		var i models.InteractionLog
		var id, contactID string
		if err := rows.Scan(&id, &contactID, &i.InteractionType, &i.Timestamp, &i.Notes); err != nil {
			return nil, err
		}
		var err error
		if i.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse interaction ID: %w", err)
		}
		if i.ContactID, err = uuid.Parse(contactID); err != nil {
			return nil, fmt.Errorf("failed to parse contact ID: %w", err)
		}
		interactions = append(interactions, i)
	}

	return interactions, rows.Err()
}

func requireContact(db *sql.DB, owner string, contactID uuid.UUID) error {
	var exists int
	return db.QueryRow(`SELECT 1 FROM contacts WHERE owner_id = ? AND id = ?`, owner, contactID.String()).Scan(&exists)
}
