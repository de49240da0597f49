// ABOUTME: Contact database operations
// ABOUTME: Handles CRUD operations, circle tags, public slugs and next-meet updates
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/networkia/networkia/models"
	"github.com/networkia/networkia/nextmeet"
)

const contactColumns = `id, name, email, phone, company, bio, birthday, next_meet_date, cadence,
	public_slug, is_public, last_contacted_at, created_at, updated_at`

// CreateContact inserts a contact owned by owner. A nil ID is replaced with a new one.
func CreateContact(db *sql.DB, owner string, contact *models.Contact) error {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	now := time.Now()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}
	contact.UpdatedAt = now

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	_, err = tx.Exec(`
		INSERT INTO contacts (id, owner_id, name, email, phone, company, bio, birthday, next_meet_date, cadence,
			public_slug, is_public, last_contacted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, contact.ID.String(), owner, contact.Name, contact.Email, contact.Phone, contact.Company, contact.Bio,
		contact.Birthday, contact.NextMeetDate, string(contact.Cadence), nullableSlug(contact.PublicSlug),
		contact.IsPublic, contact.LastContactedAt, contact.CreatedAt, contact.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}

	if err := replaceCircles(tx, owner, contact.ID, contact.Circles); err != nil {
		return err
	}

	return tx.Commit()
}

func GetContact(db *sql.DB, owner string, id uuid.UUID) (*models.Contact, error) {
	row := db.QueryRow(`SELECT `+contactColumns+` FROM contacts WHERE owner_id = ? AND id = ?`, owner, id.String())
	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if contact.Circles, err = contactCircles(db, owner, contact.ID); err != nil {
		return nil, err
	}
	return contact, nil
}

// GetPublicContact looks up a shared profile by slug across all owners.
// Contacts that are not public are reported as not found.
func GetPublicContact(db *sql.DB, slug string) (*models.Contact, error) {
	if slug == "" {
		return nil, nil
	}

	var owner, rawID string
	err := db.QueryRow(`SELECT owner_id, id FROM contacts WHERE public_slug = ? AND is_public = 1`, slug).Scan(&owner, &rawID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contact ID: %w", err)
	}
	return GetContact(db, owner, id)
}

// PublicSlugTaken reports whether any owner's contact already uses slug,
// shared or not.
func PublicSlugTaken(db *sql.DB, slug string) (bool, error) {
	if slug == "" {
		return false, nil
	}
	var exists int
	err := db.QueryRow(`SELECT 1 FROM contacts WHERE public_slug = ? LIMIT 1`, slug).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindContacts lists an owner's contacts by name, optionally filtered by a name/email
// search and a circle.
func FindContacts(db *sql.DB, owner, query, circle string, limit int) ([]models.Contact, error) {
	if limit <= 0 {
		limit = 50
	}

	sqlQuery := `SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = ?`
	args := []interface{}{owner}

	if query != "" {
		searchPattern := "%" + strings.ToLower(query) + "%"
		sqlQuery += ` AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ?)`
		args = append(args, searchPattern, searchPattern)
	}
	if circle != "" {
		sqlQuery += ` AND id IN (SELECT contact_id FROM contact_circles WHERE owner_id = ? AND LOWER(circle_name) = ?)`
		args = append(args, owner, strings.ToLower(circle))
	}
	sqlQuery += ` ORDER BY name COLLATE NOCASE LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var contacts []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Circles are loaded after the cursor is closed; the pool has a single connection.
	_ = rows.Close()
	for i := range contacts {
		if contacts[i].Circles, err = contactCircles(db, owner, contacts[i].ID); err != nil {
			return nil, err
		}
	}

	return contacts, nil
}

// UpdateContact overwrites every editable field of an existing contact.
func UpdateContact(db *sql.DB, owner string, contact *models.Contact) error {
	contact.UpdatedAt = time.Now()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.Exec(`
		UPDATE contacts
		SET name = ?, email = ?, phone = ?, company = ?, bio = ?, birthday = ?, next_meet_date = ?, cadence = ?,
			public_slug = ?, is_public = ?, last_contacted_at = ?, updated_at = ?
		WHERE owner_id = ? AND id = ?
	`, contact.Name, contact.Email, contact.Phone, contact.Company, contact.Bio, contact.Birthday,
		contact.NextMeetDate, string(contact.Cadence), nullableSlug(contact.PublicSlug), contact.IsPublic,
		contact.LastContactedAt, contact.UpdatedAt, owner, contact.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	if err := replaceCircles(tx, owner, contact.ID, contact.Circles); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateNextMeetDate persists a (typically advanced) next-meet date.
func UpdateNextMeetDate(db *sql.DB, owner string, id uuid.UUID, date string) error {
	res, err := db.Exec(`
		UPDATE contacts SET next_meet_date = ?, updated_at = ?
		WHERE owner_id = ? AND id = ?
	`, date, time.Now(), owner, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func DeleteContact(db *sql.DB, owner string, id uuid.UUID) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	res, err := tx.Exec(`DELETE FROM contacts WHERE owner_id = ? AND id = ?`, owner, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	for _, table := range []string{"contact_circles", "notes", "interaction_log"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE owner_id = ? AND contact_id = ?`, owner, id.String()); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// ListOwners returns every owner that has at least one contact.
func ListOwners(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT owner_id FROM contacts ORDER BY owner_id`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	c := &models.Contact{}
	var id, cadence string
	var slug sql.NullString

	err := row.Scan(&id, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Bio, &c.Birthday, &c.NextMeetDate,
		&cadence, &slug, &c.IsPublic, &c.LastContactedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contact ID: %w", err)
	}
	c.Cadence = nextmeet.Cadence(cadence)
	c.PublicSlug = slug.String

	return c, nil
}

func contactCircles(db *sql.DB, owner string, contactID uuid.UUID) ([]string, error) {
	rows, err := db.Query(`
		SELECT circle_name FROM contact_circles WHERE owner_id = ? AND contact_id = ? ORDER BY circle_name
	`, owner, contactID.String())
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var circles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		circles = append(circles, name)
	}
	return circles, rows.Err()
}

func replaceCircles(tx *sql.Tx, owner string, contactID uuid.UUID, circles []string) error {
	if _, err := tx.Exec(`DELETE FROM contact_circles WHERE owner_id = ? AND contact_id = ?`, owner, contactID.String()); err != nil {
		return fmt.Errorf("failed to clear circles: %w", err)
	}
	for _, name := range circles {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO contact_circles (owner_id, contact_id, circle_name) VALUES (?, ?, ?)
		`, owner, contactID.String(), name); err != nil {
			return fmt.Errorf("failed to tag circle %q: %w", name, err)
		}
	}
	return nil
}

func nullableSlug(slug string) interface{} {
	if slug == "" {
		return nil
	}
	return slug
}
