// ABOUTME: Circle database operations
// ABOUTME: Circles are named, colored tag categories owned by a user
package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/networkia/networkia/models"
)

// SaveCircle inserts a circle or updates the color of an existing one with the same name.
func SaveCircle(db *sql.DB, owner string, circle *models.Circle) error {
	if circle.ID == uuid.Nil {
		circle.ID = uuid.New()
	}

	_, err := db.Exec(`
		INSERT INTO circles (id, owner_id, name, color) VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_id, name) DO UPDATE SET color = excluded.color
	`, circle.ID.String(), owner, circle.Name, circle.Color)
	if err != nil {
		return err
	}

	// On conflict the stored row keeps its original ID
	var id string
	if err := db.QueryRow(`SELECT id FROM circles WHERE owner_id = ? AND name = ?`, owner, circle.Name).Scan(&id); err != nil {
		return err
	}
	circle.ID, err = uuid.Parse(id)
	return err
}

func ListCircles(db *sql.DB, owner string) ([]models.Circle, error) {
	rows, err := db.Query(`SELECT id, name, color FROM circles WHERE owner_id = ? ORDER BY name COLLATE NOCASE`, owner)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var circles []models.Circle
	for rows.Next() {
		var c models.Circle
		var id string
		if err := rows.Scan(&id, &c.Name, &c.Color); err != nil {
			return nil, err
		}
		c.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("failed to parse circle ID: %w", err)
		}
		circles = append(circles, c)
	}
	return circles, rows.Err()
}

// DeleteCircle removes a circle and untags the owner's contacts.
func DeleteCircle(db *sql.DB, owner, name string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.Exec(`DELETE FROM circles WHERE owner_id = ? AND name = ?`, owner, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	_, err = tx.Exec(`
		DELETE FROM contact_circles WHERE owner_id = ? AND circle_name = ?
	`, owner, name)
	if err != nil {
		return fmt.Errorf("failed to untag contacts: %w", err)
	}

	return tx.Commit()
}
