// ABOUTME: Database schema definitions and migrations
// ABOUTME: Every table is keyed by owner so accounts can hold records with the same IDs
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	bio TEXT NOT NULL DEFAULT '',
	birthday TEXT NOT NULL DEFAULT '',
	next_meet_date TEXT NOT NULL DEFAULT '',
	cadence TEXT NOT NULL DEFAULT '' CHECK(cadence IN ('', 'weekly', 'biweekly', 'monthly', 'quarterly')),
	public_slug TEXT,
	is_public INTEGER NOT NULL DEFAULT 0,
	last_contacted_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (owner_id, id)
);

CREATE INDEX IF NOT EXISTS idx_contacts_owner ON contacts(owner_id);
CREATE INDEX IF NOT EXISTS idx_contacts_owner_name ON contacts(owner_id, name);
CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_public_slug ON contacts(public_slug) WHERE public_slug IS NOT NULL;

CREATE TABLE IF NOT EXISTS circles (
	id TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (owner_id, id),
	UNIQUE(owner_id, name)
);

CREATE TABLE IF NOT EXISTS contact_circles (
	owner_id TEXT NOT NULL,
	contact_id TEXT NOT NULL,
	circle_name TEXT NOT NULL,
	PRIMARY KEY (owner_id, contact_id, circle_name),
	FOREIGN KEY (owner_id, contact_id) REFERENCES contacts(owner_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_contact_circles_name ON contact_circles(owner_id, circle_name);

CREATE TABLE IF NOT EXISTS notes (
	id TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	contact_id TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (owner_id, id),
	FOREIGN KEY (owner_id, contact_id) REFERENCES contacts(owner_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_notes_contact ON notes(owner_id, contact_id);

CREATE TABLE IF NOT EXISTS interaction_log (
	id TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	contact_id TEXT NOT NULL,
	interaction_type TEXT NOT NULL CHECK(interaction_type IN ('meeting', 'call', 'email', 'message', 'event')),
	timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	notes TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (owner_id, id),
	FOREIGN KEY (owner_id, contact_id) REFERENCES contacts(owner_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_interaction_log_contact ON interaction_log(owner_id, contact_id);
CREATE INDEX IF NOT EXISTS idx_interaction_log_timestamp ON interaction_log(timestamp DESC);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
