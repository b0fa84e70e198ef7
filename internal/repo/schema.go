package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
		id {{ID}},
		name TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		contact_type TEXT NOT NULL,
		email TEXT,
		company TEXT,
		position TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at {{TS}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_phone ON contacts(phone_number)`,
	`CREATE TABLE IF NOT EXISTS contact_groups (
		id {{ID}},
		name TEXT NOT NULL,
		description TEXT,
		group_type TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contact_group_members (
		contact_id BIGINT NOT NULL REFERENCES contacts(id),
		group_id BIGINT NOT NULL REFERENCES contact_groups(id),
		PRIMARY KEY (contact_id, group_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_members_group ON contact_group_members(group_id)`,
	`CREATE TABLE IF NOT EXISTS sms_templates (
		id {{ID}},
		name TEXT NOT NULL,
		template TEXT NOT NULL,
		description TEXT,
		template_type TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sms_messages (
		id {{ID}},
		from_number TEXT NOT NULL,
		to_number TEXT NOT NULL,
		message TEXT NOT NULL,
		status TEXT NOT NULL,
		provider_message_id TEXT,
		provider_response TEXT,
		created_at {{TS}} NOT NULL,
		updated_at {{TS}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sms_messages_created ON sms_messages(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sms_messages_to ON sms_messages(to_number)`,
}

// Migrate creates the five tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	r := strings.NewReplacer("{{ID}}", "INTEGER PRIMARY KEY AUTOINCREMENT", "{{TS}}", "DATETIME")
	if driver == DriverPostgres {
		r = strings.NewReplacer("{{ID}}", "BIGSERIAL PRIMARY KEY", "{{TS}}", "TIMESTAMPTZ")
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
