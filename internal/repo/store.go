package repo

import (
	"context"
	"database/sql"
)

// Store groups the repositories that share one database.
type Store struct {
	db *sql.DB

	Messages  MessageRepository
	Contacts  ContactRepository
	Groups    GroupRepository
	Templates TemplateRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		Messages:  NewSQLMessageRepo(db),
		Contacts:  NewSQLContactRepo(db),
		Groups:    NewSQLGroupRepo(db),
		Templates: NewSQLTemplateRepo(db),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}
