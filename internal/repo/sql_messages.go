package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/LeventeLantos/sms-dispatch/internal/model"
)

const messageColumns = `id, from_number, to_number, message, status,
	provider_message_id, provider_response, created_at, updated_at`

type SQLMessageRepo struct {
	db *sql.DB
}

func NewSQLMessageRepo(db *sql.DB) *SQLMessageRepo {
	return &SQLMessageRepo{db: db}
}

func (r *SQLMessageRepo) Create(ctx context.Context, m *model.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	if m.Status == "" {
		m.Status = model.Pending
	}

	return r.db.QueryRowContext(ctx, `
		INSERT INTO sms_messages (from_number, to_number, message, status,
			provider_message_id, provider_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, m.FromNumber, m.ToNumber, m.Body, string(m.Status),
		m.ProviderMessageID, m.ProviderResponse, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
}

func (r *SQLMessageRepo) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM sms_messages WHERE id = $1`, id)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *SQLMessageRepo) MarkSent(ctx context.Context, id int64, providerMessageID, response string) error {
	return r.exec(ctx, `
		UPDATE sms_messages
		SET status = 'sent',
		    provider_message_id = $1,
		    provider_response = $2,
		    updated_at = $3
		WHERE id = $4
	`, providerMessageID, response, time.Now().UTC(), id)
}

func (r *SQLMessageRepo) MarkFailed(ctx context.Context, id int64, reason string) error {
	return r.exec(ctx, `
		UPDATE sms_messages
		SET status = 'failed',
		    provider_response = $1,
		    updated_at = $2
		WHERE id = $3
	`, reason, time.Now().UTC(), id)
}

func (r *SQLMessageRepo) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	return r.exec(ctx, `
		UPDATE sms_messages
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, string(status), time.Now().UTC(), id)
}

func (r *SQLMessageRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *SQLMessageRepo) List(ctx context.Context, f MessageFilter) ([]model.Message, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := ""
	args := []any{}
	if f.ContactType != "" {
		where = `WHERE EXISTS (
			SELECT 1 FROM contacts c
			WHERE c.phone_number = sms_messages.to_number AND c.contact_type = $1
		)`
		args = append(args, string(f.ContactType))
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sms_messages `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitPos, offsetPos := "$1", "$2"
	if f.ContactType != "" {
		limitPos, offsetPos = "$2", "$3"
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM sms_messages `+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT `+limitPos+` OFFSET `+offsetPos,
		append(args, f.Limit, f.Offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectMessages(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *SQLMessageRepo) ListReconcilable(ctx context.Context, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM sms_messages
		WHERE status IN ('sent', 'queued', 'accepted', 'sending')
		  AND provider_message_id IS NOT NULL
		  AND substr(provider_message_id, 1, 4) <> 'sim_'
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (r *SQLMessageRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sms_messages`).Scan(&n)
	return n, err
}

func collectMessages(rows *sql.Rows) ([]model.Message, error) {
	out := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMessage(s scanner) (model.Message, error) {
	var m model.Message
	var status string
	var providerID, response sql.NullString

	if err := s.Scan(
		&m.ID,
		&m.FromNumber,
		&m.ToNumber,
		&m.Body,
		&status,
		&providerID,
		&response,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return model.Message{}, err
	}

	m.Status = model.Status(status)
	m.ProviderMessageID = nullableString(providerID)
	m.ProviderResponse = nullableString(response)
	return m, nil
}
