package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/LeventeLantos/sms-dispatch/internal/model"
)

const templateColumns = `id, name, template, description, template_type, active, created_at`

type SQLTemplateRepo struct {
	db *sql.DB
}

func NewSQLTemplateRepo(db *sql.DB) *SQLTemplateRepo {
	return &SQLTemplateRepo{db: db}
}

func (r *SQLTemplateRepo) Create(ctx context.Context, t *model.Template) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.TemplateType == "" {
		t.TemplateType = model.DefaultTemplateType
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO sms_templates (name, template, description, template_type, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, t.Name, t.Body, t.Description, t.TemplateType, t.Active, t.CreatedAt,
	).Scan(&t.ID)
}

func (r *SQLTemplateRepo) GetByID(ctx context.Context, id int64) (*model.Template, error) {
	t, err := scanTemplate(r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM sms_templates WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *SQLTemplateRepo) List(ctx context.Context, f TemplateFilter) ([]model.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM sms_templates WHERE 1 = 1`
	args := []any{}
	if f.Type != "" {
		args = append(args, f.Type)
		query += ` AND template_type = $1`
	}
	if f.ActiveOnly {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLTemplateRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sms_templates WHERE active = TRUE`).Scan(&n)
	return n, err
}

func scanTemplate(s scanner) (model.Template, error) {
	var t model.Template
	var description sql.NullString

	if err := s.Scan(
		&t.ID,
		&t.Name,
		&t.Body,
		&description,
		&t.TemplateType,
		&t.Active,
		&t.CreatedAt,
	); err != nil {
		return model.Template{}, err
	}

	t.Description = nullableString(description)
	return t, nil
}
