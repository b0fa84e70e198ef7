package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/LeventeLantos/sms-dispatch/internal/model"
)

const contactColumns = `id, name, phone_number, contact_type, email, company, position, active, created_at`

type SQLContactRepo struct {
	db *sql.DB
}

func NewSQLContactRepo(db *sql.DB) *SQLContactRepo {
	return &SQLContactRepo{db: db}
}

func (r *SQLContactRepo) Create(ctx context.Context, c *model.Contact) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO contacts (name, phone_number, contact_type, email, company, position, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, c.Name, c.PhoneNumber, string(c.ContactType), c.Email, c.Company, c.Position, c.Active, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *SQLContactRepo) GetByID(ctx context.Context, id int64) (*model.Contact, error) {
	return r.getOne(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
}

func (r *SQLContactRepo) FindByPhone(ctx context.Context, phone string) (*model.Contact, error) {
	return r.getOne(ctx, `SELECT `+contactColumns+` FROM contacts WHERE phone_number = $1 ORDER BY id LIMIT 1`, phone)
}

func (r *SQLContactRepo) getOne(ctx context.Context, query string, arg any) (*model.Contact, error) {
	c, err := scanContact(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SQLContactRepo) List(ctx context.Context, f ContactFilter) ([]model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE 1 = 1`
	args := []any{}
	if f.Type != "" {
		args = append(args, string(f.Type))
		query += ` AND contact_type = $1`
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
	return collectContacts(rows)
}

func (r *SQLContactRepo) Update(ctx context.Context, c *model.Contact) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contacts
		SET name = $1, phone_number = $2, contact_type = $3,
		    email = $4, company = $5, position = $6, active = $7
		WHERE id = $8
	`, c.Name, c.PhoneNumber, string(c.ContactType), c.Email, c.Company, c.Position, c.Active, c.ID)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *SQLContactRepo) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE contacts SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *SQLContactRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE active = TRUE`).Scan(&n)
	return n, err
}

func affected(res sql.Result) error {
	ok, err := mustAffect(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func collectContacts(rows *sql.Rows) ([]model.Contact, error) {
	out := []model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanContact(s scanner) (model.Contact, error) {
	var c model.Contact
	var contactType string
	var email, company, position sql.NullString

	if err := s.Scan(
		&c.ID,
		&c.Name,
		&c.PhoneNumber,
		&contactType,
		&email,
		&company,
		&position,
		&c.Active,
		&c.CreatedAt,
	); err != nil {
		return model.Contact{}, err
	}

	c.ContactType = model.ContactType(contactType)
	c.Email = nullableString(email)
	c.Company = nullableString(company)
	c.Position = nullableString(position)
	return c, nil
}
