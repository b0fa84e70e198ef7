package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LeventeLantos/sms-dispatch/internal/model"
)

const groupColumns = `g.id, g.name, g.description, g.group_type, g.active, g.created_at,
	(SELECT COUNT(*) FROM contact_group_members m WHERE m.group_id = g.id) AS contact_count`

type SQLGroupRepo struct {
	db *sql.DB
}

func NewSQLGroupRepo(db *sql.DB) *SQLGroupRepo {
	return &SQLGroupRepo{db: db}
}

func (r *SQLGroupRepo) Create(ctx context.Context, g *model.Group) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO contact_groups (name, description, group_type, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, g.Name, g.Description, string(g.GroupType), g.Active, g.CreatedAt,
	).Scan(&g.ID)
}

func (r *SQLGroupRepo) GetByID(ctx context.Context, id int64) (*model.Group, error) {
	g, err := scanGroup(r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM contact_groups g WHERE g.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *SQLGroupRepo) List(ctx context.Context, f GroupFilter) ([]model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM contact_groups g WHERE 1 = 1`
	args := []any{}
	if f.Type != "" {
		args = append(args, string(f.Type))
		query += ` AND g.group_type = $1`
	}
	if f.ActiveOnly {
		query += ` AND g.active = TRUE`
	}
	query += ` ORDER BY g.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLGroupRepo) Update(ctx context.Context, g *model.Group) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contact_groups
		SET name = $1, description = $2, group_type = $3, active = $4
		WHERE id = $5
	`, g.Name, g.Description, string(g.GroupType), g.Active, g.ID)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *SQLGroupRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_groups WHERE active = TRUE`).Scan(&n)
	return n, err
}

func (r *SQLGroupRepo) ListMembers(ctx context.Context, groupID int64) ([]model.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.phone_number, c.contact_type, c.email, c.company, c.position, c.active, c.created_at
		FROM contacts c
		JOIN contact_group_members m ON m.contact_id = c.id
		WHERE m.group_id = $1
		ORDER BY c.id
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContacts(rows)
}

func (r *SQLGroupRepo) AddMember(ctx context.Context, groupID, contactID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_group_members (contact_id, group_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, contactID, groupID)
	if err != nil {
		return false, err
	}
	return mustAffect(res)
}

func (r *SQLGroupRepo) RemoveMember(ctx context.Context, groupID, contactID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM contact_group_members
		WHERE contact_id = $1 AND group_id = $2
	`, contactID, groupID)
	if err != nil {
		return false, err
	}
	return mustAffect(res)
}

func (r *SQLGroupRepo) GroupsForContacts(ctx context.Context, contactIDs []int64) (map[int64][]model.Group, error) {
	out := make(map[int64][]model.Group, len(contactIDs))
	if len(contactIDs) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(contactIDs))
	args := make([]any, len(contactIDs))
	for i, id := range contactIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT m.contact_id, `+groupColumns+`
		FROM contact_group_members m
		JOIN contact_groups g ON g.id = m.group_id
		WHERE m.contact_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY m.contact_id, g.id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var contactID int64
		var g model.Group
		var description sql.NullString
		var groupType string
		if err := rows.Scan(
			&contactID,
			&g.ID,
			&g.Name,
			&description,
			&groupType,
			&g.Active,
			&g.CreatedAt,
			&g.ContactCount,
		); err != nil {
			return nil, err
		}
		g.Description = nullableString(description)
		g.GroupType = model.GroupType(groupType)
		out[contactID] = append(out[contactID], g)
	}
	return out, rows.Err()
}

func scanGroup(s scanner) (model.Group, error) {
	var g model.Group
	var description sql.NullString
	var groupType string

	if err := s.Scan(
		&g.ID,
		&g.Name,
		&description,
		&groupType,
		&g.Active,
		&g.CreatedAt,
		&g.ContactCount,
	); err != nil {
		return model.Group{}, err
	}

	g.Description = nullableString(description)
	g.GroupType = model.GroupType(groupType)
	return g, nil
}
