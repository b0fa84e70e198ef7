package repo

import (
	"context"

	"github.com/LeventeLantos/sms-dispatch/internal/model"
)

type ContactFilter struct {
	Type       model.ContactType
	ActiveOnly bool
}

type ContactRepository interface {
	Create(ctx context.Context, c *model.Contact) error
	GetByID(ctx context.Context, id int64) (*model.Contact, error)
	// FindByPhone looks at every contact, active or not.
	FindByPhone(ctx context.Context, phone string) (*model.Contact, error)
	List(ctx context.Context, f ContactFilter) ([]model.Contact, error)
	Update(ctx context.Context, c *model.Contact) error
	SetActive(ctx context.Context, id int64, active bool) error
	CountActive(ctx context.Context) (int64, error)
}
