package repo

import (
	"context"

	"github.com/LeventeLantos/sms-dispatch/internal/model"
)

type TemplateFilter struct {
	Type       string
	ActiveOnly bool
}

type TemplateRepository interface {
	Create(ctx context.Context, t *model.Template) error
	GetByID(ctx context.Context, id int64) (*model.Template, error)
	List(ctx context.Context, f TemplateFilter) ([]model.Template, error)
	CountActive(ctx context.Context) (int64, error)
}
