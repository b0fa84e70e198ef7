package repo

import (
	"context"

	"github.com/LeventeLantos/sms-dispatch/internal/model"
)

type MessageFilter struct {
	Limit       int
	Offset      int
	ContactType model.ContactType
}

type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	GetByID(ctx context.Context, id int64) (*model.Message, error)
	MarkSent(ctx context.Context, id int64, providerMessageID, response string) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	UpdateStatus(ctx context.Context, id int64, status model.Status) error
	// List returns one page, newest first, and the size of the filtered set.
	List(ctx context.Context, f MessageFilter) ([]model.Message, int64, error)
	// ListReconcilable returns the newest messages the provider accepted but
	// has not reported a final status for. Simulated sends are skipped.
	ListReconcilable(ctx context.Context, limit int) ([]model.Message, error)
	Count(ctx context.Context) (int64, error)
}
