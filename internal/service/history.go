package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeventeLantos/sms-dispatch/internal/cache"
	"github.com/LeventeLantos/sms-dispatch/internal/logger"
	"github.com/LeventeLantos/sms-dispatch/internal/model"
	"github.com/LeventeLantos/sms-dispatch/internal/provider"
	"github.com/LeventeLantos/sms-dispatch/internal/repo"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

type History struct {
	store    *repo.Store
	provider provider.Provider
	cache    cache.MessageCache
	log      *logger.Logger
}

func NewHistory(store *repo.Store, p provider.Provider, c cache.MessageCache, log *logger.Logger) *History {
	if log == nil {
		log = logger.Nop()
	}
	return &History{
		store:    store,
		provider: p,
		cache:    c,
		log:      log.With("service", "History"),
	}
}

// Status returns a message, refreshing its status from the provider first
// when possible. Provider errors leave the stored status untouched.
func (h *History) Status(ctx context.Context, id int64) (res StatusResult) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("status panic recovered", "message_id", id, "panic", r)
			res = StatusResult{Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	m, err := h.store.Messages.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return StatusResult{Error: fmt.Sprintf("Message with ID %d not found", id), NotFound: true}
	}
	if err != nil {
		h.log.Error("load message failed", "message_id", id, "error", err)
		return StatusResult{Error: fmt.Sprintf("load message: %v", err)}
	}

	if _, err := h.reconcile(ctx, m); err != nil {
		h.log.Warn("status refresh failed", "message_id", id, "error", err)
	}
	return StatusResult{Success: true, Message: m}
}

// reconcile asks the provider for m's status and persists it if it moved.
// m is updated in place.
func (h *History) reconcile(ctx context.Context, m *model.Message) (bool, error) {
	if h.provider == nil || !m.Reconcilable() {
		return false, nil
	}

	remote, err := h.provider.Fetch(ctx, *m.ProviderMessageID)
	if err != nil {
		return false, err
	}
	status := model.Status(remote)
	if status == "" || status == m.Status {
		return false, nil
	}

	if err := h.store.Messages.UpdateStatus(ctx, m.ID, status); err != nil {
		return false, fmt.Errorf("update status: %w", err)
	}
	h.log.Debug("message status changed", "message_id", m.ID, "from", m.Status, "to", status)
	m.Status = status

	if h.cache != nil {
		if err := h.cache.StoreStatus(ctx, m.ID, string(status)); err != nil {
			h.log.Warn("cache status update failed", "message_id", m.ID, "error", err)
		}
	}
	return true, nil
}

// History returns one page of messages, newest first.
func (h *History) History(ctx context.Context, q HistoryQuery) HistoryPage {
	if q.Limit <= 0 {
		q.Limit = defaultHistoryLimit
	}
	if q.Limit > maxHistoryLimit {
		q.Limit = maxHistoryLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	msgs, total, err := h.store.Messages.List(ctx, repo.MessageFilter{
		Limit:       q.Limit,
		Offset:      q.Offset,
		ContactType: q.ContactType,
	})
	if err != nil {
		h.log.Error("list messages failed", "error", err)
		return HistoryPage{
			Messages:   []model.Message{},
			Pagination: Pagination{Limit: q.Limit, Offset: q.Offset},
			Error:      fmt.Sprintf("list messages: %v", err),
		}
	}

	return HistoryPage{
		Success:  true,
		Messages: msgs,
		Pagination: Pagination{
			Total:   total,
			Limit:   q.Limit,
			Offset:  q.Offset,
			HasMore: int64(q.Offset)+int64(q.Limit) < total,
		},
	}
}

// ReconcileRecent refreshes up to batch in-flight messages from the provider.
func (h *History) ReconcileRecent(ctx context.Context, batch int) (checked, changed int) {
	if h.provider == nil {
		return 0, 0
	}

	msgs, err := h.store.Messages.ListReconcilable(ctx, batch)
	if err != nil {
		h.log.Error("list reconcilable messages failed", "error", err)
		return 0, 0
	}

	for i := range msgs {
		if ctx.Err() != nil {
			break
		}
		checked++
		moved, err := h.reconcile(ctx, &msgs[i])
		if err != nil {
			h.log.Warn("reconcile failed", "message_id", msgs[i].ID, "error", err)
			continue
		}
		if moved {
			changed++
		}
	}

	h.log.Info("reconcile sweep finished", "checked", checked, "changed", changed)
	return checked, changed
}

// Overview summarises the store and the provider mode.
func (h *History) Overview(ctx context.Context, fromNumber string) (Overview, error) {
	o := Overview{Provider: "simulation", Simulated: true, FromNumber: fromNumber}
	if h.provider != nil {
		o.Provider = h.provider.Name()
		o.Simulated = false
	}

	var err error
	if o.TotalMessages, err = h.store.Messages.Count(ctx); err != nil {
		return Overview{}, fmt.Errorf("count messages: %w", err)
	}
	if o.ActiveContacts, err = h.store.Contacts.CountActive(ctx); err != nil {
		return Overview{}, fmt.Errorf("count contacts: %w", err)
	}
	if o.ActiveGroups, err = h.store.Groups.CountActive(ctx); err != nil {
		return Overview{}, fmt.Errorf("count groups: %w", err)
	}
	if o.ActiveTemplates, err = h.store.Templates.CountActive(ctx); err != nil {
		return Overview{}, fmt.Errorf("count templates: %w", err)
	}
	return o, nil
}
