package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LeventeLantos/sms-dispatch/internal/cache"
	"github.com/LeventeLantos/sms-dispatch/internal/logger"
	"github.com/LeventeLantos/sms-dispatch/internal/model"
	"github.com/LeventeLantos/sms-dispatch/internal/provider"
	"github.com/LeventeLantos/sms-dispatch/internal/render"
	"github.com/LeventeLantos/sms-dispatch/internal/repo"
)

const defaultConcurrency = 4

type DispatcherConfig struct {
	FromNumber  string
	Concurrency int
}

// Dispatcher sends messages and records every attempt. A nil provider
// means simulation: messages are stored as sent without leaving the process.
type Dispatcher struct {
	cfg      DispatcherConfig
	store    *repo.Store
	provider provider.Provider
	cache    cache.MessageCache
	log      *logger.Logger
}

func NewDispatcher(cfg DispatcherConfig, store *repo.Store, p provider.Provider, c cache.MessageCache, log *logger.Logger) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		cfg:      cfg,
		store:    store,
		provider: p,
		cache:    c,
		log:      log.With("service", "Dispatcher"),
	}
}

// Send renders, persists and transmits one message. Failures are reported
// in the result, never as a panic. Once the pending row exists its outcome is
// recorded even if ctx is cancelled.
func (d *Dispatcher) Send(ctx context.Context, to, body string, data map[string]any) (res SendResult) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("send panic recovered", "to", to, "panic", r)
			res = SendResult{Status: model.Failed, Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	text := d.render(body, data)

	m := &model.Message{
		FromNumber: d.cfg.FromNumber,
		ToNumber:   to,
		Body:       text,
		Status:     model.Pending,
	}
	if err := d.store.Messages.Create(ctx, m); err != nil {
		d.log.Error("store pending message failed", "to", to, "error", err)
		return SendResult{Status: model.Failed, Error: fmt.Sprintf("store message: %v", err)}
	}
	wctx := context.WithoutCancel(ctx)

	if d.provider == nil {
		return d.simulate(wctx, m)
	}

	receipt, err := d.provider.Send(ctx, provider.Outbound{From: m.FromNumber, To: to, Body: text})
	if err != nil {
		d.log.Warn("provider rejected message", "message_id", m.ID, "to", to, "error", err)
		if mErr := d.store.Messages.MarkFailed(wctx, m.ID, err.Error()); mErr != nil {
			d.log.Error("mark failed failed", "message_id", m.ID, "error", mErr)
			return SendResult{Status: model.Failed, Error: fmt.Sprintf("update message: %v", mErr)}
		}
		return SendResult{MessageID: &m.ID, Status: model.Failed, Error: err.Error()}
	}

	if err := d.store.Messages.MarkSent(wctx, m.ID, receipt.MessageID, receipt.Status); err != nil {
		d.log.Error("mark sent failed", "message_id", m.ID, "provider_message_id", receipt.MessageID, "error", err)
		return SendResult{Status: model.Failed, Error: fmt.Sprintf("update message: %v", err)}
	}
	d.storeSent(wctx, m.ID, receipt.MessageID, receipt.Status)

	return SendResult{
		Success:           true,
		MessageID:         &m.ID,
		ProviderMessageID: receipt.MessageID,
		Status:            model.Sent,
	}
}

func (d *Dispatcher) simulate(ctx context.Context, m *model.Message) SendResult {
	simID := fmt.Sprintf("%s%d", model.SimulatedPrefix, m.ID)
	if err := d.store.Messages.MarkSent(ctx, m.ID, simID, SimulatedNote); err != nil {
		d.log.Error("mark simulated send failed", "message_id", m.ID, "error", err)
		return SendResult{Status: model.Failed, Error: fmt.Sprintf("update message: %v", err)}
	}
	d.log.Debug("simulated send", "message_id", m.ID, "to", m.ToNumber)
	d.storeSent(ctx, m.ID, simID, string(model.Sent))

	return SendResult{
		Success:           true,
		MessageID:         &m.ID,
		ProviderMessageID: simID,
		Status:            model.Sent,
		Note:              SimulatedNote,
	}
}

// SendBulk sends the same body to every number. A batch that has started
// runs to completion even if ctx is cancelled. Results keep input order.
func (d *Dispatcher) SendBulk(ctx context.Context, numbers []string, body string, data map[string]any) BulkResult {
	sctx := context.WithoutCancel(ctx)
	items := make([]BulkItem, len(numbers))

	var g errgroup.Group
	g.SetLimit(d.cfg.Concurrency)
	for i, n := range numbers {
		g.Go(func() error {
			items[i] = BulkItem{PhoneNumber: n, Result: d.Send(sctx, n, body, data)}
			return nil
		})
	}
	_ = g.Wait()

	res := BulkResult{TotalSent: len(numbers), Results: items}
	for _, it := range items {
		if it.Result.Success {
			res.Successful++
		} else {
			res.Failed++
		}
	}
	res.Success = res.Failed == 0

	d.log.Info("bulk send finished", "total", res.TotalSent, "successful", res.Successful, "failed", res.Failed)
	return res
}

// SendGroup sends to the active members of an active group.
func (d *Dispatcher) SendGroup(ctx context.Context, groupID int64, body string, data map[string]any) (res BulkResult) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("group send panic recovered", "group_id", groupID, "panic", r)
			res = BulkResult{Error: fmt.Sprintf("internal error: %v", r), Results: []BulkItem{}}
		}
	}()

	fail := func(msg string) BulkResult {
		return BulkResult{Error: msg, Results: []BulkItem{}}
	}

	g, err := d.store.Groups.GetByID(ctx, groupID)
	if errors.Is(err, repo.ErrNotFound) {
		return fail(fmt.Sprintf("Group with ID %d not found", groupID))
	}
	if err != nil {
		d.log.Error("load group failed", "group_id", groupID, "error", err)
		return fail(fmt.Sprintf("load group: %v", err))
	}
	if !g.Active {
		return fail(fmt.Sprintf("Group %s is not active", g.Name))
	}

	members, err := d.store.Groups.ListMembers(ctx, groupID)
	if err != nil {
		d.log.Error("load group members failed", "group_id", groupID, "error", err)
		return fail(fmt.Sprintf("load group members: %v", err))
	}

	numbers := make([]string, 0, len(members))
	for _, c := range members {
		if c.Active {
			numbers = append(numbers, c.PhoneNumber)
		}
	}
	if len(numbers) == 0 {
		return fail(fmt.Sprintf("No active contacts found in group %s", g.Name))
	}

	res = d.SendBulk(ctx, numbers, body, data)
	res.GroupID = &g.ID
	res.GroupName = g.Name
	return res
}

func (d *Dispatcher) render(body string, data map[string]any) string {
	if len(data) == 0 {
		return body
	}
	text, err := render.Render(body, data)
	if err != nil {
		d.log.Warn("template substitution skipped", "error", err)
	}
	return text
}

func (d *Dispatcher) storeSent(ctx context.Context, id int64, providerID, status string) {
	if d.cache == nil {
		return
	}
	if err := d.cache.StoreSent(ctx, id, providerID, status, time.Now()); err != nil {
		d.log.Warn("cache store failed", "message_id", id, "error", err)
	}
}

// ProviderName reports the configured gateway, or "simulation".
func (d *Dispatcher) ProviderName() string {
	if d.provider == nil {
		return "simulation"
	}
	return d.provider.Name()
}
