package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/LeventeLantos/sms-dispatch/internal/model"
	"github.com/LeventeLantos/sms-dispatch/internal/provider"
	"github.com/LeventeLantos/sms-dispatch/internal/repo"
)

func newStore(t *testing.T) *repo.Store {
	t.Helper()
	db, err := repo.Open(context.Background(), repo.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("repo.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return repo.NewStore(db)
}

// fakeProvider rejects numbers listed in fail and reports statuses from status.
type fakeProvider struct {
	mu     sync.Mutex
	fail   map[string]bool
	status map[string]string
	sent   []provider.Outbound
	panics bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Send(_ context.Context, msg provider.Outbound) (provider.Receipt, error) {
	if f.panics {
		panic("gateway exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if f.fail[msg.To] {
		return provider.Receipt{}, &provider.Error{Code: 21211, Status: 400, Message: "invalid number " + msg.To}
	}
	return provider.Receipt{MessageID: "SM" + strings.TrimPrefix(msg.To, "+"), Status: "queued"}, nil
}

func (f *fakeProvider) Fetch(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.status[id]
	if !ok {
		return "", &provider.Error{Status: 404, Message: "unknown message " + id}
	}
	return s, nil
}

// failingMessages breaks Create for every message.
type failingMessages struct {
	repo.MessageRepository
}

func (failingMessages) Create(context.Context, *model.Message) error {
	return errors.New("disk full")
}

func countMessages(t *testing.T, store *repo.Store) int64 {
	t.Helper()
	n, err := store.Messages.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	return n
}

func ptr[T any](v T) *T { return &v }
