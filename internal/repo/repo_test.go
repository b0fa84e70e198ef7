package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/LeventeLantos/sms-dispatch/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "x"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(context.Background(), db, DriverSQLite); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestMessages_CreateMarkAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewSQLMessageRepo(openTestDB(t))

	m := &model.Message{FromNumber: "+100", ToNumber: "+200", Body: "hi"}
	if err := r.Create(ctx, m); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	if m.Status != model.Pending {
		t.Fatalf("expected pending, got %q", m.Status)
	}

	if err := r.MarkSent(ctx, m.ID, "SM123", "queued"); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	got, err := r.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != model.Sent {
		t.Fatalf("expected sent, got %q", got.Status)
	}
	if got.ProviderMessageID == nil || *got.ProviderMessageID != "SM123" {
		t.Fatalf("unexpected provider id: %v", got.ProviderMessageID)
	}
	if got.ProviderResponse == nil || *got.ProviderResponse != "queued" {
		t.Fatalf("unexpected provider response: %v", got.ProviderResponse)
	}
	if got.Body != "hi" || got.ToNumber != "+200" || got.FromNumber != "+100" {
		t.Fatalf("unexpected row: %+v", got)
	}

	if err := r.UpdateStatus(ctx, m.ID, model.Delivered); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, _ = r.GetByID(ctx, m.ID)
	if got.Status != model.Delivered {
		t.Fatalf("expected delivered, got %q", got.Status)
	}
}

func TestMessages_MarkFailed(t *testing.T) {
	ctx := context.Background()
	r := NewSQLMessageRepo(openTestDB(t))

	m := &model.Message{FromNumber: "+1", ToNumber: "+2", Body: "x"}
	if err := r.Create(ctx, m); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.MarkFailed(ctx, m.ID, "invalid number"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	got, _ := r.GetByID(ctx, m.ID)
	if got.Status != model.Failed {
		t.Fatalf("expected failed, got %q", got.Status)
	}
	if got.ProviderMessageID != nil {
		t.Fatalf("expected no provider id, got %v", *got.ProviderMessageID)
	}
	if got.ProviderResponse == nil || *got.ProviderResponse != "invalid number" {
		t.Fatalf("unexpected provider response: %v", got.ProviderResponse)
	}
}

func TestMessages_NotFound(t *testing.T) {
	ctx := context.Background()
	r := NewSQLMessageRepo(openTestDB(t))

	if _, err := r.GetByID(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := r.MarkSent(ctx, 42, "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from MarkSent, got %v", err)
	}
}

func seedMessages(t *testing.T, r *SQLMessageRepo, to []string) []int64 {
	t.Helper()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ids := make([]int64, 0, len(to))
	for i, n := range to {
		m := &model.Message{
			FromNumber: "+1",
			ToNumber:   n,
			Body:       fmt.Sprintf("msg %d", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := r.Create(context.Background(), m); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, m.ID)
	}
	return ids
}

func TestMessages_ListPagination(t *testing.T) {
	r := NewSQLMessageRepo(openTestDB(t))

	to := make([]string, 10)
	for i := range to {
		to[i] = fmt.Sprintf("+3000%d", i)
	}
	ids := seedMessages(t, r, to)

	got, total, err := r.List(context.Background(), MessageFilter{Limit: 3, Offset: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 10 {
		t.Fatalf("expected total 10, got %d", total)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	// Newest first: ranks 3..5 are ids[7], ids[6], ids[5].
	want := []int64{ids[7], ids[6], ids[5]}
	for i, m := range got {
		if m.ID != want[i] {
			t.Fatalf("row %d: expected id %d, got %d", i, want[i], m.ID)
		}
	}
}

func TestMessages_ListDefaults(t *testing.T) {
	r := NewSQLMessageRepo(openTestDB(t))
	seedMessages(t, r, []string{"+1", "+2"})

	got, total, err := r.List(context.Background(), MessageFilter{Limit: 0, Offset: -5})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("expected 2/2, got %d/%d", len(got), total)
	}
}

func TestMessages_ListByContactType(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	messages := NewSQLMessageRepo(db)
	contacts := NewSQLContactRepo(db)

	for _, c := range []*model.Contact{
		{Name: "A", PhoneNumber: "+10", ContactType: model.Client, Active: true},
		{Name: "B", PhoneNumber: "+20", ContactType: model.Employee, Active: true},
		// same number twice must not duplicate history rows
		{Name: "A2", PhoneNumber: "+10", ContactType: model.Client, Active: false},
	} {
		if err := contacts.Create(ctx, c); err != nil {
			t.Fatalf("Create contact: %v", err)
		}
	}
	seedMessages(t, messages, []string{"+10", "+20", "+10", "+99"})

	got, total, err := messages.List(ctx, MessageFilter{Limit: 10, ContactType: model.Client})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("expected 2 client messages, got %d (total %d)", len(got), total)
	}
	for _, m := range got {
		if m.ToNumber != "+10" {
			t.Fatalf("unexpected recipient %q", m.ToNumber)
		}
	}

	got, total, err = messages.List(ctx, MessageFilter{Limit: 1, ContactType: model.Employee})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ToNumber != "+20" {
		t.Fatalf("unexpected employee page: %+v total=%d", got, total)
	}
}

func TestMessages_ListReconcilable(t *testing.T) {
	ctx := context.Background()
	r := NewSQLMessageRepo(openTestDB(t))
	ids := seedMessages(t, r, []string{"+1", "+2", "+3", "+4"})

	_ = r.MarkSent(ctx, ids[0], "SMaaa", "queued")
	_ = r.MarkSent(ctx, ids[1], "sim_2", "Simulated")
	_ = r.MarkFailed(ctx, ids[2], "boom")
	_ = r.MarkSent(ctx, ids[3], "SMbbb", "sent")

	got, err := r.ListReconcilable(ctx, 10)
	if err != nil {
		t.Fatalf("ListReconcilable: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got[0].ID != ids[3] || got[1].ID != ids[0] {
		t.Fatalf("unexpected order: %d, %d", got[0].ID, got[1].ID)
	}

	n, err := r.Count(ctx)
	if err != nil || n != 4 {
		t.Fatalf("Count: %d, %v", n, err)
	}
}

func TestContacts_CRUD(t *testing.T) {
	ctx := context.Background()
	r := NewSQLContactRepo(openTestDB(t))

	c := &model.Contact{Name: "Ann", PhoneNumber: "+111", ContactType: model.Client, Email: strPtr("ann@example.com"), Active: true}
	if err := r.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := r.FindByPhone(ctx, "+111")
	if err != nil {
		t.Fatalf("FindByPhone: %v", err)
	}
	if got.ID != c.ID || got.Email == nil || *got.Email != "ann@example.com" || got.Company != nil {
		t.Fatalf("unexpected contact: %+v", got)
	}

	got.Name = "Ann B"
	got.Company = strPtr("Acme")
	if err := r.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := r.SetActive(ctx, c.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	after, err := r.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if after.Name != "Ann B" || after.Company == nil || *after.Company != "Acme" || after.Active {
		t.Fatalf("unexpected contact after update: %+v", after)
	}

	// inactive contacts are still found by phone
	if _, err := r.FindByPhone(ctx, "+111"); err != nil {
		t.Fatalf("FindByPhone inactive: %v", err)
	}
	if _, err := r.FindByPhone(ctx, "+999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := r.SetActive(ctx, 999, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContacts_ListFilters(t *testing.T) {
	ctx := context.Background()
	r := NewSQLContactRepo(openTestDB(t))

	for _, c := range []*model.Contact{
		{Name: "A", PhoneNumber: "+1", ContactType: model.Client, Active: true},
		{Name: "B", PhoneNumber: "+2", ContactType: model.Employee, Active: true},
		{Name: "C", PhoneNumber: "+3", ContactType: model.Client, Active: false},
	} {
		if err := r.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	tests := []struct {
		name string
		f    ContactFilter
		want int
	}{
		{"all", ContactFilter{}, 3},
		{"active", ContactFilter{ActiveOnly: true}, 2},
		{"clients", ContactFilter{Type: model.Client}, 2},
		{"active clients", ContactFilter{Type: model.Client, ActiveOnly: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.List(ctx, tt.f)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, len(got))
			}
		})
	}

	n, err := r.CountActive(ctx)
	if err != nil || n != 2 {
		t.Fatalf("CountActive: %d, %v", n, err)
	}
}

func TestGroups_Membership(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	groups := NewSQLGroupRepo(db)
	contacts := NewSQLContactRepo(db)

	g := &model.Group{Name: "VIP", GroupType: model.ClientGroup, Description: strPtr("best"), Active: true}
	if err := groups.Create(ctx, g); err != nil {
		t.Fatalf("Create group: %v", err)
	}
	a := &model.Contact{Name: "A", PhoneNumber: "+1", ContactType: model.Client, Active: true}
	b := &model.Contact{Name: "B", PhoneNumber: "+2", ContactType: model.Client, Active: false}
	for _, c := range []*model.Contact{a, b} {
		if err := contacts.Create(ctx, c); err != nil {
			t.Fatalf("Create contact: %v", err)
		}
	}

	added, err := groups.AddMember(ctx, g.ID, a.ID)
	if err != nil || !added {
		t.Fatalf("AddMember a: %v, %v", added, err)
	}
	added, err = groups.AddMember(ctx, g.ID, a.ID)
	if err != nil || added {
		t.Fatalf("duplicate AddMember: expected false, got %v, %v", added, err)
	}
	if _, err := groups.AddMember(ctx, g.ID, b.ID); err != nil {
		t.Fatalf("AddMember b: %v", err)
	}

	members, err := groups.ListMembers(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	got, err := groups.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ContactCount != 2 || got.Description == nil || *got.Description != "best" {
		t.Fatalf("unexpected group: %+v", got)
	}

	byContact, err := groups.GroupsForContacts(ctx, []int64{a.ID, b.ID, 999})
	if err != nil {
		t.Fatalf("GroupsForContacts: %v", err)
	}
	if len(byContact[a.ID]) != 1 || byContact[a.ID][0].Name != "VIP" {
		t.Fatalf("unexpected groups for a: %+v", byContact[a.ID])
	}
	if len(byContact[999]) != 0 {
		t.Fatalf("expected no groups for unknown contact")
	}

	removed, err := groups.RemoveMember(ctx, g.ID, a.ID)
	if err != nil || !removed {
		t.Fatalf("RemoveMember: %v, %v", removed, err)
	}
	removed, err = groups.RemoveMember(ctx, g.ID, a.ID)
	if err != nil || removed {
		t.Fatalf("second RemoveMember: expected false, got %v, %v", removed, err)
	}
}

func TestGroups_UpdateAndList(t *testing.T) {
	ctx := context.Background()
	r := NewSQLGroupRepo(openTestDB(t))

	a := &model.Group{Name: "A", GroupType: model.ClientGroup, Active: true}
	b := &model.Group{Name: "B", GroupType: model.EmployeeGroup, Active: true}
	for _, g := range []*model.Group{a, b} {
		if err := r.Create(ctx, g); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	b.Active = false
	if err := r.Update(ctx, b); err != nil {
		t.Fatalf("Update: %v", err)
	}

	active, err := r.List(ctx, GroupFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Fatalf("unexpected active groups: %+v", active)
	}
	employees, err := r.List(ctx, GroupFilter{Type: model.EmployeeGroup})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(employees) != 1 || employees[0].Active {
		t.Fatalf("unexpected employee groups: %+v", employees)
	}
	if _, err := r.GetByID(ctx, 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTemplates_CreateDefaultsType(t *testing.T) {
	ctx := context.Background()
	r := NewSQLTemplateRepo(openTestDB(t))

	tpl := &model.Template{Name: "welcome", Body: "Hi {name}", Active: true}
	if err := r.Create(ctx, tpl); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tpl.TemplateType != model.DefaultTemplateType {
		t.Fatalf("expected default type, got %q", tpl.TemplateType)
	}
	other := &model.Template{Name: "promo", Body: "Sale", TemplateType: "marketing", Active: false}
	if err := r.Create(ctx, other); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := r.GetByID(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Body != "Hi {name}" || got.Description != nil {
		t.Fatalf("unexpected template: %+v", got)
	}

	list, err := r.List(ctx, TemplateFilter{ActiveOnly: true})
	if err != nil || len(list) != 1 {
		t.Fatalf("List active: %d, %v", len(list), err)
	}
	list, err = r.List(ctx, TemplateFilter{Type: "marketing"})
	if err != nil || len(list) != 1 || list[0].ID != other.ID {
		t.Fatalf("List by type: %+v, %v", list, err)
	}
	n, err := r.CountActive(ctx)
	if err != nil || n != 1 {
		t.Fatalf("CountActive: %d, %v", n, err)
	}
}
