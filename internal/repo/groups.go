package repo

import (
	"context"

	"github.com/LeventeLantos/sms-dispatch/internal/model"
)

type GroupFilter struct {
	Type       model.GroupType
	ActiveOnly bool
}

type GroupRepository interface {
	Create(ctx context.Context, g *model.Group) error
	GetByID(ctx context.Context, id int64) (*model.Group, error)
	List(ctx context.Context, f GroupFilter) ([]model.Group, error)
	Update(ctx context.Context, g *model.Group) error
	CountActive(ctx context.Context) (int64, error)

	// ListMembers returns every member of the group, active or not.
	ListMembers(ctx context.Context, groupID int64) ([]model.Contact, error)
	// AddMember reports false when the contact already belongs to the group.
	AddMember(ctx context.Context, groupID, contactID int64) (bool, error)
	// RemoveMember reports false when the contact was not a member.
	RemoveMember(ctx context.Context, groupID, contactID int64) (bool, error)
	GroupsForContacts(ctx context.Context, contactIDs []int64) (map[int64][]model.Group, error)
}
