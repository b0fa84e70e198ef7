package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeventeLantos/sms-dispatch/internal/apperr"
	"github.com/LeventeLantos/sms-dispatch/internal/logger"
	"github.com/LeventeLantos/sms-dispatch/internal/model"
	"github.com/LeventeLantos/sms-dispatch/internal/repo"
)

type GroupInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	GroupType   *string `json:"group_type"`
	Active      *bool   `json:"active"`
}

type GroupService struct {
	store *repo.Store
	log   *logger.Logger
}

func NewGroupService(store *repo.Store, log *logger.Logger) *GroupService {
	if log == nil {
		log = logger.Nop()
	}
	return &GroupService{store: store, log: log.With("service", "GroupService")}
}

func (s *GroupService) Create(ctx context.Context, in GroupInput) (*model.Group, error) {
	if err := required(field{"name", in.Name}, field{"group_type", in.GroupType}); err != nil {
		return nil, err
	}
	gt, err := groupType(*in.GroupType)
	if err != nil {
		return nil, err
	}

	g := &model.Group{
		Name:        *in.Name,
		Description: in.Description,
		GroupType:   gt,
		Active:      true,
	}
	if in.Active != nil {
		g.Active = *in.Active
	}
	if err := s.store.Groups.Create(ctx, g); err != nil {
		return nil, apperr.Internal(fmt.Errorf("create group: %w", err))
	}
	s.log.Info("group created", "group_id", g.ID)
	return g, nil
}

func (s *GroupService) Get(ctx context.Context, id int64) (*model.Group, error) {
	g, err := s.store.Groups.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, groupNotFound(id)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("get group: %w", err))
	}
	return g, nil
}

func (s *GroupService) List(ctx context.Context, f repo.GroupFilter) ([]model.Group, error) {
	groups, err := s.store.Groups.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list groups: %w", err))
	}
	return groups, nil
}

func (s *GroupService) Update(ctx context.Context, id int64, in GroupInput) (*model.Group, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		g.Name = *in.Name
	}
	if in.Description != nil {
		g.Description = in.Description
	}
	if in.GroupType != nil {
		gt, err := groupType(*in.GroupType)
		if err != nil {
			return nil, err
		}
		g.GroupType = gt
	}
	if in.Active != nil {
		g.Active = *in.Active
	}

	if err := s.store.Groups.Update(ctx, g); err != nil {
		return nil, apperr.Internal(fmt.Errorf("update group: %w", err))
	}
	return g, nil
}

// Deactivate soft-deletes a group. Members are kept.
func (s *GroupService) Deactivate(ctx context.Context, id int64) error {
	active := false
	if _, err := s.Update(ctx, id, GroupInput{Active: &active}); err != nil {
		return err
	}
	s.log.Info("group deactivated", "group_id", id)
	return nil
}

func (s *GroupService) Members(ctx context.Context, id int64) ([]model.Contact, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	members, err := s.store.Groups.ListMembers(ctx, id)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list members: %w", err))
	}
	return members, nil
}

// AddMember returns the group and contact so callers can describe the change.
func (s *GroupService) AddMember(ctx context.Context, groupID, contactID int64) (*model.Group, *model.Contact, error) {
	g, c, err := s.pair(ctx, groupID, contactID)
	if err != nil {
		return nil, nil, err
	}

	added, err := s.store.Groups.AddMember(ctx, groupID, contactID)
	if err != nil {
		return nil, nil, apperr.Internal(fmt.Errorf("add member: %w", err))
	}
	if !added {
		return nil, nil, apperr.Conflict("Contact is already in this group")
	}
	s.log.Info("member added", "group_id", groupID, "contact_id", contactID)
	return g, c, nil
}

func (s *GroupService) RemoveMember(ctx context.Context, groupID, contactID int64) (*model.Group, *model.Contact, error) {
	g, c, err := s.pair(ctx, groupID, contactID)
	if err != nil {
		return nil, nil, err
	}

	removed, err := s.store.Groups.RemoveMember(ctx, groupID, contactID)
	if err != nil {
		return nil, nil, apperr.Internal(fmt.Errorf("remove member: %w", err))
	}
	if !removed {
		return nil, nil, apperr.NotFound("Contact is not in this group")
	}
	s.log.Info("member removed", "group_id", groupID, "contact_id", contactID)
	return g, c, nil
}

func (s *GroupService) pair(ctx context.Context, groupID, contactID int64) (*model.Group, *model.Contact, error) {
	g, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.store.Contacts.GetByID(ctx, contactID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, apperr.NotFound(fmt.Sprintf("Contact with ID %d not found", contactID))
	}
	if err != nil {
		return nil, nil, apperr.Internal(fmt.Errorf("get contact: %w", err))
	}
	return g, c, nil
}

func groupType(raw string) (model.GroupType, error) {
	gt := model.GroupType(raw)
	if !gt.Valid() {
		return "", apperr.Validation(fmt.Sprintf("group_type must be one of %s, %s, %s",
			model.ClientGroup, model.EmployeeGroup, model.MixedGroup))
	}
	return gt, nil
}

func groupNotFound(id int64) error {
	return apperr.NotFound(fmt.Sprintf("Group with ID %d not found", id))
}
