package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LeventeLantos/sms-dispatch/internal/apperr"
	"github.com/LeventeLantos/sms-dispatch/internal/logger"
	"github.com/LeventeLantos/sms-dispatch/internal/model"
	"github.com/LeventeLantos/sms-dispatch/internal/repo"
)

// ContactInput carries create and partial-update fields. Nil means "not given".
type ContactInput struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
	ContactType *string `json:"contact_type"`
	Email       *string `json:"email"`
	Company     *string `json:"company"`
	Position    *string `json:"position"`
	Active      *bool   `json:"active"`
}

type ContactService struct {
	store *repo.Store
	log   *logger.Logger
}

func NewContactService(store *repo.Store, log *logger.Logger) *ContactService {
	if log == nil {
		log = logger.Nop()
	}
	return &ContactService{store: store, log: log.With("service", "ContactService")}
}

func (s *ContactService) Create(ctx context.Context, in ContactInput) (*model.Contact, error) {
	if err := required(
		field{"name", in.Name},
		field{"phone_number", in.PhoneNumber},
		field{"contact_type", in.ContactType},
	); err != nil {
		return nil, err
	}
	ct := model.ContactType(*in.ContactType)
	if !ct.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("contact_type must be one of %s, %s", model.Client, model.Employee))
	}

	// Not atomic: two concurrent creates can both pass this check.
	_, err := s.store.Contacts.FindByPhone(ctx, *in.PhoneNumber)
	switch {
	case err == nil:
		return nil, apperr.Conflict("Contact with this phone number already exists")
	case !errors.Is(err, repo.ErrNotFound):
		return nil, apperr.Internal(fmt.Errorf("find contact by phone: %w", err))
	}

	c := &model.Contact{
		Name:        *in.Name,
		PhoneNumber: *in.PhoneNumber,
		ContactType: ct,
		Email:       in.Email,
		Company:     in.Company,
		Position:    in.Position,
		Active:      true,
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	if err := s.store.Contacts.Create(ctx, c); err != nil {
		return nil, apperr.Internal(fmt.Errorf("create contact: %w", err))
	}
	s.log.Info("contact created", "contact_id", c.ID)
	return c, nil
}

func (s *ContactService) Get(ctx context.Context, id int64) (*model.Contact, error) {
	c, err := s.store.Contacts.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound(fmt.Sprintf("Contact with ID %d not found", id))
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("get contact: %w", err))
	}

	groups, err := s.store.Groups.GroupsForContacts(ctx, []int64{c.ID})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load contact groups: %w", err))
	}
	c.Groups = groups[c.ID]
	return c, nil
}

// List returns contacts with the groups each one belongs to.
func (s *ContactService) List(ctx context.Context, f repo.ContactFilter) ([]model.Contact, error) {
	contacts, err := s.store.Contacts.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list contacts: %w", err))
	}

	ids := make([]int64, len(contacts))
	for i, c := range contacts {
		ids[i] = c.ID
	}
	groups, err := s.store.Groups.GroupsForContacts(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load contact groups: %w", err))
	}
	for i := range contacts {
		contacts[i].Groups = groups[contacts[i].ID]
	}
	return contacts, nil
}

// Update applies the given fields. The phone number is not re-checked for
// uniqueness.
func (s *ContactService) Update(ctx context.Context, id int64, in ContactInput) (*model.Contact, error) {
	c, err := s.store.Contacts.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound(fmt.Sprintf("Contact with ID %d not found", id))
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("get contact: %w", err))
	}

	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.PhoneNumber != nil {
		c.PhoneNumber = *in.PhoneNumber
	}
	if in.ContactType != nil {
		ct := model.ContactType(*in.ContactType)
		if !ct.Valid() {
			return nil, apperr.Validation(fmt.Sprintf("contact_type must be one of %s, %s", model.Client, model.Employee))
		}
		c.ContactType = ct
	}
	if in.Email != nil {
		c.Email = in.Email
	}
	if in.Company != nil {
		c.Company = in.Company
	}
	if in.Position != nil {
		c.Position = in.Position
	}
	if in.Active != nil {
		c.Active = *in.Active
	}

	if err := s.store.Contacts.Update(ctx, c); err != nil {
		return nil, apperr.Internal(fmt.Errorf("update contact: %w", err))
	}
	return c, nil
}

// Deactivate soft-deletes a contact. Group memberships are kept.
func (s *ContactService) Deactivate(ctx context.Context, id int64) error {
	err := s.store.Contacts.SetActive(ctx, id, false)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound(fmt.Sprintf("Contact with ID %d not found", id))
	}
	if err != nil {
		return apperr.Internal(fmt.Errorf("deactivate contact: %w", err))
	}
	s.log.Info("contact deactivated", "contact_id", id)
	return nil
}

type field struct {
	name  string
	value *string
}

// required fails on the first field that is missing or blank.
func required(fields ...field) error {
	for _, f := range fields {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			return apperr.Validation(f.name + " is required")
		}
	}
	return nil
}
