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

type TemplateInput struct {
	Name         *string `json:"name"`
	Template     *string `json:"template"`
	Description  *string `json:"description"`
	TemplateType *string `json:"template_type"`
}

type TemplateService struct {
	store *repo.Store
	log   *logger.Logger
}

func NewTemplateService(store *repo.Store, log *logger.Logger) *TemplateService {
	if log == nil {
		log = logger.Nop()
	}
	return &TemplateService{store: store, log: log.With("service", "TemplateService")}
}

func (s *TemplateService) Create(ctx context.Context, in TemplateInput) (*model.Template, error) {
	if err := required(field{"name", in.Name}, field{"template", in.Template}); err != nil {
		return nil, err
	}

	t := &model.Template{
		Name:         *in.Name,
		Body:         *in.Template,
		Description:  in.Description,
		TemplateType: model.DefaultTemplateType,
		Active:       true,
	}
	if in.TemplateType != nil && *in.TemplateType != "" {
		t.TemplateType = *in.TemplateType
	}
	if err := s.store.Templates.Create(ctx, t); err != nil {
		return nil, apperr.Internal(fmt.Errorf("create template: %w", err))
	}
	s.log.Info("template created", "template_id", t.ID)
	return t, nil
}

func (s *TemplateService) Get(ctx context.Context, id int64) (*model.Template, error) {
	t, err := s.store.Templates.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound(fmt.Sprintf("Template with ID %d not found", id))
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("get template: %w", err))
	}
	return t, nil
}

// Body resolves the text of an active template for sending.
func (s *TemplateService) Body(ctx context.Context, id int64) (string, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !t.Active {
		return "", apperr.Validation(fmt.Sprintf("Template %s is not active", t.Name))
	}
	return t.Body, nil
}

func (s *TemplateService) List(ctx context.Context, f repo.TemplateFilter) ([]model.Template, error) {
	templates, err := s.store.Templates.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list templates: %w", err))
	}
	return templates, nil
}
