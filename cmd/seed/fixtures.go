package main

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/LeventeLantos/sms-dispatch/internal/apperr"
	"github.com/LeventeLantos/sms-dispatch/internal/repo"
	"github.com/LeventeLantos/sms-dispatch/internal/service"
)

type fixtures struct {
	Contacts  []contactFixture  `yaml:"contacts"`
	Groups    []groupFixture    `yaml:"groups"`
	Templates []templateFixture `yaml:"templates"`
}

type contactFixture struct {
	Name        string `yaml:"name"`
	PhoneNumber string `yaml:"phone_number"`
	ContactType string `yaml:"contact_type"`
	Email       string `yaml:"email"`
	Company     string `yaml:"company"`
	Position    string `yaml:"position"`
}

type groupFixture struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	GroupType   string   `yaml:"group_type"`
	Members     []string `yaml:"members"`
}

type templateFixture struct {
	Name         string `yaml:"name"`
	Template     string `yaml:"template"`
	Description  string `yaml:"description"`
	TemplateType string `yaml:"template_type"`
}

type summary struct {
	Contacts  int
	Groups    int
	Members   int
	Templates int
}

func parseFixtures(data []byte) (*fixtures, error) {
	var f fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	known := make(map[string]bool, len(f.Contacts))
	for _, c := range f.Contacts {
		known[c.PhoneNumber] = true
	}
	for i, g := range f.Groups {
		if g.Name == "" {
			return nil, fmt.Errorf("group %d: name is required", i)
		}
		for _, phone := range g.Members {
			if !known[phone] {
				return nil, fmt.Errorf("group %s: unknown member %s", g.Name, phone)
			}
		}
	}
	return &f, nil
}

// optional maps "" to nil so blank YAML fields stay NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// apply loads fixtures through the services. Contacts that already exist by
// phone number are reused, so members still resolve on a second run.
func apply(ctx context.Context, store *repo.Store, f *fixtures) (summary, error) {
	var sum summary
	contacts := service.NewContactService(store, nil)
	groups := service.NewGroupService(store, nil)
	templates := service.NewTemplateService(store, nil)

	byPhone := make(map[string]int64, len(f.Contacts))
	for _, cf := range f.Contacts {
		c, err := contacts.Create(ctx, service.ContactInput{
			Name:        optional(cf.Name),
			PhoneNumber: optional(cf.PhoneNumber),
			ContactType: optional(cf.ContactType),
			Email:       optional(cf.Email),
			Company:     optional(cf.Company),
			Position:    optional(cf.Position),
		})
		switch {
		case err == nil:
			byPhone[c.PhoneNumber] = c.ID
			sum.Contacts++
		case apperr.KindOf(err) == apperr.KindConflict:
			existing, ferr := store.Contacts.FindByPhone(ctx, cf.PhoneNumber)
			if ferr != nil {
				return sum, fmt.Errorf("find contact %s: %w", cf.PhoneNumber, ferr)
			}
			byPhone[cf.PhoneNumber] = existing.ID
		default:
			return sum, fmt.Errorf("create contact %s: %w", cf.Name, err)
		}
	}

	for _, gf := range f.Groups {
		g, err := groups.Create(ctx, service.GroupInput{
			Name:        optional(gf.Name),
			Description: optional(gf.Description),
			GroupType:   optional(gf.GroupType),
		})
		if err != nil {
			return sum, fmt.Errorf("create group %s: %w", gf.Name, err)
		}
		sum.Groups++

		for _, phone := range gf.Members {
			id, ok := byPhone[phone]
			if !ok {
				return sum, fmt.Errorf("group %s: unknown member %s", gf.Name, phone)
			}
			if _, _, err := groups.AddMember(ctx, g.ID, id); err != nil {
				return sum, fmt.Errorf("group %s: add %s: %w", gf.Name, phone, err)
			}
			sum.Members++
		}
	}

	for _, tf := range f.Templates {
		_, err := templates.Create(ctx, service.TemplateInput{
			Name:         optional(tf.Name),
			Template:     optional(tf.Template),
			Description:  optional(tf.Description),
			TemplateType: optional(tf.TemplateType),
		})
		if err != nil {
			return sum, fmt.Errorf("create template %s: %w", tf.Name, err)
		}
		sum.Templates++
	}

	return sum, nil
}
