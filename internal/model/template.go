package model

import "time"

const DefaultTemplateType = "general"

type Template struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Body         string    `json:"template"`
	Description  *string   `json:"description"`
	TemplateType string    `json:"template_type"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
