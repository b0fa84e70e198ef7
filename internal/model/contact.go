package model

import "time"

type ContactType string

const (
	Client   ContactType = "client"
	Employee ContactType = "employee"
)

func (t ContactType) Valid() bool {
	return t == Client || t == Employee
}

type Contact struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	PhoneNumber string      `json:"phone_number"`
	ContactType ContactType `json:"contact_type"`
	Email       *string     `json:"email"`
	Company     *string     `json:"company"`
	Position    *string     `json:"position"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
	Groups      []Group     `json:"groups,omitempty"`
}
