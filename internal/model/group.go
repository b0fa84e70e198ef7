package model

import "time"

type GroupType string

const (
	ClientGroup   GroupType = "client_group"
	EmployeeGroup GroupType = "employee_group"
	MixedGroup    GroupType = "mixed"
)

func (t GroupType) Valid() bool {
	switch t {
	case ClientGroup, EmployeeGroup, MixedGroup:
		return true
	}
	return false
}

// Group is a named set of contacts. ContactCount includes inactive members.
type Group struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	GroupType    GroupType `json:"group_type"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	ContactCount int       `json:"contact_count"`
}
