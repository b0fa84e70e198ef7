package service

import (
	"github.com/LeventeLantos/sms-dispatch/internal/model"
)

// SimulatedNote is stored and returned when no provider is configured.
const SimulatedNote = "Simulated send - provider not configured"

type SendResult struct {
	Success           bool         `json:"success"`
	MessageID         *int64       `json:"message_id,omitempty"`
	ProviderMessageID string       `json:"provider_message_id,omitempty"`
	Status            model.Status `json:"status"`
	Error             string       `json:"error,omitempty"`
	Note              string       `json:"note,omitempty"`
}

type BulkItem struct {
	PhoneNumber string     `json:"phone_number"`
	Result      SendResult `json:"result"`
}

type BulkResult struct {
	Success    bool       `json:"success"`
	TotalSent  int        `json:"total_sent"`
	Successful int        `json:"successful"`
	Failed     int        `json:"failed"`
	Results    []BulkItem `json:"results"`
	GroupID    *int64     `json:"group_id,omitempty"`
	GroupName  string     `json:"group_name,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type StatusResult struct {
	Success bool           `json:"success"`
	Message *model.Message `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	// NotFound distinguishes a missing message from a store failure.
	NotFound bool `json:"-"`
}

type HistoryQuery struct {
	Limit       int
	Offset      int
	ContactType model.ContactType
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

type HistoryPage struct {
	Success    bool            `json:"success"`
	Messages   []model.Message `json:"messages"`
	Pagination Pagination      `json:"pagination"`
	Error      string          `json:"error,omitempty"`
}

type Overview struct {
	Provider        string `json:"provider"`
	Simulated       bool   `json:"simulated"`
	FromNumber      string `json:"from_number"`
	TotalMessages   int64  `json:"total_messages"`
	ActiveContacts  int64  `json:"active_contacts"`
	ActiveGroups    int64  `json:"active_groups"`
	ActiveTemplates int64  `json:"active_templates"`
}
