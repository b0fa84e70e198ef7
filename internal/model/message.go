package model

import (
	"strings"
	"time"
)

type Status string

const (
	Pending   Status = "pending"
	Sent      Status = "sent"
	Failed    Status = "failed"
	Delivered Status = "delivered"
)

// SimulatedPrefix marks provider ids synthesized when no provider is configured.
const SimulatedPrefix = "sim_"

type Message struct {
	ID                int64     `json:"id"`
	FromNumber        string    `json:"from_number"`
	ToNumber          string    `json:"to_number"`
	Body              string    `json:"message"`
	Status            Status    `json:"status"`
	ProviderMessageID *string   `json:"provider_message_id"`
	ProviderResponse  *string   `json:"provider_response,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Reconcilable reports whether the provider can be asked for a fresher status.
func (m Message) Reconcilable() bool {
	if m.ProviderMessageID == nil || *m.ProviderMessageID == "" {
		return false
	}
	return !strings.HasPrefix(*m.ProviderMessageID, SimulatedPrefix)
}
