package provider

import (
	"context"
	"fmt"
)

// Outbound is one text message handed to a gateway.
type Outbound struct {
	From string
	To   string
	Body string
}

// Receipt is what a gateway reports after accepting a message.
type Receipt struct {
	MessageID string
	Status    string
}

type Provider interface {
	Name() string
	Send(ctx context.Context, msg Outbound) (Receipt, error)
	// Fetch returns the gateway's current status for a message it accepted.
	Fetch(ctx context.Context, messageID string) (string, error)
}

// Error is a rejection reported by a gateway.
type Error struct {
	Code    int
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
	}
	return e.Message
}
