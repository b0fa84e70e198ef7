package cache

import (
	"context"
	"time"
)

// MessageCache keeps a short-lived projection of messages that reached the provider.
type MessageCache interface {
	StoreSent(ctx context.Context, messageID int64, providerMessageID, status string, sentAt time.Time) error
	StoreStatus(ctx context.Context, messageID int64, status string) error
}
