// internal/domain/notification/repository.go
package notification

import (
	"context"
)

// Repository persists notification history as one ordered collection (newest first).
type Repository interface {
	LoadAll(ctx context.Context) ([]*Notification, error)
	SaveAll(ctx context.Context, notifications []*Notification) error
}

// Publisher fans a freshly stored notification out to live viewers.
// Publish must not block on slow subscribers.
type Publisher interface {
	Publish(n *Notification)
}
