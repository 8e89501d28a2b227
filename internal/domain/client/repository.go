package client

import (
	"context"
)

// Repository persists the whole client collection at once.
// SaveAll replaces the stored collection atomically, preserving order.
type Repository interface {
	LoadAll(ctx context.Context) ([]*Client, error)
	SaveAll(ctx context.Context, clients []*Client) error
}
