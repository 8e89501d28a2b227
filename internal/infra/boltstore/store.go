// Package boltstore keeps each collection as one JSON array inside a bbolt
// bucket, so every SaveAll is a single transaction.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"isp_billing_panel/internal/domain/client"
	"isp_billing_panel/internal/domain/notification"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketClients       = []byte("clients")
	bucketNotifications = []byte("notifications")
	keyAll              = []byte("all")
)

type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketClients, bucketNotifications} {
			if _, e := tx.CreateBucketIfNotExists(name); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bolt buckets: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Clients() *ClientRepository {
	return &ClientRepository{store: s}
}

func (s *Store) Notifications() *NotificationRepository {
	return &NotificationRepository{store: s}
}

func load[T any](ctx context.Context, s *Store, bucket []byte) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := []*T{}
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get(keyAll)
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &items)
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", bucket, err)
	}
	return items, nil
}

func save[T any](ctx context.Context, s *Store, bucket []byte, items []*T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if items == nil {
		items = []*T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(keyAll, b)
	})
}

type ClientRepository struct {
	store *Store
}

func (r *ClientRepository) LoadAll(ctx context.Context) ([]*client.Client, error) {
	return load[client.Client](ctx, r.store, bucketClients)
}

func (r *ClientRepository) SaveAll(ctx context.Context, clients []*client.Client) error {
	return save(ctx, r.store, bucketClients, clients)
}

type NotificationRepository struct {
	store *Store
}

func (r *NotificationRepository) LoadAll(ctx context.Context) ([]*notification.Notification, error) {
	return load[notification.Notification](ctx, r.store, bucketNotifications)
}

func (r *NotificationRepository) SaveAll(ctx context.Context, notifications []*notification.Notification) error {
	return save(ctx, r.store, bucketNotifications, notifications)
}
