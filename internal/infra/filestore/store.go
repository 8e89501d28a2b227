// Package filestore keeps clients and notifications as JSON files under a data
// directory, one file per collection.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"isp_billing_panel/internal/domain/client"
	"isp_billing_panel/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

const (
	ClientsFile       = "clients.json"
	NotificationsFile = "notifications.json"
)

// ClientRepository implements client.Repository on clients.json.
type ClientRepository struct {
	file collection[client.Client]
}

func NewClientRepository(dataDir string) *ClientRepository {
	return &ClientRepository{file: collection[client.Client]{path: filepath.Join(dataDir, ClientsFile)}}
}

func (r *ClientRepository) LoadAll(ctx context.Context) ([]*client.Client, error) {
	return r.file.load(ctx)
}

func (r *ClientRepository) SaveAll(ctx context.Context, clients []*client.Client) error {
	return r.file.save(ctx, clients)
}

// NotificationRepository implements notification.Repository on notifications.json.
type NotificationRepository struct {
	file collection[notification.Notification]
}

func NewNotificationRepository(dataDir string) *NotificationRepository {
	return &NotificationRepository{file: collection[notification.Notification]{path: filepath.Join(dataDir, NotificationsFile)}}
}

func (r *NotificationRepository) LoadAll(ctx context.Context) ([]*notification.Notification, error) {
	return r.file.load(ctx)
}

func (r *NotificationRepository) SaveAll(ctx context.Context, notifications []*notification.Notification) error {
	return r.file.save(ctx, notifications)
}

// EnsureFiles prepares dataDir on startup: the directory is created and both
// collection files exist and hold a JSON array.
func EnsureFiles(dataDir string, logger *logrus.Entry) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dataDir, err)
	}
	if err := (collection[client.Client]{path: filepath.Join(dataDir, ClientsFile)}).ensure(logger); err != nil {
		return err
	}
	return (collection[notification.Notification]{path: filepath.Join(dataDir, NotificationsFile)}).ensure(logger)
}
