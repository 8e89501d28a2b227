// Package smslog is the outbound SMS stand-in: every message that would go to
// an SMS gateway is appended to a log file, one JSON object per line.
package smslog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"isp_billing_panel/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

const Channel = "sms"

type Deliverer struct {
	out    *logrus.Logger
	closer io.Closer
}

// Open appends to the file at path, creating it and its directory if needed.
func Open(path string) (*Deliverer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sms log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open sms log %s: %w", path, err)
	}
	d := New(f)
	d.closer = f
	return d, nil
}

// New writes to w. Used directly in tests.
func New(w io.Writer) *Deliverer {
	out := logrus.New()
	out.SetOutput(w)
	out.SetLevel(logrus.InfoLevel)
	out.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	return &Deliverer{out: out}
}

func (d *Deliverer) Channel() string { return Channel }

func (d *Deliverer) Deliver(ctx context.Context, n *notification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields := logrus.Fields{
		"notification_id": n.ID,
		"kind":            n.Kind,
	}
	if n.ClientID != "" {
		fields["client_id"] = n.ClientID
		fields["client_name"] = n.ClientName
	}
	if !n.DueDate.IsZero() {
		fields["due_date"] = n.DueDate.String()
	}
	d.out.WithFields(fields).WithTime(n.Time).Info(n.Message)
	return nil
}

func (d *Deliverer) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
