// internal/app/notification_service.go
package app

import (
	"context"
	"sync"
	"time"

	"isp_billing_panel/internal/domain/billing"
	"isp_billing_panel/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultDeliveryTimeout = 10 * time.Second

// Notifier is the emission side of the notification sink, as seen by domain operations.
type Notifier interface {
	Emit(ctx context.Context, n *notification.Notification) error
}

// Deliverer pushes a notification through one best-effort external channel.
type Deliverer interface {
	Channel() string
	Deliver(ctx context.Context, n *notification.Notification) error
}

// NotificationService owns notification history: append with bounded retention,
// live fan-out, and advisory external delivery.
type NotificationService struct {
	repo            notification.Repository
	publisher       notification.Publisher
	deliverers      []Deliverer
	calendar        *billing.Calendar
	recorder        Recorder
	logger          *logrus.Entry
	deliveryTimeout time.Duration

	mu       sync.Mutex // serializes read-modify-write of the history collection
	inflight sync.WaitGroup
}

func NewNotificationService(
	repo notification.Repository,
	publisher notification.Publisher,
	deliverers []Deliverer,
	calendar *billing.Calendar,
	recorder Recorder,
	deliveryTimeout time.Duration,
	logger *logrus.Entry,
) *NotificationService {
	if deliveryTimeout <= 0 {
		deliveryTimeout = defaultDeliveryTimeout
	}
	return &NotificationService{
		repo:            repo,
		publisher:       publisher,
		deliverers:      deliverers,
		calendar:        calendar,
		recorder:        recorderOrNop(recorder),
		logger:          logger,
		deliveryTimeout: deliveryTimeout,
	}
}

// Emit stores n at the head of history, publishes it to live subscribers and
// starts external delivery in the background. Only storage failures are returned.
func (s *NotificationService) Emit(ctx context.Context, n *notification.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Time.IsZero() {
		n.Time = s.calendar.Now()
	}

	if err := s.prepend(ctx, n); err != nil {
		s.logger.WithError(err).WithField("client_id", n.ClientID).Error("Failed to store notification")
		return err
	}
	s.recorder.NotificationEmitted(n.Kind)
	s.logger.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"kind":            n.Kind,
		"client_id":       n.ClientID,
	}).Info("Notification emitted")

	if s.publisher != nil {
		s.publisher.Publish(n)
	}
	s.dispatch(n)
	return nil
}

func (s *NotificationService) prepend(ctx context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.repo.LoadAll(ctx)
	if err != nil {
		return persistenceError("load notifications", err)
	}
	updated := make([]*notification.Notification, 0, len(history)+1)
	updated = append(updated, n)
	updated = append(updated, history...)
	if len(updated) > notification.Retention {
		updated = updated[:notification.Retention]
	}
	if err := s.repo.SaveAll(ctx, updated); err != nil {
		return persistenceError("save notifications", err)
	}
	return nil
}

func (s *NotificationService) dispatch(n *notification.Notification) {
	if len(s.deliverers) == 0 {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.deliveryTimeout)
		defer cancel()
		s.DeliverExternally(ctx, n)
	}()
}

// DeliverExternally tries every configured channel once. Failures are logged and
// reported in the results, never returned as errors.
func (s *NotificationService) DeliverExternally(ctx context.Context, n *notification.Notification) []notification.DeliveryResult {
	results := make([]notification.DeliveryResult, 0, len(s.deliverers))
	for _, d := range s.deliverers {
		result := notification.DeliveryResult{Channel: d.Channel(), Delivered: true}
		if err := d.Deliver(ctx, n); err != nil {
			result.Delivered = false
			result.Error = err.Error()
			s.logger.WithError(deliveryError(d.Channel(), err)).WithFields(logrus.Fields{
				"notification_id": n.ID,
				"channel":         d.Channel(),
			}).Warn("External delivery failed")
		} else {
			s.logger.WithFields(logrus.Fields{
				"notification_id": n.ID,
				"channel":         d.Channel(),
			}).Debug("External delivery succeeded")
		}
		s.recorder.DeliveryAttempted(result.Channel, result.Delivered)
		results = append(results, result)
	}
	return results
}

// SendTest pushes a throwaway notification through every channel and waits for the outcome.
// Nothing is stored or broadcast.
func (s *NotificationService) SendTest(ctx context.Context) []notification.DeliveryResult {
	n := &notification.Notification{
		ID:         uuid.NewString(),
		Kind:       notification.KindTest,
		Time:       s.calendar.Now(),
		ClientName: "Billing panel",
		Message:    "Test notification: external delivery is working.",
	}
	ctx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
	defer cancel()
	return s.DeliverExternally(ctx, n)
}

// List returns history newest first.
func (s *NotificationService) List(ctx context.Context) ([]*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, persistenceError("load notifications", err)
	}
	if history == nil {
		history = []*notification.Notification{}
	}
	return history, nil
}

// Clear empties history irreversibly.
func (s *NotificationService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveAll(ctx, []*notification.Notification{}); err != nil {
		return persistenceError("clear notifications", err)
	}
	s.logger.Info("Notification history cleared")
	return nil
}

// Wait blocks until background deliveries started so far have finished.
func (s *NotificationService) Wait() {
	s.inflight.Wait()
}
