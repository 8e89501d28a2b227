package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"isp_billing_panel/internal/domain/billing"
	"isp_billing_panel/internal/domain/client"
	"isp_billing_panel/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// SweepSummary describes one pass over the client collection.
type SweepSummary struct {
	Checked      int       `json:"checked"`
	Skipped      int       `json:"skipped"`
	NewlyOverdue int       `json:"newlyOverdue"`
	Reactivated  int       `json:"reactivated"`
	RanAt        time.Time `json:"ranAt"`
}

func (s SweepSummary) Message() string {
	return fmt.Sprintf("Checked %d clients, %d newly overdue", s.Checked, s.NewlyOverdue)
}

// SweepService reclassifies every client and emits one notification per
// Active -> Inactive transition. Re-running it without payments in between
// emits nothing new. Manual and scheduled triggers both call Run.
type SweepService struct {
	clients  *ClientService
	notifier Notifier
	calendar *billing.Calendar
	recorder Recorder
	logger   *logrus.Entry
	guard    *semaphore.Weighted
}

func NewSweepService(clients *ClientService, notifier Notifier, calendar *billing.Calendar, recorder Recorder, logger *logrus.Entry) *SweepService {
	return &SweepService{
		clients:  clients,
		notifier: notifier,
		calendar: calendar,
		recorder: recorderOrNop(recorder),
		logger:   logger,
		guard:    semaphore.NewWeighted(1),
	}
}

// Run performs one sweep. It fails fast with ErrSweepInProgress when another
// sweep holds the guard.
func (s *SweepService) Run(ctx context.Context) (SweepSummary, error) {
	if !s.guard.TryAcquire(1) {
		s.logger.Warn("Sweep requested while another sweep is running; skipping")
		return SweepSummary{}, ErrSweepInProgress
	}
	defer s.guard.Release(1)

	started := time.Now()
	summary, err := s.sweep(ctx)
	s.recorder.SweepFinished(time.Since(started), summary.NewlyOverdue, err)
	if err != nil {
		s.logger.WithError(err).Error("Sweep failed")
		return summary, err
	}

	s.logger.WithFields(logrus.Fields{
		"checked":       summary.Checked,
		"skipped":       summary.Skipped,
		"newly_overdue": summary.NewlyOverdue,
		"reactivated":   summary.Reactivated,
	}).Info("Sweep completed")
	return summary, nil
}

func (s *SweepService) sweep(ctx context.Context) (SweepSummary, error) {
	today := s.calendar.Today()
	summary := SweepSummary{RanAt: s.calendar.Now()}
	var overdue []transition

	err := s.clients.update(ctx, func(clients []*client.Client) ([]*client.Client, bool, error) {
		dirty := false
		for _, c := range clients {
			if c.DueDate.IsZero() {
				summary.Skipped++
				continue
			}
			summary.Checked++

			previous, changed := c.Reclassify(today)
			if !changed {
				continue
			}
			dirty = true
			if c.Status == billing.StatusInactive {
				overdue = append(overdue, transition{client: c.Clone(), previous: previous})
			} else {
				summary.Reactivated++
				s.logger.WithFields(logrus.Fields{
					"client_id":       c.ID,
					"previous_status": previous,
				}).Info("Client back to active by date")
			}
		}
		return clients, dirty, nil
	})
	if err != nil {
		// Nothing was emitted; the next run re-derives the same transitions.
		return summary, err
	}
	summary.NewlyOverdue = len(overdue)

	var (
		emitErrs []error
		failed   []transition
	)
	for _, t := range overdue {
		c := t.client
		n := &notification.Notification{
			Kind:       notification.KindOverdue,
			ClientID:   c.ID,
			ClientName: c.Name,
			DueDate:    c.DueDate,
			Message:    fmt.Sprintf("%s is overdue since %s", c.Name, c.DueDate),
		}
		if err := s.notifier.Emit(ctx, n); err != nil {
			emitErrs = append(emitErrs, fmt.Errorf("overdue notification for client %s: %w", c.ID, err))
			failed = append(failed, t)
		}
	}
	if len(failed) > 0 {
		summary.NewlyOverdue -= len(failed)
		if err := s.restore(ctx, failed); err != nil {
			emitErrs = append(emitErrs, err)
		}
	}
	return summary, errors.Join(emitErrs...)
}

type transition struct {
	client   *client.Client
	previous billing.Status
}

// restore puts back the pre-sweep status of clients whose overdue notification
// was not stored, so the next sweep finds the transition again. Clients paid or
// edited in the meantime are left as they are.
func (s *SweepService) restore(ctx context.Context, failed []transition) error {
	return s.clients.update(ctx, func(clients []*client.Client) ([]*client.Client, bool, error) {
		dirty := false
		for _, t := range failed {
			idx := indexOf(clients, t.client.ID)
			if idx < 0 {
				continue
			}
			c := clients[idx]
			if c.Status != billing.StatusInactive || c.DueDate != t.client.DueDate {
				continue
			}
			c.Status = t.previous
			dirty = true
			s.logger.WithField("client_id", c.ID).Warn("Overdue notification not stored; status restored for the next sweep")
		}
		return clients, dirty, nil
	})
}
