package app

import (
	"time"

	"isp_billing_panel/internal/domain/notification"
)

// Recorder receives operational counters. infra/metrics provides the Prometheus one.
type Recorder interface {
	SweepFinished(elapsed time.Duration, newlyOverdue int, err error)
	NotificationEmitted(kind notification.Kind)
	DeliveryAttempted(channel string, delivered bool)
}

type nopRecorder struct{}

func (nopRecorder) SweepFinished(time.Duration, int, error) {}
func (nopRecorder) NotificationEmitted(notification.Kind)   {}
func (nopRecorder) DeliveryAttempted(string, bool)          {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
