package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"isp_billing_panel/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = 5 * time.Minute

// Sweeper is the single operation the daily timer triggers.
type Sweeper interface {
	Run(ctx context.Context) (app.SweepSummary, error)
}

// Purger drops expired sessions. Optional.
type Purger interface {
	Purge() int
}

type SweepScheduler struct {
	cronEngine     *cron.Cron
	sweeper        Sweeper
	purger         Purger
	logger         *logrus.Entry
	cronSpecSweep  string
	cronSpecPurger string
}

// NewSweepScheduler runs the sweep on cronSpecSweep, evaluated in loc.
func NewSweepScheduler(sweeper Sweeper, purger Purger, loc *time.Location, cronSpecSweep string, logger *logrus.Entry) *SweepScheduler {
	return &SweepScheduler{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger{logger})),
		),
		sweeper:        sweeper,
		purger:         purger,
		logger:         logger,
		cronSpecSweep:  cronSpecSweep,
		cronSpecPurger: "@every 1h",
	}
}

func (s *SweepScheduler) Start() error {
	s.logger.Info("Starting sweep scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecSweep, s.runSweep); err != nil {
		return fmt.Errorf("could not add daily sweep job %q: %w", s.cronSpecSweep, err)
	}

	if s.purger != nil {
		_, err := s.cronEngine.AddFunc(s.cronSpecPurger, func() {
			if n := s.purger.Purge(); n > 0 {
				s.logger.WithField("removed", n).Info("Expired sessions purged")
			}
		})
		if err != nil {
			return fmt.Errorf("could not add session purge job: %w", err)
		}
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpecSweep).Info("Sweep scheduler started")
	return nil
}

func (s *SweepScheduler) runSweep() {
	s.logger.Info("Cron job triggered for daily sweep.")
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	summary, err := s.sweeper.Run(ctx)
	switch {
	case errors.Is(err, app.ErrSweepInProgress):
		s.logger.Info("Scheduled sweep skipped, a manual sweep is running")
	case err != nil:
		s.logger.WithError(err).Error("Scheduled sweep failed")
	default:
		s.logger.Info(summary.Message())
	}
}

// Stop waits for a running sweep to finish.
func (s *SweepScheduler) Stop() {
	s.logger.Info("Stopping sweep scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Sweep scheduler gracefully stopped.")
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(toFields(keysAndValues)).Error(msg)
}

func toFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
