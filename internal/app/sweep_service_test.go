package app

import (
	"context"
	"testing"

	"isp_billing_panel/internal/domain/billing"
	"isp_billing_panel/internal/domain/client"
	"isp_billing_panel/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep_FlagsOverdueClientOnce(t *testing.T) {
	ctx := context.Background()
	f := newPanelFixture("2024-02-01")
	f.clientRepo.clients = []*client.Client{
		{ID: "a", Name: "Juan", Phone: "1", InstallDate: date("2024-01-01"), BillingCycle: 30,
			DueDate: date("2024-01-31"), Status: billing.StatusActive},
	}

	summary, err := f.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Checked)
	assert.Equal(t, 1, summary.NewlyOverdue)
	assert.Equal(t, "Checked 1 clients, 1 newly overdue", summary.Message())

	assert.Equal(t, billing.StatusInactive, f.clientRepo.stored()[0].Status)

	history, err := f.notification.List(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, notification.KindOverdue, history[0].Kind)
	assert.Equal(t, "a", history[0].ClientID)
	assert.Equal(t, "Juan", history[0].ClientName)
	assert.Equal(t, "2024-01-31", history[0].DueDate.String())
	assert.Equal(t, "Juan is overdue since 2024-01-31", history[0].Message)

	// Running again without a payment must not repeat the notification.
	summary, err = f.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.NewlyOverdue)

	history, err = f.notification.List(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSweep_PaymentClearsOverdue(t *testing.T) {
	ctx := context.Background()
	f := newPanelFixture("2024-02-01")
	f.clientRepo.clients = []*client.Client{
		{ID: "a", Name: "Juan", Phone: "1", BillingCycle: 30, DueDate: date("2024-01-31"), Status: billing.StatusActive},
	}

	_, err := f.sweep.Run(ctx)
	require.NoError(t, err)
	_, err = f.clients.RecordPayment(ctx, "a")
	require.NoError(t, err)

	summary, err := f.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.NewlyOverdue)

	history, err := f.notification.List(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, notification.KindPayment, history[0].Kind)
	assert.Equal(t, notification.KindOverdue, history[1].Kind)
}

func TestSweep_EmitsInCollectionOrder(t *testing.T) {
	ctx := context.Background()
	f := newPanelFixture("2024-03-01")
	f.clientRepo.clients = []*client.Client{
		{ID: "a", Name: "First", DueDate: date("2024-02-01"), Status: billing.StatusActive},
		{ID: "b", Name: "Fine", DueDate: date("2024-03-05"), Status: billing.StatusActive},
		{ID: "c", Name: "Second", DueDate: date("2024-02-15"), Status: billing.StatusActive},
	}

	summary, err := f.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.NewlyOverdue)

	require.Len(t, f.publisher.published, 2)
	assert.Equal(t, "a", f.publisher.published[0].ClientID)
	assert.Equal(t, "c", f.publisher.published[1].ClientID)
	assert.Equal(t, 1, f.clientRepo.saves)
}

func TestSweep_SkipsClientsWithoutDueDate(t *testing.T) {
	f := newPanelFixture("2024-03-01")
	f.clientRepo.clients = []*client.Client{
		{ID: "a", Name: "Legacy", Status: billing.StatusActive},
	}

	summary, err := f.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Checked)
	assert.Zero(t, f.clientRepo.saves)
	assert.Empty(t, f.publisher.published)
}

func TestSweep_ReactivationIsSilent(t *testing.T) {
	f := newPanelFixture("2024-02-01")
	f.clientRepo.clients = []*client.Client{
		{ID: "a", Name: "Edited", DueDate: date("2024-02-10"), Status: billing.StatusInactive},
	}

	summary, err := f.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Reactivated)
	assert.Zero(t, summary.NewlyOverdue)
	assert.Equal(t, billing.StatusActive, f.clientRepo.stored()[0].Status)
	assert.Empty(t, f.publisher.published)
}

func TestSweep_PersistenceFailureEmitsNothing(t *testing.T) {
	f := newPanelFixture("2024-02-01")
	f.clientRepo.clients = []*client.Client{
		{ID: "a", Name: "Juan", DueDate: date("2024-01-31"), Status: billing.StatusActive},
	}
	f.clientRepo.saveErr = errDiskFull

	_, err := f.sweep.Run(context.Background())
	require.ErrorIs(t, err, ErrPersistence)

	history, err := f.notification.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)

	// Once storage recovers the same transition is found again.
	f.clientRepo.saveErr = nil
	summary, err := f.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NewlyOverdue)
}

func TestSweep_NotificationStoreFailureKeepsTransition(t *testing.T) {
	ctx := context.Background()
	f := newPanelFixture("2024-02-01")
	f.clientRepo.clients = []*client.Client{
		{ID: "a", Name: "Juan", DueDate: date("2024-01-31"), Status: billing.StatusActive},
	}
	f.notifRepo.saveErr = errDiskFull

	summary, err := f.sweep.Run(ctx)
	require.ErrorIs(t, err, ErrPersistence)
	assert.Zero(t, summary.NewlyOverdue)
	assert.Equal(t, billing.StatusActive, f.clientRepo.stored()[0].Status)

	f.notifRepo.saveErr = nil
	summary, err = f.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NewlyOverdue)
	assert.Equal(t, billing.StatusInactive, f.clientRepo.stored()[0].Status)

	history, err := f.notification.List(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "a", history[0].ClientID)
}

func TestSweep_RestoreSkipsClientPaidMeanwhile(t *testing.T) {
	ctx := context.Background()
	f := newPanelFixture("2024-02-01")
	f.clientRepo.clients = []*client.Client{
		{ID: "a", Name: "Juan", DueDate: date("2024-03-01"), Status: billing.StatusActive},
	}

	err := f.sweep.restore(ctx, []transition{{
		client:   &client.Client{ID: "a", DueDate: date("2024-01-31"), Status: billing.StatusInactive},
		previous: billing.StatusActive,
	}})
	require.NoError(t, err)
	assert.Zero(t, f.clientRepo.saves)
}

func TestSweep_RejectsOverlappingRun(t *testing.T) {
	f := newPanelFixture("2024-02-01")

	require.True(t, f.sweep.guard.TryAcquire(1))
	_, err := f.sweep.Run(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)

	f.sweep.guard.Release(1)
	_, err = f.sweep.Run(context.Background())
	assert.NoError(t, err)
}
