package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"isp_billing_panel/internal/domain/billing"
	"isp_billing_panel/internal/domain/client"
	"isp_billing_panel/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nullLogger() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

func TestClientRepository_RoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewClientRepository(dir)

	empty, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	paidAt := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	due, _ := billing.ParseDate("2024-03-01")
	install, _ := billing.ParseDate("2024-01-01")
	in := []*client.Client{
		{ID: "b", Name: "Ben", Phone: "2", InstallDate: install, BillingCycle: 30, DueDate: due,
			Status: billing.StatusActive, CreatedAt: paidAt, PaidAt: &paidAt},
		{ID: "a", Name: "Ana", Phone: "1", Status: billing.StatusInactive, CreatedAt: paidAt},
	}
	require.NoError(t, repo.SaveAll(ctx, in))

	out, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "2024-03-01", out[0].DueDate.String())
	assert.Equal(t, "2024-01-01", out[0].InstallDate.String())
	require.NotNil(t, out[0].PaidAt)
	assert.True(t, paidAt.Equal(*out[0].PaidAt))
	assert.True(t, out[1].DueDate.IsZero())

	raw, err := os.ReadFile(filepath.Join(dir, ClientsFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"dueDate": "2024-03-01"`)
	assert.Contains(t, string(raw), `"billingCycle": 30`)
}

func TestClientRepository_ReadsLegacyRecords(t *testing.T) {
	dir := t.TempDir()
	legacy := `[{"id":"1","name":"Old","phone":"1","installDate":"2023-12-01","billingCycle":30,"status":"Active"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClientsFile), []byte(legacy), 0o644))

	out, err := NewClientRepository(dir).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].DueDate.IsZero())
	assert.Equal(t, "2023-12-01", out[0].InstallDate.String())
}

func TestNotificationRepository_SaveEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewNotificationRepository(dir)

	require.NoError(t, repo.SaveAll(ctx, []*notification.Notification{{ID: "n1", Kind: notification.KindOverdue}}))
	require.NoError(t, repo.SaveAll(ctx, nil))

	raw, err := os.ReadFile(filepath.Join(dir, NotificationsFile))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))

	out, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestEnsureFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, EnsureFiles(dir, nullLogger()))

	for _, name := range []string{ClientsFile, NotificationsFile} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "[]\n", string(raw))
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, ClientsFile), []byte("{broken"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, NotificationsFile), []byte(`[{"id":"keep"}]`), 0o644))
	require.NoError(t, EnsureFiles(dir, nullLogger()))

	raw, err := os.ReadFile(filepath.Join(dir, ClientsFile))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))

	kept, err := NewNotificationRepository(dir).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "keep", kept[0].ID)
}

func TestLoadAll_CorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClientsFile), []byte("{broken"), 0o644))

	_, err := NewClientRepository(dir).LoadAll(context.Background())
	assert.Error(t, err)
}
