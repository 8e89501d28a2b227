package client

import (
	"testing"
	"time"

	"isp_billing_panel/internal/domain/billing"

	"github.com/stretchr/testify/assert"
)

func TestReclassify(t *testing.T) {
	c := &Client{DueDate: billing.NewDate(2024, 1, 31), Status: billing.StatusActive}

	prev, changed := c.Reclassify(billing.NewDate(2024, 1, 31))
	assert.False(t, changed)
	assert.Equal(t, billing.StatusActive, prev)

	prev, changed = c.Reclassify(billing.NewDate(2024, 2, 1))
	assert.True(t, changed)
	assert.Equal(t, billing.StatusActive, prev)
	assert.Equal(t, billing.StatusInactive, c.Status)
}

func TestReclassify_LegacyPaidStatus(t *testing.T) {
	c := &Client{DueDate: billing.NewDate(2024, 3, 1), Status: billing.Status("Paid")}

	_, changed := c.Reclassify(billing.NewDate(2024, 2, 1))
	assert.True(t, changed)
	assert.Equal(t, billing.StatusActive, c.Status)
}

func TestReclassify_NoDueDate(t *testing.T) {
	c := &Client{Status: billing.StatusActive}
	_, changed := c.Reclassify(billing.NewDate(2030, 1, 1))
	assert.False(t, changed)
	assert.Equal(t, billing.StatusActive, c.Status)
}

func TestCloneIsDeep(t *testing.T) {
	paid := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	c := &Client{ID: "a", PaidAt: &paid}

	cp := c.Clone()
	*cp.PaidAt = paid.Add(time.Hour)
	cp.Name = "changed"

	assert.True(t, c.PaidAt.Equal(paid))
	assert.Empty(t, c.Name)
}
