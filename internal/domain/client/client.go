package client

import (
	"time"

	"isp_billing_panel/internal/domain/billing"
)

// Client represents a subscriber account.
type Client struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Phone        string         `json:"phone"`
	Plan         string         `json:"plan"`
	Location     string         `json:"location"`
	InstallDate  billing.Date   `json:"installDate"`
	BillingCycle int            `json:"billingCycle"`
	DueDate      billing.Date   `json:"dueDate"`
	Status       billing.Status `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	PaidAt       *time.Time     `json:"paidAt,omitempty"`
}

// Reclassify recomputes Status against today and reports whether it changed.
// Clients without a due date are left alone.
func (c *Client) Reclassify(today billing.Date) (previous billing.Status, changed bool) {
	previous = c.Status
	if c.DueDate.IsZero() {
		return previous, false
	}
	c.Status = billing.ClassifyStatus(c.DueDate, today)
	return previous, c.Status != previous
}

// Clone returns a deep copy so callers never share records with a repository.
func (c *Client) Clone() *Client {
	cp := *c
	if c.PaidAt != nil {
		paid := *c.PaidAt
		cp.PaidAt = &paid
	}
	return &cp
}
