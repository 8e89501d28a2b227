// internal/domain/notification/notification.go
package notification

import (
	"time"

	"isp_billing_panel/internal/domain/billing"
)

// Notification is an immutable event record. Client fields are a snapshot taken
// at emission time, so deleting the client never invalidates history.
type Notification struct {
	ID         string       `json:"id"`
	Kind       Kind         `json:"kind"`
	Time       time.Time    `json:"time"`
	ClientID   string       `json:"clientId"`
	ClientName string       `json:"clientName"`
	DueDate    billing.Date `json:"dueDate"`
	Message    string       `json:"message"`
}
