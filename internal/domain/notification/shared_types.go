// internal/domain/notification/shared_types.go
package notification

// Kind says which transition produced a notification.
type Kind string

const (
	KindOverdue Kind = "overdue" // Active -> Inactive found by a sweep
	KindPayment Kind = "payment" // payment recorded, due date advanced
	KindTest    Kind = "test"    // operator-triggered channel check, never persisted
)

// Retention is how many notifications history keeps, newest first.
const Retention = 200
