// internal/domain/notification/delivery.go
package notification

// DeliveryResult is the outcome of one best-effort external channel attempt.
type DeliveryResult struct {
	Channel   string `json:"channel"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}
