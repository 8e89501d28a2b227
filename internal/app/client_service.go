package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"isp_billing_panel/internal/domain/billing"
	"isp_billing_panel/internal/domain/client"
	"isp_billing_panel/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DueSoonDays is the dashboard's "due soon" window.
const DueSoonDays = 3

// NewClientInput is the raw operator input for a new subscriber.
// BillingCycle stays a string so non-numeric input can fall back to the default.
type NewClientInput struct {
	Name         string
	Phone        string
	Plan         string
	Location     string
	InstallDate  string
	BillingCycle string
}

// Summary holds the dashboard counters.
type Summary struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	DueSoon  int `json:"dueSoon"`
}

// ClientService owns the client collection. Every mutation is a full
// read-modify-write under mu.
type ClientService struct {
	repo     client.Repository
	notifier Notifier
	calendar *billing.Calendar
	logger   *logrus.Entry

	mu sync.Mutex
}

func NewClientService(repo client.Repository, notifier Notifier, calendar *billing.Calendar, logger *logrus.Entry) *ClientService {
	return &ClientService{
		repo:     repo,
		notifier: notifier,
		calendar: calendar,
		logger:   logger,
	}
}

// Create validates input, assigns an id and derives the first due date.
func (s *ClientService) Create(ctx context.Context, in NewClientInput) (*client.Client, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	installRaw := strings.TrimSpace(in.InstallDate)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if phone == "" {
		missing = append(missing, "phone")
	}
	if installRaw == "" {
		missing = append(missing, "installDate")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing, Reason: "missing required fields"}
	}

	installDate, err := billing.ParseDate(installRaw)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"installDate"}, Reason: "installDate must be YYYY-MM-DD"}
	}
	cycle, err := billing.ParseCycle(in.BillingCycle)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"billingCycle"}, Reason: err.Error()}
	}

	now := s.calendar.Now()
	newClient := &client.Client{
		ID:           uuid.NewString(),
		Name:         name,
		Phone:        phone,
		Plan:         strings.TrimSpace(in.Plan),
		Location:     strings.TrimSpace(in.Location),
		InstallDate:  installDate,
		BillingCycle: cycle,
		DueDate:      billing.InitialDueDate(installDate, cycle),
		Status:       billing.StatusActive,
		CreatedAt:    now,
	}

	err = s.update(ctx, func(clients []*client.Client) ([]*client.Client, bool, error) {
		return append(clients, newClient), true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"client_id": newClient.ID,
		"due_date":  newClient.DueDate.String(),
	}).Info("Client created")
	return newClient.Clone(), nil
}

// List returns the clients matching query (name or phone substring; empty
// matches all) with their status computed for today. Stored statuses are left
// to the sweep, which compares against them to find transitions.
func (s *ClientService) List(ctx context.Context, query string) ([]*client.Client, error) {
	s.mu.Lock()
	clients, err := s.repo.LoadAll(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, persistenceError("load clients", err)
	}

	today := s.calendar.Today()
	snapshot := cloneAll(clients)
	for _, c := range snapshot {
		c.Reclassify(today)
	}
	return filterClients(snapshot, query), nil
}

// FindByID returns one client with its status computed for today.
func (s *ClientService) FindByID(ctx context.Context, id string) (*client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, persistenceError("load clients", err)
	}
	idx := indexOf(clients, id)
	if idx < 0 {
		return nil, ErrClientNotFound
	}
	found := clients[idx].Clone()
	found.Reclassify(s.calendar.Today())
	return found, nil
}

// RecordPayment advances the due date by exactly one cycle and emits a payment notification.
func (s *ClientService) RecordPayment(ctx context.Context, id string) (*client.Client, error) {
	var paid *client.Client

	err := s.update(ctx, func(clients []*client.Client) ([]*client.Client, bool, error) {
		idx := indexOf(clients, id)
		if idx < 0 {
			return nil, false, ErrClientNotFound
		}
		c := clients[idx]
		c.DueDate = s.nextDueDate(c)
		c.Status = billing.StatusActive
		paidAt := s.calendar.Now()
		c.PaidAt = &paidAt
		paid = c.Clone()
		return clients, true, nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logger.WithFields(logrus.Fields{
		"client_id": paid.ID,
		"due_date":  paid.DueDate.String(),
	})
	logCtx.Info("Payment recorded")

	n := &notification.Notification{
		Kind:       notification.KindPayment,
		ClientID:   paid.ID,
		ClientName: paid.Name,
		DueDate:    paid.DueDate,
		Message:    fmt.Sprintf("%s marked as paid. Next due: %s", paid.Name, paid.DueDate),
	}
	// The payment itself is already stored; retrying it would advance the cycle twice.
	if err := s.notifier.Emit(ctx, n); err != nil {
		logCtx.WithError(err).Error("Payment recorded but its notification could not be stored")
	}
	return paid, nil
}

// nextDueDate keeps due dates on the installDate + k*cycle grid even for
// records that never had a due date.
func (s *ClientService) nextDueDate(c *client.Client) billing.Date {
	switch {
	case !c.DueDate.IsZero():
		return billing.NextDueDate(c.DueDate, c.BillingCycle)
	case !c.InstallDate.IsZero():
		return billing.InitialDueDate(c.InstallDate, c.BillingCycle)
	default:
		return billing.NextDueDate(s.calendar.Today(), c.BillingCycle)
	}
}

// Delete removes a client and returns the removed record. Past notifications stay untouched.
func (s *ClientService) Delete(ctx context.Context, id string) (*client.Client, error) {
	var removed *client.Client

	err := s.update(ctx, func(clients []*client.Client) ([]*client.Client, bool, error) {
		idx := indexOf(clients, id)
		if idx < 0 {
			return nil, false, ErrClientNotFound
		}
		removed = clients[idx].Clone()
		remaining := make([]*client.Client, 0, len(clients)-1)
		remaining = append(remaining, clients[:idx]...)
		remaining = append(remaining, clients[idx+1:]...)
		return remaining, true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("client_id", removed.ID).Info("Client deleted")
	return removed, nil
}

// Summary computes dashboard counters from List.
func (s *ClientService) Summary(ctx context.Context) (Summary, error) {
	clients, err := s.List(ctx, "")
	if err != nil {
		return Summary{}, err
	}
	today := s.calendar.Today()
	sum := Summary{Total: len(clients)}
	for _, c := range clients {
		if c.Status == billing.StatusInactive {
			sum.Inactive++
			continue
		}
		sum.Active++
		if billing.DueWithin(c.DueDate, today, DueSoonDays) {
			sum.DueSoon++
		}
	}
	return sum, nil
}

// update runs fn over the stored collection under the collection lock and
// writes the result back when fn reports a change. An error from fn aborts
// without writing.
func (s *ClientService) update(ctx context.Context, fn func([]*client.Client) ([]*client.Client, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.repo.LoadAll(ctx)
	if err != nil {
		return persistenceError("load clients", err)
	}
	updated, dirty, err := fn(clients)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	if err := s.repo.SaveAll(ctx, updated); err != nil {
		return persistenceError("save clients", err)
	}
	return nil
}

func indexOf(clients []*client.Client, id string) int {
	for i, c := range clients {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(clients []*client.Client) []*client.Client {
	out := make([]*client.Client, 0, len(clients))
	for _, c := range clients {
		out = append(out, c.Clone())
	}
	return out
}

func filterClients(clients []*client.Client, query string) []*client.Client {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return clients
	}
	matched := make([]*client.Client, 0, len(clients))
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), query) || strings.Contains(c.Phone, query) {
			matched = append(matched, c)
		}
	}
	return matched
}
