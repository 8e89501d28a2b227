package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"isp_billing_panel/internal/domain/billing"
	"isp_billing_panel/internal/domain/client"
	"isp_billing_panel/internal/domain/notification"
	"isp_billing_panel/internal/domain/session"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var errDiskFull = errors.New("disk full")

type memClientRepo struct {
	mu      sync.Mutex
	clients []*client.Client
	saves   int
	saveErr error
}

func (r *memClientRepo) LoadAll(context.Context) ([]*client.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAll(r.clients), nil
}

func (r *memClientRepo) SaveAll(_ context.Context, clients []*client.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.clients = cloneAll(clients)
	return nil
}

func (r *memClientRepo) stored() []*client.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAll(r.clients)
}

type memNotificationRepo struct {
	mu      sync.Mutex
	items   []*notification.Notification
	saveErr error
}

func (r *memNotificationRepo) LoadAll(context.Context) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*notification.Notification, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *memNotificationRepo) SaveAll(_ context.Context, items []*notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.items = append([]*notification.Notification(nil), items...)
	return nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []*notification.Notification
}

func (p *recordingPublisher) Publish(n *notification.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, n)
}

type stubDeliverer struct {
	channel string
	err     error

	mu        sync.Mutex
	delivered []*notification.Notification
}

func (d *stubDeliverer) Channel() string { return d.channel }

func (d *stubDeliverer) Deliver(_ context.Context, n *notification.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, n)
	return d.err
}

func (d *stubDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.delivered)
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]*session.Session{}}
}

func (s *memSessionStore) Save(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.Token] = &cp
	return nil
}

func (s *memSessionStore) Get(_ context.Context, token string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, session.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *memSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

type staticCredentials struct {
	username, password string
}

func (c staticCredentials) AdminCredentials() (string, string, error) {
	return c.username, c.password, nil
}

// fixedCalendar pins "now" to 09:00 Manila time on the given civil day.
func fixedCalendar(day billing.Date) *billing.Calendar {
	loc := time.FixedZone("PHT", 8*60*60)
	now := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, loc)
	return billing.NewCalendar(loc, func() time.Time { return now })
}

func testLogger() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func date(s string) billing.Date {
	d, err := billing.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

type panelFixture struct {
	clientRepo   *memClientRepo
	notifRepo    *memNotificationRepo
	publisher    *recordingPublisher
	deliverer    *stubDeliverer
	notification *NotificationService
	clients      *ClientService
	sweep        *SweepService
}

func newPanelFixture(today string) *panelFixture {
	f := &panelFixture{
		clientRepo: &memClientRepo{},
		notifRepo:  &memNotificationRepo{},
		publisher:  &recordingPublisher{},
		deliverer:  &stubDeliverer{channel: "sms"},
	}
	cal := fixedCalendar(date(today))
	log := testLogger()
	f.notification = NewNotificationService(f.notifRepo, f.publisher, []Deliverer{f.deliverer}, cal, nil, time.Second, log)
	f.clients = NewClientService(f.clientRepo, f.notification, cal, log)
	f.sweep = NewSweepService(f.clients, f.notification, cal, nil, log)
	return f
}
