package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"isp_billing_panel/internal/app"
	"isp_billing_panel/internal/domain/billing"
	"isp_billing_panel/internal/domain/client"
	"isp_billing_panel/internal/domain/notification"
	"isp_billing_panel/internal/infra/filestore"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type sentMessage struct {
	chatID  int64
	text    string
	options *telebot.SendOptions
}

type fakeClient struct {
	sent []sentMessage
	err  error
}

func (f *fakeClient) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, options: options})
	return f.err
}

func TestDeliverer_OverdueCarriesMarkPaidButton(t *testing.T) {
	fc := &fakeClient{}
	d := NewDeliverer(fc, -1001)
	assert.Equal(t, "telegram", d.Channel())

	err := d.Deliver(context.Background(), &notification.Notification{
		Kind: notification.KindOverdue, ClientID: "c1", Message: "Juan is overdue since 2024-01-31",
	})
	require.NoError(t, err)
	require.Len(t, fc.sent, 1)
	assert.Equal(t, int64(-1001), fc.sent[0].chatID)
	assert.Contains(t, fc.sent[0].text, "Juan is overdue since 2024-01-31")

	markup := fc.sent[0].options.ReplyMarkup
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 1)
	btn := markup.InlineKeyboard[0][0]
	assert.Equal(t, "Mark paid", btn.Text)
	assert.Equal(t, "pay", btn.Unique)
	assert.Equal(t, "c1", btn.Data)
}

func TestDeliverer_PaymentHasNoButton(t *testing.T) {
	fc := &fakeClient{}
	require.NoError(t, NewDeliverer(fc, 1).Deliver(context.Background(), &notification.Notification{
		Kind: notification.KindPayment, ClientID: "c1", Message: "paid",
	}))
	assert.Nil(t, fc.sent[0].options.ReplyMarkup)
}

func TestDeliverer_PropagatesSendError(t *testing.T) {
	fc := &fakeClient{err: errors.New("chat not found")}
	err := NewDeliverer(fc, 1).Deliver(context.Background(), &notification.Notification{Message: "x"})
	assert.ErrorContains(t, err, "chat not found")
}

func newHandlers(t *testing.T, today string, clients []*client.Client) (*AdminHandlers, *filestore.ClientRepository) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	log := logrus.NewEntry(logger)
	dir := t.TempDir()

	d, err := billing.ParseDate(today)
	require.NoError(t, err)
	now := time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, time.UTC)
	cal := billing.NewCalendar(time.UTC, func() time.Time { return now })

	repo := filestore.NewClientRepository(dir)
	require.NoError(t, repo.SaveAll(context.Background(), clients))
	notifications := app.NewNotificationService(filestore.NewNotificationRepository(dir), nil, nil, cal, nil, time.Second, log)
	clientSvc := app.NewClientService(repo, notifications, cal, log)
	sweep := app.NewSweepService(clientSvc, notifications, cal, nil, log)
	return NewAdminHandlers(clientSvc, sweep, 42, log), repo
}

func mustDate(s string) billing.Date {
	d, err := billing.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAdminHandlers_Replies(t *testing.T) {
	ctx := context.Background()
	h, _ := newHandlers(t, "2024-02-01", []*client.Client{
		{ID: "a", Name: "Juan", Phone: "0917", Plan: "Fiber 50", BillingCycle: 30, DueDate: mustDate("2024-01-31"), Status: billing.StatusActive},
		{ID: "b", Name: "Ana", Phone: "0918", BillingCycle: 30, DueDate: mustDate("2024-02-02"), Status: billing.StatusActive},
	})

	assert.Equal(t, "Checked 2 clients, 1 newly overdue", h.runCheckReply(ctx))

	overdue := h.overdueReply(ctx)
	assert.Contains(t, overdue, "Juan (0917), due 2024-01-31, plan Fiber 50")
	assert.NotContains(t, overdue, "Ana")

	assert.Equal(t, "Clients: 2\nActive: 1\nOverdue: 1\nDue within 3 days: 1", h.summaryReply(ctx))

	assert.Equal(t, "Juan marked as paid. Next due: 2024-03-01", h.markPaidReply(ctx, "a"))
	assert.Equal(t, "No overdue clients.", h.overdueReply(ctx))
	assert.Equal(t, "That client no longer exists.", h.markPaidReply(ctx, "gone"))
	assert.Equal(t, "Unknown client.", h.markPaidReply(ctx, ""))
}

func TestHelpTextListsCommands(t *testing.T) {
	text := helpText()
	for _, cmd := range []string{"/overdue", "/run_check", "/summary", "/help"} {
		assert.Contains(t, text, cmd)
	}
}
