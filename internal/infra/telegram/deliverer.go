package telegram

import (
	"context"
	"fmt"

	"isp_billing_panel/internal/domain/notification"
	domaintelegram "isp_billing_panel/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

const (
	Channel = "telegram"

	markPaidUnique = "pay"
)

// Deliverer posts notifications to the alert chat. Overdue alerts carry a
// "Mark paid" button handled by RegisterPaymentCallback.
type Deliverer struct {
	client domaintelegram.Client
	chatID int64
}

func NewDeliverer(client domaintelegram.Client, chatID int64) *Deliverer {
	return &Deliverer{client: client, chatID: chatID}
}

func (d *Deliverer) Channel() string { return Channel }

func (d *Deliverer) Deliver(ctx context.Context, n *notification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := &telebot.SendOptions{}
	if n.Kind == notification.KindOverdue && n.ClientID != "" {
		opts.ReplyMarkup = markPaidMarkup(n.ClientID)
	}
	if err := d.client.SendMessage(d.chatID, formatNotification(n), opts); err != nil {
		return fmt.Errorf("send to chat %d: %w", d.chatID, err)
	}
	return nil
}

func markPaidMarkup(clientID string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data("Mark paid", markPaidUnique, clientID)))
	return markup
}

func formatNotification(n *notification.Notification) string {
	switch n.Kind {
	case notification.KindOverdue:
		return "⚠️ " + n.Message
	case notification.KindPayment:
		return "✅ " + n.Message
	default:
		return n.Message
	}
}
