package telegram

import (
	"context"
	"errors"
	"fmt"

	"isp_billing_panel/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterPaymentCallback handles the "Mark paid" button on overdue alerts.
func (h *AdminHandlers) RegisterPaymentCallback(ctx context.Context, b *telebot.Bot) {
	b.Handle(&telebot.Btn{Unique: markPaidUnique}, func(c telebot.Context) error {
		clientID := c.Callback().Data
		logCtx := h.logger.WithFields(logrus.Fields{
			"handler":   "mark_paid",
			"chat_id":   chatID(c),
			"client_id": clientID,
		})

		if !h.authorized(c) {
			logCtx.Warn("Unauthorized payment callback")
			return c.Respond(&telebot.CallbackResponse{Text: "Not allowed."})
		}
		text := h.markPaidReply(ctx, clientID)
		if err := c.Respond(&telebot.CallbackResponse{Text: text}); err != nil {
			logCtx.WithError(err).Warn("Failed to answer callback")
		}
		return c.Send(text)
	})
}

func (h *AdminHandlers) markPaidReply(ctx context.Context, clientID string) string {
	if clientID == "" {
		return "Unknown client."
	}
	paid, err := h.clients.RecordPayment(ctx, clientID)
	switch {
	case errors.Is(err, app.ErrClientNotFound):
		return "That client no longer exists."
	case err != nil:
		h.logger.WithError(err).WithField("client_id", clientID).Error("Payment from Telegram failed")
		return "Could not record the payment, see server logs."
	}
	return fmt.Sprintf("%s marked as paid. Next due: %s", paid.Name, paid.DueDate)
}
