package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"isp_billing_panel/internal/app"
	"isp_billing_panel/internal/domain/billing"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const unauthorizedReply = "Sorry, this bot only answers the billing alert chat."

// AdminHandlers answers operator commands from the alert chat.
type AdminHandlers struct {
	clients     *app.ClientService
	sweep       *app.SweepService
	adminChatID int64
	logger      *logrus.Entry
}

func NewAdminHandlers(clients *app.ClientService, sweep *app.SweepService, adminChatID int64, logger *logrus.Entry) *AdminHandlers {
	return &AdminHandlers{clients: clients, sweep: sweep, adminChatID: adminChatID, logger: logger}
}

// RegisterAdminHandlers registers /overdue, /run_check and /summary.
func (h *AdminHandlers) RegisterAdminHandlers(ctx context.Context, b *telebot.Bot) {
	b.Handle("/overdue", h.command(ctx, "/overdue", h.overdueReply))
	b.Handle("/run_check", h.command(ctx, "/run_check", h.runCheckReply))
	b.Handle("/summary", h.command(ctx, "/summary", h.summaryReply))
}

func (h *AdminHandlers) command(ctx context.Context, name string, reply func(context.Context) string) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		handlerLogger := h.logger.WithFields(logrus.Fields{
			"handler": name,
			"chat_id": chatID(c),
		})
		handlerLogger.Info("Command received")

		if !h.authorized(c) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedReply)
		}
		return c.Send(reply(ctx))
	}
}

func (h *AdminHandlers) authorized(c telebot.Context) bool {
	if c.Chat() != nil && c.Chat().ID == h.adminChatID {
		return true
	}
	return c.Sender() != nil && c.Sender().ID == h.adminChatID
}

func chatID(c telebot.Context) int64 {
	if c.Chat() == nil {
		return 0
	}
	return c.Chat().ID
}

func (h *AdminHandlers) overdueReply(ctx context.Context) string {
	clients, err := h.clients.List(ctx, "")
	if err != nil {
		h.logger.WithError(err).Error("Failed to list clients")
		return "Could not load clients, please try again later."
	}

	var response strings.Builder
	count := 0
	for _, c := range clients {
		if c.Status != billing.StatusInactive {
			continue
		}
		if count == 0 {
			response.WriteString("--- Overdue clients ---\n")
		}
		count++
		response.WriteString(fmt.Sprintf("%s (%s), due %s, plan %s\n", c.Name, c.Phone, c.DueDate, orDash(c.Plan)))
	}
	if count == 0 {
		return "No overdue clients."
	}
	return response.String()
}

func (h *AdminHandlers) runCheckReply(ctx context.Context) string {
	summary, err := h.sweep.Run(ctx)
	switch {
	case errors.Is(err, app.ErrSweepInProgress):
		return "A check is already running."
	case err != nil:
		h.logger.WithError(err).Error("Manual sweep from Telegram failed")
		return "The check failed, see server logs."
	}
	return summary.Message()
}

func (h *AdminHandlers) summaryReply(ctx context.Context) string {
	sum, err := h.clients.Summary(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute summary")
		return "Could not load clients, please try again later."
	}
	return fmt.Sprintf("Clients: %d\nActive: %d\nOverdue: %d\nDue within %d days: %d",
		sum.Total, sum.Active, sum.Inactive, app.DueSoonDays, sum.DueSoon)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
