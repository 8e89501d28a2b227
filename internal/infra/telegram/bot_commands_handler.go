// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterBotCommands registers /start and /help.
func (h *AdminHandlers) RegisterBotCommands(b *telebot.Bot) {
	startHelpLogger := h.logger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithFields(logrus.Fields{"command": "/start", "chat_id": chatID(c)})
		logCtx.Info("Processing /start command")

		if !h.authorized(c) {
			logCtx.Info("Chat is not the alert chat")
			return c.Send(unauthorizedReply)
		}
		name := "there"
		if c.Sender() != nil && c.Sender().FirstName != "" {
			name = c.Sender().FirstName
		}
		return c.Send(fmt.Sprintf("Hi %s! Overdue and payment alerts from the billing panel land here. Use /help for commands.", name))
	})

	b.Handle("/help", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithFields(logrus.Fields{"command": "/help", "chat_id": chatID(c)})
		logCtx.Info("Processing /help command")

		if !h.authorized(c) {
			return c.Send(unauthorizedReply)
		}
		return c.Send(helpText(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

func helpText() string {
	var helpText strings.Builder
	helpText.WriteString("Available commands:\n\n")
	helpText.WriteString("`/overdue`\n - List clients whose due date has passed.\n\n")
	helpText.WriteString("`/run_check`\n - Run the due-date check now.\n\n")
	helpText.WriteString("`/summary`\n - Client counts for the dashboard.\n\n")
	helpText.WriteString("`/help`\n - Show this message.\n\n")
	helpText.WriteString("Tap *Mark paid* under an overdue alert to record the payment.")
	return helpText.String()
}
