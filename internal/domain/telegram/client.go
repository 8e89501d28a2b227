package telegram

import "gopkg.in/telebot.v3"

// Client sends messages to a Telegram chat. Delivery code depends on this
// instead of the bot library so it can be stubbed in tests.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
