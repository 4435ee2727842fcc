package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// TelegramNotifier delivers alerts as Telegram messages. Subscriber ids are
// the decimal chat ids the front-end records on subscription.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramNotifier wraps an existing bot API client. The client is shared
// with the command front-end.
func NewTelegramNotifier(bot *tgbotapi.BotAPI) *TelegramNotifier {
	return &TelegramNotifier{bot: bot}
}

func (t *TelegramNotifier) Send(ctx context.Context, subscriberID string, text string) error {
	chatID, err := strconv.ParseInt(subscriberID, 10, 64)
	if err != nil {
		return fmt.Errorf("subscriber id %q: %w: %w", subscriberID, ErrDeliveryFailed, err)
	}

	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send to %s: %w: %w", subscriberID, ErrDeliveryFailed, err)
	}
	return nil
}
