// Package bot is the Telegram command front-end: /start, /today and /my
// commands plus the inline-keyboard competition menu with per-match
// follow/unfollow toggles.
//
// All subscription mutations go through the shared store, which serializes
// them against the poll loop's record updates.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"github.com/kxbet/matchwatch/internal/cache"
	"github.com/kxbet/matchwatch/internal/footballdata"
	"github.com/kxbet/matchwatch/internal/store"
)

// Callback data prefixes for inline keyboard buttons.
const (
	cbCompetition = "comp:"
	cbToggle      = "tog:"
	cbBackToday   = "back:today"
)

const listingTTL = 60 * time.Second

// MatchLister is the slice of the provider client the front-end needs.
type MatchLister interface {
	CompetitionMatches(ctx context.Context, competitionCode string, day time.Time) ([]footballdata.Snapshot, error)
}

// Bot runs the Telegram update loop.
type Bot struct {
	api         *tgbotapi.BotAPI
	store       store.Store
	matches     MatchLister
	listings    *cache.Cache
	menuMatches int
	logger      *slog.Logger
}

// New creates the front-end around a shared bot API client.
func New(api *tgbotapi.BotAPI, st store.Store, matches MatchLister, menuMatches int, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:         api,
		store:       st,
		matches:     matches,
		listings:    cache.New(listingTTL, true),
		menuMatches: menuMatches,
		logger:      logger,
	}
}

// ListingCache exposes the menu cache for the ops API health endpoint.
func (b *Bot) ListingCache() *cache.Cache {
	return b.listings
}

// Run blocks consuming Telegram updates until ctx is cancelled. Intended to
// be called with `go`.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("get updates channel: %w", err)
	}

	b.logger.Info("Telegram front-end started", "bot", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram front-end stopped")
			return nil
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start":
		b.reply(chatID, startText)
	case "today":
		msg := tgbotapi.NewMessage(chatID, chooseCompetitionText)
		msg.ReplyMarkup = competitionKeyboard()
		b.send(msg)
	case "my":
		b.handleMy(ctx, chatID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	data := cq.Data
	switch {
	case strings.HasPrefix(data, cbCompetition):
		b.answer(cq.ID, "")
		b.showCompetitionMatches(ctx, cq, strings.TrimPrefix(data, cbCompetition))
	case strings.HasPrefix(data, cbToggle):
		b.handleToggle(ctx, cq, strings.TrimPrefix(data, cbToggle))
	case data == cbBackToday:
		b.answer(cq.ID, "")
		edit := tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, chooseCompetitionText)
		markup := competitionKeyboard()
		edit.ReplyMarkup = &markup
		b.send(edit)
	}
}

// --------------------------------------------------------------------------
// Send helpers
// --------------------------------------------------------------------------

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("Telegram send failed", "error", err)
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.AnswerCallbackQuery(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Warn("Callback answer failed", "error", err)
	}
}
