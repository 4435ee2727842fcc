package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"github.com/kxbet/matchwatch/internal/config"
	"github.com/kxbet/matchwatch/internal/footballdata"
)

const (
	startText = "⚽ KXBet — alertes football\n\n" +
		"➡️ /today : choisir les matchs du jour\n" +
		"➡️ /my : tes matchs suivis"
	chooseCompetitionText = "Choisis une compétition :"

	maxButtonLabel = 55
	maxListedIDs   = 30
)

// competitionKeyboard builds the /today competition menu, one button per row.
func competitionKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(config.Competitions))
	for _, c := range config.Competitions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Name, cbCompetition+c.Code),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// showCompetitionMatches edits the menu message into the day's match list
// for one competition, with a follow/unfollow toggle per match.
func (b *Bot) showCompetitionMatches(ctx context.Context, cq *tgbotapi.CallbackQuery, competitionCode string) {
	chatID := cq.Message.Chat.ID
	day := time.Now().UTC()

	matches, err := b.listMatches(ctx, competitionCode, day)
	if err != nil {
		b.logger.Warn("Competition listing failed", "competition", competitionCode, "error", err)
		b.send(tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID,
			"Le fournisseur de données est indisponible, réessaie plus tard."))
		return
	}
	if len(matches) == 0 {
		b.send(tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID,
			fmt.Sprintf("Aucun match aujourd'hui pour %s.", config.CompetitionName(competitionCode))))
		return
	}

	followed, err := b.store.TrackedBy(ctx, subscriberID(chatID))
	if err != nil {
		b.logger.Warn("Tracked list unavailable", "error", err)
	}
	followedSet := make(map[string]bool, len(followed))
	for _, id := range followed {
		followedSet[id] = true
	}

	if len(matches) > b.menuMatches {
		matches = matches[:b.menuMatches]
	}

	lines := []string{
		fmt.Sprintf("📅 %s — %s", config.CompetitionName(competitionCode), day.Format("2006-01-02")),
		"Clique sur un match pour suivre/désuivre :\n",
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(matches)+1)
	for _, m := range matches {
		marker := "🔔 "
		if followedSet[m.ID] {
			marker = "✅ "
		}
		label := m.Label()
		lines = append(lines, marker+label)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(marker+truncateLabel(label, maxButtonLabel), cbToggle+m.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("↩️ Retour", cbBackToday),
	))

	edit := tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID, strings.Join(lines, "\n"))
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	edit.ReplyMarkup = &markup
	b.send(edit)
}

// listMatches serves a competition's daily listing through the TTL cache.
func (b *Bot) listMatches(ctx context.Context, competitionCode string, day time.Time) ([]footballdata.Snapshot, error) {
	key := competitionCode + ":" + day.Format("2006-01-02")
	if cached, ok := b.listings.Get(key); ok {
		return cached, nil
	}
	matches, err := b.matches.CompetitionMatches(ctx, competitionCode, day)
	if err != nil {
		return nil, err
	}
	b.listings.Set(key, matches)
	return matches, nil
}

func (b *Bot) handleToggle(ctx context.Context, cq *tgbotapi.CallbackQuery, matchID string) {
	tracking, err := b.store.ToggleTracking(ctx, subscriberID(cq.Message.Chat.ID), matchID)
	if err != nil {
		b.logger.Warn("Toggle failed", "match_id", matchID, "error", err)
		b.answer(cq.ID, "Erreur, réessaie plus tard.")
		return
	}
	if tracking {
		b.answer(cq.ID, "Suivi ✅")
	} else {
		b.answer(cq.ID, "Désuivi 🛑")
	}
}

func (b *Bot) handleMy(ctx context.Context, chatID int64) {
	followed, err := b.store.TrackedBy(ctx, subscriberID(chatID))
	if err != nil {
		b.logger.Warn("Tracked list unavailable", "error", err)
		b.reply(chatID, "Erreur, réessaie plus tard.")
		return
	}
	if len(followed) == 0 {
		b.reply(chatID, "Tu ne suis aucun match. Utilise /today.")
		return
	}
	if len(followed) > maxListedIDs {
		followed = followed[:maxListedIDs]
	}
	var sb strings.Builder
	sb.WriteString("🎯 Matchs suivis (IDs) :\n")
	for _, id := range followed {
		sb.WriteString("- " + id + "\n")
	}
	b.reply(chatID, sb.String())
}

func subscriberID(chatID int64) string {
	return fmt.Sprintf("%d", chatID)
}

func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
