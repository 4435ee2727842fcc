package bot

import (
	"strings"
	"testing"

	"github.com/kxbet/matchwatch/internal/config"
)

func TestCompetitionKeyboard(t *testing.T) {
	keyboard := competitionKeyboard()

	if len(keyboard.InlineKeyboard) != len(config.Competitions) {
		t.Fatalf("expected %d rows, got %d", len(config.Competitions), len(keyboard.InlineKeyboard))
	}
	for i, row := range keyboard.InlineKeyboard {
		if len(row) != 1 {
			t.Fatalf("expected one button per row, got %d", len(row))
		}
		data := row[0].CallbackData
		if data == nil || !strings.HasPrefix(*data, cbCompetition) {
			t.Errorf("row %d: unexpected callback data %v", i, data)
		}
		if *data != cbCompetition+config.Competitions[i].Code {
			t.Errorf("row %d: expected %s, got %s", i, cbCompetition+config.Competitions[i].Code, *data)
		}
	}
}

func TestTruncateLabelKeepsWholeRunes(t *testing.T) {
	label := strings.Repeat("é", 60)
	got := truncateLabel(label, maxButtonLabel)
	if len([]rune(got)) != maxButtonLabel {
		t.Errorf("expected %d runes, got %d", maxButtonLabel, len([]rune(got)))
	}
	if short := truncateLabel("Arsenal vs Chelsea", maxButtonLabel); short != "Arsenal vs Chelsea" {
		t.Errorf("short labels must pass through, got %q", short)
	}
}

func TestSubscriberID(t *testing.T) {
	if got := subscriberID(123456789); got != "123456789" {
		t.Errorf("unexpected subscriber id %s", got)
	}
}
