package poller

import (
	"fmt"

	"github.com/kxbet/matchwatch/internal/alert"
)

// eventText renders the user-facing alert message for one event. Strings
// are French, matching the rest of the KXBet product surface.
func eventText(event alert.Event) string {
	label := event.Match.Label()
	switch event.Kind {
	case alert.KindStart:
		return fmt.Sprintf("🟢 Début du match !\n%s", label)
	case alert.KindHalftime:
		return fmt.Sprintf("⏸️ Mi-temps : %s\n%s", event.Score, label)
	case alert.KindGoal:
		return fmt.Sprintf("⚽ BUT ! Score: %s\n%s", event.Score, label)
	case alert.KindFulltime:
		return fmt.Sprintf("🏁 Fin : %s\n%s", event.Score, label)
	default:
		return label
	}
}
