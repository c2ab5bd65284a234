package snooker

import (
	"fmt"
	"sort"
	"time"
)

// MaxBreakPoints is the highest break a single visit can score on a full
// rack. Six-red matches share the same ceiling; the table does not care.
const MaxBreakPoints = 147

// Break is a noteworthy single-visit score by one of the match players.
type Break struct {
	Player Player
	Points int
}

func (b Break) String() string {
	return fmt.Sprintf("%s %d", b.Player.GivenName(), b.Points)
}

// SortBreaks orders breaks from highest to lowest points, in place.
// Ties keep their reported order.
func SortBreaks(breaks []Break) {
	sort.SliceStable(breaks, func(i, j int) bool {
		return breaks[i].Points > breaks[j].Points
	})
}

// BreakRecord is the full ledger row for one break: the break itself plus
// the reporting context the break sheet keeps alongside it.
type BreakRecord struct {
	Break   Break
	Date    time.Time
	Round   int
	Source  string
	Passage string
}
