package snooker

import (
	"fmt"
	"time"
)

// Outcome is the played result of a match. Scores are positional: Player1Score
// belongs to the fixture's first player. Breaks are kept highest first.
type Outcome struct {
	Date         time.Time
	Player1Score int
	Player2Score int
	Breaks       []Break
}

// Scoreline renders the frame score in fixture order, e.g. "2-1".
func (o Outcome) Scoreline() string {
	return fmt.Sprintf("%d-%d", o.Player1Score, o.Player2Score)
}

// NewOutcome builds an outcome with its breaks sorted. Validation happens when
// the outcome is attached to a match, because the scoreline and the break
// attributions only mean anything against a concrete fixture.
func NewOutcome(date time.Time, p1Score, p2Score int, breaks []Break) Outcome {
	sorted := make([]Break, len(breaks))
	copy(sorted, breaks)
	SortBreaks(sorted)
	return Outcome{
		Date:         date,
		Player1Score: p1Score,
		Player2Score: p2Score,
		Breaks:       sorted,
	}
}
