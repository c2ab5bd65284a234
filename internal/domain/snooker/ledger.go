package snooker

import (
	"context"
	"time"
)

// Fixture sheet column names. UpdateFixtureRow field maps are keyed by these,
// so a write targets a column by header name rather than by position.
const (
	ColumnID           = "id"
	ColumnRound        = "round"
	ColumnGroup        = "group"
	ColumnPlayer1      = "player1"
	ColumnPlayer2      = "player2"
	ColumnDate         = "date"
	ColumnPlayer1Score = "player1_score"
	ColumnPlayer2Score = "player2_score"
	ColumnWinner       = "winner"
	ColumnLog          = "log"
)

// Ledger is the persistence port for the league: the roster, the rounds
// calendar, the fixture list and the break log. GetFixtureByID returns
// ErrMatchNotFound when no row carries the ID.
type Ledger interface {
	GetCurrentPlayers(ctx context.Context) ([]Player, error)
	CurrentRound(ctx context.Context) (int, error)
	GetFixturesForRound(ctx context.Context, round int) ([]Match, error)
	GetFixtureByID(ctx context.Context, matchID string) (Match, error)
	AppendFixtureRows(ctx context.Context, matches []Match) error
	AppendBreakRow(ctx context.Context, rec BreakRecord) error
	UpdateFixtureRow(ctx context.Context, matchID string, fields map[string]any) error
}

// RoundWindow is one row of the rounds calendar.
type RoundWindow struct {
	Round int
	Start time.Time
	End   time.Time
}

// CurrentRoundAt picks the active round: the highest-numbered window whose
// start is not after now. Zero when no window has opened yet.
func CurrentRoundAt(windows []RoundWindow, now time.Time) int {
	current := 0
	for _, w := range windows {
		if w.Round > current && !w.Start.After(now) {
			current = w.Round
		}
	}
	return current
}
