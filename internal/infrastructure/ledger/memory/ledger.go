package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
)

// Seed is the initial ledger content. Fixtures keep their slice order, the
// same way sheet rows keep theirs.
type Seed struct {
	Players  []snooker.Player
	Windows  []snooker.RoundWindow
	Fixtures []snooker.Match
}

// recordedRow keeps the columns a fixture row update carries that the Match
// itself does not: the derived winner cell and the reporter's passage.
type recordedRow struct {
	winner string
	log    string
}

// Ledger holds the league in process memory. It backs local development and
// tests; semantics mirror the spreadsheet ledger, including overwriting
// result columns without a completion guard of its own.
type Ledger struct {
	mu       sync.RWMutex
	players  []snooker.Player
	windows  []snooker.RoundWindow
	fixtures []snooker.Match
	breaks   []snooker.BreakRecord
	rows     map[string]recordedRow
}

func NewLedger(seed Seed) *Ledger {
	l := &Ledger{
		players:  append([]snooker.Player(nil), seed.Players...),
		windows:  append([]snooker.RoundWindow(nil), seed.Windows...),
		fixtures: append([]snooker.Match(nil), seed.Fixtures...),
		rows:     make(map[string]recordedRow),
	}
	return l
}

func (l *Ledger) GetCurrentPlayers(_ context.Context) ([]snooker.Player, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]snooker.Player, 0, len(l.players))
	out = append(out, l.players...)
	return out, nil
}

func (l *Ledger) CurrentRound(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return snooker.CurrentRoundAt(l.windows, time.Now()), nil
}

func (l *Ledger) GetFixturesForRound(_ context.Context, round int) ([]snooker.Match, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]snooker.Match, 0, len(l.fixtures))
	for _, m := range l.fixtures {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out, nil
}

func (l *Ledger) GetFixtureByID(_ context.Context, matchID string) (snooker.Match, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, m := range l.fixtures {
		if m.ID == matchID {
			return m, nil
		}
	}
	return snooker.Match{}, fmt.Errorf("%w: %s", snooker.ErrMatchNotFound, matchID)
}

func (l *Ledger) AppendFixtureRows(_ context.Context, matches []snooker.Match) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.fixtures = append(l.fixtures, matches...)
	return nil
}

func (l *Ledger) AppendBreakRow(_ context.Context, rec snooker.BreakRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.breaks = append(l.breaks, rec)
	return nil
}

func (l *Ledger) UpdateFixtureRow(_ context.Context, matchID string, fields map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, m := range l.fixtures {
		if m.ID != matchID {
			continue
		}

		date, err := timeField(fields, snooker.ColumnDate)
		if err != nil {
			return err
		}
		p1Score, err := intField(fields, snooker.ColumnPlayer1Score)
		if err != nil {
			return err
		}
		p2Score, err := intField(fields, snooker.ColumnPlayer2Score)
		if err != nil {
			return err
		}

		outcome := snooker.NewOutcome(date, p1Score, p2Score, nil)
		updated, err := snooker.RehydrateMatch(m.ID, m.Round, m.Group, m.Player1, m.Player2, m.Format, &outcome)
		if err != nil {
			return fmt.Errorf("apply fixture row update %s: %w", matchID, err)
		}
		l.fixtures[i] = updated

		row := l.rows[matchID]
		if winner, ok := fields[snooker.ColumnWinner].(string); ok {
			row.winner = winner
		}
		if log, ok := fields[snooker.ColumnLog].(string); ok {
			row.log = log
		}
		l.rows[matchID] = row
		return nil
	}
	return fmt.Errorf("%w: %s", snooker.ErrMatchNotFound, matchID)
}

// BreakRows returns everything appended to the break log, oldest first.
func (l *Ledger) BreakRows() []snooker.BreakRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]snooker.BreakRecord, 0, len(l.breaks))
	out = append(out, l.breaks...)
	return out
}

// RecordedRow returns the winner and log cells last written for a fixture.
func (l *Ledger) RecordedRow(matchID string) (winner, log string, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	row, ok := l.rows[matchID]
	return row.winner, row.log, ok
}

func timeField(fields map[string]any, name string) (time.Time, error) {
	value, ok := fields[name]
	if !ok {
		return time.Time{}, fmt.Errorf("fixture row update is missing %q", name)
	}
	t, ok := value.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("fixture row %q holds %T, want time.Time", name, value)
	}
	return t, nil
}

func intField(fields map[string]any, name string) (int, error) {
	value, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("fixture row update is missing %q", name)
	}
	n, ok := value.(int)
	if !ok {
		return 0, fmt.Errorf("fixture row %q holds %T, want int", name, value)
	}
	return n, nil
}
