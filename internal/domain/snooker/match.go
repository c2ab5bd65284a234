package snooker

import (
	"fmt"
	"strings"
)

// Match states, derived solely from outcome presence.
const (
	StateUnplayed  = "unplayed"
	StateCompleted = "completed"
)

// IDGenerator mints identifiers for newly created fixtures. Callers never
// pick match IDs themselves.
type IDGenerator interface {
	NewMatchID() (string, error)
}

// Match is one fixture between two players of the same group. A match without
// an outcome is unplayed; attaching an outcome completes it, exactly once.
type Match struct {
	ID      string
	Round   int
	Group   string
	Player1 Player
	Player2 Player
	Format  Format
	Outcome *Outcome
}

// NewMatch creates an unplayed fixture with a freshly generated ID.
func NewMatch(gen IDGenerator, group, player1Name, player2Name string, round int, format Format) (Match, error) {
	id, err := gen.NewMatchID()
	if err != nil {
		return Match{}, fmt.Errorf("generate match id: %w", err)
	}
	m := Match{
		ID:      id,
		Round:   round,
		Group:   strings.TrimSpace(group),
		Player1: NewPlayer(player1Name, group),
		Player2: NewPlayer(player2Name, group),
		Format:  format,
	}
	if err := m.validate(); err != nil {
		return Match{}, err
	}
	return m, nil
}

// RehydrateMatch reconstructs a fixture from stored fields. The same
// invariants hold as at creation; a stored row that breaks them is a
// corrupt ledger, not a tolerable variant.
func RehydrateMatch(id string, round int, group string, player1, player2 Player, format Format, outcome *Outcome) (Match, error) {
	m := Match{
		ID:      id,
		Round:   round,
		Group:   strings.TrimSpace(group),
		Player1: player1,
		Player2: player2,
		Format:  format,
		Outcome: outcome,
	}
	if m.ID == "" {
		return Match{}, fmt.Errorf("%w: empty match id", ErrInvalidMatch)
	}
	if err := m.validate(); err != nil {
		return Match{}, err
	}
	if outcome != nil {
		if err := m.validateOutcome(*outcome); err != nil {
			return Match{}, err
		}
	}
	return m, nil
}

func (m Match) validate() error {
	if m.Player1.Name == "" || m.Player2.Name == "" {
		return fmt.Errorf("%w: both players must be named", ErrInvalidMatch)
	}
	if m.Player1.SameName(m.Player2.Name) {
		return fmt.Errorf("%w: %s cannot play themselves", ErrInvalidMatch, m.Player1.Name)
	}
	if m.Group == "" {
		return fmt.Errorf("%w: match has no group", ErrInvalidMatch)
	}
	for _, p := range []Player{m.Player1, m.Player2} {
		if p.Group != "" && p.Group != m.Group {
			return fmt.Errorf("%w: %s plays in group %s, match is in group %s", ErrGroupMismatch, p.Name, p.Group, m.Group)
		}
	}
	if err := m.Format.validate(); err != nil {
		return err
	}
	return nil
}

// AttachOutcome completes the match. It rejects a second outcome, a scoreline
// the format cannot produce, break points outside 1..147 and breaks credited
// to anyone but the two match players.
func (m Match) AttachOutcome(o Outcome) (Match, error) {
	if m.Completed() {
		return Match{}, fmt.Errorf("%w: %s", ErrMatchAlreadyCompleted, m.ID)
	}
	if err := m.validateOutcome(o); err != nil {
		return Match{}, err
	}
	attached := o
	attached.Breaks = make([]Break, len(o.Breaks))
	copy(attached.Breaks, o.Breaks)
	SortBreaks(attached.Breaks)
	m.Outcome = &attached
	return m, nil
}

func (m Match) validateOutcome(o Outcome) error {
	hi, lo := o.Player1Score, o.Player2Score
	if lo > hi {
		hi, lo = lo, hi
	}
	if want := m.Format.FramesToWin(); hi != want {
		return fmt.Errorf("%w: winner of a best-of-%d match takes %d frames, got %s",
			ErrInvalidScoreline, m.Format.BestOf, want, o.Scoreline())
	}
	if lo < 0 {
		return fmt.Errorf("%w: negative frame count %s", ErrInvalidScoreline, o.Scoreline())
	}
	if lo >= hi {
		return fmt.Errorf("%w: no winner in %s", ErrInvalidScoreline, o.Scoreline())
	}
	for _, b := range o.Breaks {
		if b.Points < 1 || b.Points > MaxBreakPoints {
			return fmt.Errorf("%w: %d", ErrInvalidBreakPoints, b.Points)
		}
		if !m.Player1.SameName(b.Player.Name) && !m.Player2.SameName(b.Player.Name) {
			return fmt.Errorf("%w: %s is not playing in match %s", ErrInvalidBreakAttribution, b.Player.Name, m.ID)
		}
	}
	return nil
}

// Completed reports whether an outcome has been attached. Outcome presence is
// the sole state determinant.
func (m Match) Completed() bool {
	return m.Outcome != nil
}

func (m Match) State() string {
	if m.Completed() {
		return StateCompleted
	}
	return StateUnplayed
}

// Winner returns the player with the higher frame count. ok is false while
// the match is unplayed.
func (m Match) Winner() (winner Player, ok bool) {
	if !m.Completed() {
		return Player{}, false
	}
	if m.Outcome.Player1Score > m.Outcome.Player2Score {
		return m.Player1, true
	}
	return m.Player2, true
}

// Loser mirrors Winner.
func (m Match) Loser() (loser Player, ok bool) {
	if !m.Completed() {
		return Player{}, false
	}
	if m.Outcome.Player1Score > m.Outcome.Player2Score {
		return m.Player2, true
	}
	return m.Player1, true
}

// HighestBreak returns the top break of the match, if any were reported.
func (m Match) HighestBreak() (Break, bool) {
	if !m.Completed() || len(m.Outcome.Breaks) == 0 {
		return Break{}, false
	}
	return m.Outcome.Breaks[0], true
}

// ResolveBreakPlayer maps a reported name to one of the match players.
func (m Match) ResolveBreakPlayer(name string) (Player, bool) {
	switch {
	case m.Player1.SameName(name):
		return m.Player1, true
	case m.Player2.SameName(name):
		return m.Player2, true
	default:
		return Player{}, false
	}
}

// Summary renders the one-line result used in replies and notifications,
// e.g. "Selby Mark won Trump Judd by 2 frames to 1. Breaks: Judd 100, Mark 50."
// An unplayed match summarizes to its pairing.
func (m Match) Summary() string {
	if !m.Completed() {
		return fmt.Sprintf("%s vs %s", m.Player1.Name, m.Player2.Name)
	}
	winner, _ := m.Winner()
	loser, _ := m.Loser()
	hi, lo := m.Outcome.Player1Score, m.Outcome.Player2Score
	if lo > hi {
		hi, lo = lo, hi
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s won %s by %d frames to %d.", winner.Name, loser.Name, hi, lo)
	if len(m.Outcome.Breaks) > 0 {
		parts := make([]string, len(m.Outcome.Breaks))
		for i, b := range m.Outcome.Breaks {
			parts[i] = b.String()
		}
		sb.WriteString(" Breaks: ")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString(".")
	}
	return sb.String()
}
