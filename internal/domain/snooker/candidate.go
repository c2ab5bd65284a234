package snooker

import (
	"fmt"
	"time"
)

// CandidateBreak names its maker by full player name. Attribution against the
// fixture's players happens during recording.
type CandidateBreak struct {
	PlayerName string
	Points     int
}

// Candidate is an unverified match result as reported, before it has been
// matched against a fixture. Player order is whatever the reporter used.
type Candidate struct {
	Group        string
	Player1Name  string
	Player2Name  string
	Player1Score int
	Player2Score int
	Date         time.Time
	Breaks       []CandidateBreak
}

// ValidateCandidate checks a candidate against the current player roster:
// both names must be known, distinct, and belong to the same group. It says
// nothing about whether a fixture exists for the pairing.
func ValidateCandidate(c Candidate, roster []Player) error {
	if c.Player1Name == "" || c.Player2Name == "" {
		return fmt.Errorf("%w: both players must be named", ErrInvalidMatch)
	}
	if c.Player1Name == c.Player2Name {
		return fmt.Errorf("%w: %s cannot play themselves", ErrInvalidMatch, c.Player1Name)
	}
	p1, ok := findPlayer(roster, c.Player1Name)
	if !ok {
		return fmt.Errorf("%w: unknown player %s", ErrInvalidMatch, c.Player1Name)
	}
	p2, ok := findPlayer(roster, c.Player2Name)
	if !ok {
		return fmt.Errorf("%w: unknown player %s", ErrInvalidMatch, c.Player2Name)
	}
	if p1.Group != p2.Group {
		return fmt.Errorf("%w: %s plays in group %s, %s in group %s",
			ErrGroupMismatch, p1.Name, p1.Group, p2.Name, p2.Group)
	}
	if c.Group != "" && c.Group != p1.Group {
		return fmt.Errorf("%w: reported group %s, players are in group %s", ErrGroupMismatch, c.Group, p1.Group)
	}
	return nil
}

func findPlayer(roster []Player, name string) (Player, bool) {
	for _, p := range roster {
		if p.SameName(name) {
			return p, true
		}
	}
	return Player{}, false
}

// ReconcileCandidate aligns a candidate to the fixture's player order. When
// the reporter listed the players the other way round, the positional scores
// swap with them; breaks are untouched because they name players directly.
// A candidate whose players are not exactly the fixture's pair is rejected.
func ReconcileCandidate(m Match, c Candidate) (Candidate, error) {
	switch {
	case m.Player1.SameName(c.Player1Name) && m.Player2.SameName(c.Player2Name):
		return c, nil
	case m.Player1.SameName(c.Player2Name) && m.Player2.SameName(c.Player1Name):
		swapped := c
		swapped.Player1Name, swapped.Player2Name = c.Player2Name, c.Player1Name
		swapped.Player1Score, swapped.Player2Score = c.Player2Score, c.Player1Score
		return swapped, nil
	default:
		return Candidate{}, fmt.Errorf("%w: %s vs %s does not pair %s with %s",
			ErrFixtureMismatch, c.Player1Name, c.Player2Name, m.Player1.Name, m.Player2.Name)
	}
}
