package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
)

// Positional break owners accepted by the structured scores API.
const (
	BreakByPlayer1 = "player1"
	BreakByPlayer2 = "player2"
)

// PositionalBreak credits a break to a fixture slot rather than a name.
type PositionalBreak struct {
	By     string
	Points int
}

// ScoreSubmission is a result reported against a known match ID. Scores are
// in fixture order. A zero Date means the match was played today.
type ScoreSubmission struct {
	Player1Score int
	Player2Score int
	Date         time.Time
	Breaks       []PositionalBreak
}

// RecordingService runs the recording protocol: find the fixture a reported
// result belongs to, reconcile reported player order with the fixture, guard
// against double completion on a fresh row read and persist breaks before
// the fixture row.
type RecordingService struct {
	ledger snooker.Ledger
	now    func() time.Time
}

func NewRecordingService(ledger snooker.Ledger) *RecordingService {
	return &RecordingService{
		ledger: ledger,
		now:    time.Now,
	}
}

// RecordCandidate records a result reported without a match ID. The fixture
// is located in the current round by the unordered player pair.
func (s *RecordingService) RecordCandidate(ctx context.Context, c snooker.Candidate, source, passage string) (snooker.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecordingService.RecordCandidate")
	defer span.End()

	roster, err := s.ledger.GetCurrentPlayers(ctx)
	if err != nil {
		return snooker.Match{}, fmt.Errorf("get current players: %w", err)
	}
	if err := snooker.ValidateCandidate(c, roster); err != nil {
		return snooker.Match{}, err
	}

	round, err := s.ledger.CurrentRound(ctx)
	if err != nil {
		return snooker.Match{}, fmt.Errorf("get current round: %w", err)
	}
	fixtures, err := s.ledger.GetFixturesForRound(ctx, round)
	if err != nil {
		return snooker.Match{}, fmt.Errorf("get fixtures for round %d: %w", round, err)
	}
	fixture, ok := findFixtureByPair(fixtures, c.Player1Name, c.Player2Name)
	if !ok {
		return snooker.Match{}, fmt.Errorf("%w: no round %d fixture pairs %s with %s",
			snooker.ErrMatchNotFound, round, c.Player1Name, c.Player2Name)
	}

	return s.record(ctx, fixture, c, source, passage)
}

// RecordByID records a result against a known fixture. Scores and breaks in
// the submission are positional relative to the fixture's player order.
func (s *RecordingService) RecordByID(ctx context.Context, matchID string, sub ScoreSubmission, source, passage string) (snooker.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecordingService.RecordByID")
	defer span.End()

	fixture, err := s.ledger.GetFixtureByID(ctx, matchID)
	if err != nil {
		return snooker.Match{}, fmt.Errorf("get fixture %s: %w", matchID, err)
	}

	c := snooker.Candidate{
		Group:        fixture.Group,
		Player1Name:  fixture.Player1.Name,
		Player2Name:  fixture.Player2.Name,
		Player1Score: sub.Player1Score,
		Player2Score: sub.Player2Score,
		Date:         sub.Date,
	}
	for _, b := range sub.Breaks {
		switch b.By {
		case BreakByPlayer1:
			c.Breaks = append(c.Breaks, snooker.CandidateBreak{PlayerName: fixture.Player1.Name, Points: b.Points})
		case BreakByPlayer2:
			c.Breaks = append(c.Breaks, snooker.CandidateBreak{PlayerName: fixture.Player2.Name, Points: b.Points})
		default:
			return snooker.Match{}, fmt.Errorf("%w: break owner must be %s or %s, got %q",
				snooker.ErrInvalidBreakAttribution, BreakByPlayer1, BreakByPlayer2, b.By)
		}
	}

	return s.record(ctx, fixture, c, source, passage)
}

func (s *RecordingService) record(ctx context.Context, fixture snooker.Match, c snooker.Candidate, source, passage string) (snooker.Match, error) {
	if fixture.Completed() {
		return snooker.Match{}, fmt.Errorf("%w: %s", snooker.ErrMatchAlreadyCompleted, fixture.ID)
	}
	aligned, err := snooker.ReconcileCandidate(fixture, c)
	if err != nil {
		return snooker.Match{}, err
	}

	// The listing that produced the fixture may be stale. Completion is
	// decided on a fresh row read and the outcome attaches to that row.
	current, err := s.ledger.GetFixtureByID(ctx, fixture.ID)
	if err != nil {
		return snooker.Match{}, fmt.Errorf("reload fixture %s: %w", fixture.ID, err)
	}
	if current.Completed() {
		return snooker.Match{}, fmt.Errorf("%w: %s", snooker.ErrMatchAlreadyCompleted, current.ID)
	}
	aligned, err = snooker.ReconcileCandidate(current, aligned)
	if err != nil {
		return snooker.Match{}, err
	}

	date := aligned.Date
	if date.IsZero() {
		date = s.now()
	}
	breaks := make([]snooker.Break, 0, len(aligned.Breaks))
	for _, b := range aligned.Breaks {
		player, ok := current.ResolveBreakPlayer(b.PlayerName)
		if !ok {
			return snooker.Match{}, fmt.Errorf("%w: %s is not playing in match %s",
				snooker.ErrInvalidBreakAttribution, b.PlayerName, current.ID)
		}
		breaks = append(breaks, snooker.Break{Player: player, Points: b.Points})
	}

	recorded, err := current.AttachOutcome(snooker.NewOutcome(date, aligned.Player1Score, aligned.Player2Score, breaks))
	if err != nil {
		return snooker.Match{}, err
	}

	// Break rows go in before the fixture row update. A failure in between
	// leaves orphan break rows and the match still recordable, never a
	// completed match with missing breaks.
	for _, b := range recorded.Outcome.Breaks {
		rec := snooker.BreakRecord{
			Break:   b,
			Date:    date,
			Round:   recorded.Round,
			Source:  source,
			Passage: passage,
		}
		if err := s.ledger.AppendBreakRow(ctx, rec); err != nil {
			return snooker.Match{}, fmt.Errorf("%w: append break row for match %s: %w", snooker.ErrLedgerWrite, recorded.ID, err)
		}
	}

	winner, _ := recorded.Winner()
	fields := map[string]any{
		snooker.ColumnDate:         date,
		snooker.ColumnPlayer1Score: recorded.Outcome.Player1Score,
		snooker.ColumnPlayer2Score: recorded.Outcome.Player2Score,
		snooker.ColumnWinner:       winner.Name,
		snooker.ColumnLog:          passage,
	}
	if err := s.ledger.UpdateFixtureRow(ctx, recorded.ID, fields); err != nil {
		return snooker.Match{}, fmt.Errorf("%w: update fixture row %s: %w", snooker.ErrLedgerWrite, recorded.ID, err)
	}

	return recorded, nil
}

func findFixtureByPair(fixtures []snooker.Match, a, b string) (snooker.Match, bool) {
	for _, m := range fixtures {
		if (m.Player1.SameName(a) && m.Player2.SameName(b)) ||
			(m.Player1.SameName(b) && m.Player2.SameName(a)) {
			return m, true
		}
	}
	return snooker.Match{}, false
}
