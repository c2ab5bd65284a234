package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
)

// MatchFilter narrows a match listing. A zero Round means the current round.
// When both Unplayed and Completed are set, Unplayed wins.
type MatchFilter struct {
	Round     int
	Group     string
	Unplayed  bool
	Completed bool
}

// MatchList is a round's matches together with the round they belong to.
type MatchList struct {
	Round   int
	Matches []snooker.Match
}

// MatchService serves read access to fixtures, players and rounds.
type MatchService struct {
	ledger snooker.Ledger
}

func NewMatchService(ledger snooker.Ledger) *MatchService {
	return &MatchService{ledger: ledger}
}

func (s *MatchService) ListMatches(ctx context.Context, filter MatchFilter) (MatchList, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListMatches")
	defer span.End()

	if filter.Round < 0 {
		return MatchList{}, fmt.Errorf("%w: round must not be negative", ErrInvalidInput)
	}
	round := filter.Round
	if round == 0 {
		current, err := s.ledger.CurrentRound(ctx)
		if err != nil {
			return MatchList{}, fmt.Errorf("get current round: %w", err)
		}
		round = current
	}

	matches, err := s.ledger.GetFixturesForRound(ctx, round)
	if err != nil {
		return MatchList{}, fmt.Errorf("get fixtures for round %d: %w", round, err)
	}

	group := strings.TrimSpace(filter.Group)
	out := make([]snooker.Match, 0, len(matches))
	for _, m := range matches {
		if group != "" && m.Group != group {
			continue
		}
		switch {
		case filter.Unplayed && m.Completed():
			continue
		case filter.Completed && !filter.Unplayed && !m.Completed():
			continue
		}
		out = append(out, m)
	}

	return MatchList{Round: round, Matches: out}, nil
}

func (s *MatchService) GetMatch(ctx context.Context, matchID string) (snooker.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return snooker.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	match, err := s.ledger.GetFixtureByID(ctx, matchID)
	if err != nil {
		return snooker.Match{}, fmt.Errorf("get fixture %s: %w", matchID, err)
	}
	return match, nil
}

func (s *MatchService) ListPlayers(ctx context.Context) ([]snooker.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListPlayers")
	defer span.End()

	players, err := s.ledger.GetCurrentPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("get current players: %w", err)
	}
	return players, nil
}

func (s *MatchService) CurrentRound(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CurrentRound")
	defer span.End()

	round, err := s.ledger.CurrentRound(ctx)
	if err != nil {
		return 0, fmt.Errorf("get current round: %w", err)
	}
	return round, nil
}
