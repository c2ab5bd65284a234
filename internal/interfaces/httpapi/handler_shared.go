package httpapi

import (
	"context"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
	"github.com/cueleague/snooker-scores/internal/usecase"
)

type submitScoresRequest struct {
	Player1Score int                  `json:"player1_score" validate:"min=0"`
	Player2Score int                  `json:"player2_score" validate:"min=0"`
	Date         string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Breaks       []submitBreakRequest `json:"breaks" validate:"omitempty,dive"`
}

type submitBreakRequest struct {
	Player string `json:"player" validate:"required,oneof=player1 player2"`
	Points int    `json:"points"`
}

type generateFixturesRequest struct {
	Round  int      `json:"round" validate:"required,min=1"`
	Groups []string `json:"groups" validate:"omitempty,dive,required"`
	DryRun bool     `json:"dry_run"`
}

type refreshCacheRequest struct {
	Rounds     []int    `json:"rounds" validate:"omitempty,dive,min=1"`
	Kinds      []string `json:"kinds" validate:"omitempty,dive,required"`
	MaxWorkers int      `json:"max_workers" validate:"omitempty,min=1"`
	Flush      bool     `json:"flush"`
}

type matchDTO struct {
	ID           string     `json:"id"`
	Round        int        `json:"round"`
	Group        string     `json:"group"`
	Player1      string     `json:"player1"`
	Player2      string     `json:"player2"`
	BestOf       int        `json:"best_of"`
	State        string     `json:"state"`
	Player1Score *int       `json:"player1_score,omitempty"`
	Player2Score *int       `json:"player2_score,omitempty"`
	Score        string     `json:"score,omitempty"`
	Winner       string     `json:"winner,omitempty"`
	Date         string     `json:"date,omitempty"`
	Breaks       []breakDTO `json:"breaks,omitempty"`
}

type breakDTO struct {
	Player string `json:"player"`
	Points int    `json:"points"`
}

type playerDTO struct {
	Name  string `json:"name"`
	Group string `json:"group"`
}

type matchListDTO struct {
	Round   int        `json:"round"`
	Matches []matchDTO `json:"matches"`
}

type reportReceiptDTO struct {
	Reply    string    `json:"reply"`
	Recorded bool      `json:"recorded"`
	Match    *matchDTO `json:"match,omitempty"`
}

type generateFixturesResponse struct {
	Round        int        `json:"round"`
	GroupCount   int        `json:"group_count"`
	FixtureCount int        `json:"fixture_count"`
	DryRun       bool       `json:"dry_run"`
	Fixtures     []matchDTO `json:"fixtures"`
}

func matchToDTO(ctx context.Context, m snooker.Match) matchDTO {
	ctx, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	dto := matchDTO{
		ID:      m.ID,
		Round:   m.Round,
		Group:   m.Group,
		Player1: m.Player1.Name,
		Player2: m.Player2.Name,
		BestOf:  m.Format.BestOf,
		State:   m.State(),
	}
	if m.Outcome == nil {
		return dto
	}

	p1 := m.Outcome.Player1Score
	p2 := m.Outcome.Player2Score
	dto.Player1Score = &p1
	dto.Player2Score = &p2
	dto.Score = m.Outcome.Scoreline()
	if winner, ok := m.Winner(); ok {
		dto.Winner = winner.Name
	}
	if !m.Outcome.Date.IsZero() {
		dto.Date = m.Outcome.Date.Format(scoreDateLayout)
	}
	for _, b := range m.Outcome.Breaks {
		dto.Breaks = append(dto.Breaks, breakDTO{Player: b.Player.Name, Points: b.Points})
	}

	return dto
}

func matchListToDTO(ctx context.Context, list usecase.MatchList) matchListDTO {
	ctx, span := startSpan(ctx, "httpapi.matchListToDTO")
	defer span.End()

	items := make([]matchDTO, 0, len(list.Matches))
	for _, m := range list.Matches {
		items = append(items, matchToDTO(ctx, m))
	}

	return matchListDTO{Round: list.Round, Matches: items}
}

func receiptToDTO(ctx context.Context, receipt usecase.ReportReceipt) reportReceiptDTO {
	ctx, span := startSpan(ctx, "httpapi.receiptToDTO")
	defer span.End()

	dto := reportReceiptDTO{
		Reply:    receipt.Reply,
		Recorded: receipt.Recorded,
	}
	if receipt.Recorded {
		match := matchToDTO(ctx, receipt.Match)
		dto.Match = &match
	}

	return dto
}

func generateResultToDTO(ctx context.Context, result usecase.GenerateFixturesResult, dryRun bool) generateFixturesResponse {
	ctx, span := startSpan(ctx, "httpapi.generateResultToDTO")
	defer span.End()

	fixtures := make([]matchDTO, 0, len(result.Fixtures))
	for _, m := range result.Fixtures {
		fixtures = append(fixtures, matchToDTO(ctx, m))
	}

	return generateFixturesResponse{
		Round:        result.Round,
		GroupCount:   result.GroupCount,
		FixtureCount: result.FixtureCount,
		DryRun:       dryRun,
		Fixtures:     fixtures,
	}
}
