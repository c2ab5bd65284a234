package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
)

// GenerateFixturesInput controls fixture generation for one round.
type GenerateFixturesInput struct {
	Round int
	// Groups narrows generation to the named groups. Empty means every
	// group on the roster.
	Groups []string
	// DryRun computes the pairings without touching the ledger.
	DryRun bool
}

type GenerateFixturesResult struct {
	Round        int             `json:"round"`
	GroupCount   int             `json:"group_count"`
	FixtureCount int             `json:"fixture_count"`
	Fixtures     []snooker.Match `json:"-"`
}

// FixtureService creates the round-robin fixture list for a round: every
// pair of players within a group meets exactly once.
type FixtureService struct {
	ledger snooker.Ledger
	idgen  snooker.IDGenerator
	format snooker.Format
}

func NewFixtureService(ledger snooker.Ledger, idgen snooker.IDGenerator, format snooker.Format) *FixtureService {
	return &FixtureService{
		ledger: ledger,
		idgen:  idgen,
		format: format,
	}
}

func (s *FixtureService) GenerateRound(ctx context.Context, input GenerateFixturesInput) (GenerateFixturesResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.GenerateRound")
	defer span.End()

	if input.Round <= 0 {
		return GenerateFixturesResult{}, fmt.Errorf("%w: round must be positive", ErrInvalidInput)
	}

	players, err := s.ledger.GetCurrentPlayers(ctx)
	if err != nil {
		return GenerateFixturesResult{}, fmt.Errorf("get current players: %w", err)
	}

	byGroup := make(map[string][]snooker.Player)
	for _, p := range players {
		byGroup[p.Group] = append(byGroup[p.Group], p)
	}

	groups, err := selectGroups(byGroup, input.Groups)
	if err != nil {
		return GenerateFixturesResult{}, err
	}

	var fixtures []snooker.Match
	for _, group := range groups {
		members := byGroup[group]
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				m, err := snooker.NewMatch(s.idgen, group, members[i].Name, members[j].Name, input.Round, s.format)
				if err != nil {
					return GenerateFixturesResult{}, fmt.Errorf("create fixture %s vs %s: %w", members[i].Name, members[j].Name, err)
				}
				fixtures = append(fixtures, m)
			}
		}
	}

	result := GenerateFixturesResult{
		Round:        input.Round,
		GroupCount:   len(groups),
		FixtureCount: len(fixtures),
		Fixtures:     fixtures,
	}
	if input.DryRun || len(fixtures) == 0 {
		return result, nil
	}
	if err := s.ledger.AppendFixtureRows(ctx, fixtures); err != nil {
		return GenerateFixturesResult{}, fmt.Errorf("%w: append fixture rows: %w", snooker.ErrLedgerWrite, err)
	}

	return result, nil
}

func selectGroups(byGroup map[string][]snooker.Player, want []string) ([]string, error) {
	if len(want) == 0 {
		groups := make([]string, 0, len(byGroup))
		for g := range byGroup {
			groups = append(groups, g)
		}
		sort.Strings(groups)
		return groups, nil
	}

	seen := make(map[string]struct{}, len(want))
	out := make([]string, 0, len(want))
	for _, g := range want {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, ok := byGroup[g]; !ok {
			return nil, fmt.Errorf("%w: group %s has no players on the roster", ErrNotFound, g)
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no groups requested", ErrInvalidInput)
	}
	sort.Strings(out)
	return out, nil
}
