package cache

import (
	"context"
	"testing"
	"time"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
	basecache "github.com/cueleague/snooker-scores/internal/platform/cache"
)

type countingLedger struct {
	players  []snooker.Player
	round    int
	fixtures map[int][]snooker.Match

	playersCalls int
	roundCalls   int
	listCalls    int
	byIDCalls    int
	updateCalls  int
}

func (c *countingLedger) GetCurrentPlayers(context.Context) ([]snooker.Player, error) {
	c.playersCalls++
	return c.players, nil
}

func (c *countingLedger) CurrentRound(context.Context) (int, error) {
	c.roundCalls++
	return c.round, nil
}

func (c *countingLedger) GetFixturesForRound(_ context.Context, round int) ([]snooker.Match, error) {
	c.listCalls++
	return c.fixtures[round], nil
}

func (c *countingLedger) GetFixtureByID(_ context.Context, matchID string) (snooker.Match, error) {
	c.byIDCalls++
	for _, matches := range c.fixtures {
		for _, m := range matches {
			if m.ID == matchID {
				return m, nil
			}
		}
	}
	return snooker.Match{}, snooker.ErrMatchNotFound
}

func (c *countingLedger) AppendFixtureRows(_ context.Context, matches []snooker.Match) error {
	for _, m := range matches {
		c.fixtures[m.Round] = append(c.fixtures[m.Round], m)
	}
	return nil
}

func (c *countingLedger) AppendBreakRow(context.Context, snooker.BreakRecord) error {
	return nil
}

func (c *countingLedger) UpdateFixtureRow(_ context.Context, _ string, _ map[string]any) error {
	c.updateCalls++
	return nil
}

func testMatch(t *testing.T, id string, round int) snooker.Match {
	t.Helper()
	m, err := snooker.RehydrateMatch(id, round, "L1",
		snooker.Player{Name: "Virtanen Aatos", Group: "L1"},
		snooker.Player{Name: "Mäkinen Joonas", Group: "L1"},
		snooker.LeagueFormat, nil)
	if err != nil {
		t.Fatalf("rehydrate match: %v", err)
	}
	return m
}

func newCachedLedger(t *testing.T) (*Ledger, *countingLedger) {
	t.Helper()
	next := &countingLedger{
		players: []snooker.Player{{Name: "Virtanen Aatos", Group: "L1"}},
		round:   2,
		fixtures: map[int][]snooker.Match{
			1: {testMatch(t, "kq3wr", 1)},
		},
	}
	return NewLedger(next, basecache.NewStore(time.Minute)), next
}

func TestCachedLedger_ServesRepeatReadsFromCache(t *testing.T) {
	ctx := context.Background()
	cached, next := newCachedLedger(t)

	for i := 0; i < 3; i++ {
		players, err := cached.GetCurrentPlayers(ctx)
		if err != nil {
			t.Fatalf("get players: %v", err)
		}
		if len(players) != 1 {
			t.Fatalf("expected 1 player, got %d", len(players))
		}

		round, err := cached.CurrentRound(ctx)
		if err != nil {
			t.Fatalf("current round: %v", err)
		}
		if round != 2 {
			t.Fatalf("expected round 2, got %d", round)
		}

		matches, err := cached.GetFixturesForRound(ctx, 1)
		if err != nil {
			t.Fatalf("fixtures for round: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
	}

	if next.playersCalls != 1 || next.roundCalls != 1 || next.listCalls != 1 {
		t.Fatalf("expected one backend call per key, got players=%d round=%d list=%d",
			next.playersCalls, next.roundCalls, next.listCalls)
	}
}

func TestCachedLedger_ByIDAlwaysHitsBackend(t *testing.T) {
	ctx := context.Background()
	cached, next := newCachedLedger(t)

	for i := 0; i < 2; i++ {
		if _, err := cached.GetFixtureByID(ctx, "kq3wr"); err != nil {
			t.Fatalf("get fixture by id: %v", err)
		}
	}
	if next.byIDCalls != 2 {
		t.Fatalf("expected 2 backend reads, got %d", next.byIDCalls)
	}
}

func TestCachedLedger_WritesInvalidateRoundListings(t *testing.T) {
	ctx := context.Background()
	cached, next := newCachedLedger(t)

	if _, err := cached.GetFixturesForRound(ctx, 1); err != nil {
		t.Fatalf("fixtures for round: %v", err)
	}

	fields := map[string]any{snooker.ColumnWinner: "Virtanen Aatos"}
	if err := cached.UpdateFixtureRow(ctx, "kq3wr", fields); err != nil {
		t.Fatalf("update fixture row: %v", err)
	}

	if _, err := cached.GetFixturesForRound(ctx, 1); err != nil {
		t.Fatalf("fixtures for round: %v", err)
	}
	if next.listCalls != 2 {
		t.Fatalf("expected listing to reload after update, got %d calls", next.listCalls)
	}

	if err := cached.AppendFixtureRows(ctx, []snooker.Match{testMatch(t, "ab2cd", 1)}); err != nil {
		t.Fatalf("append fixture rows: %v", err)
	}
	matches, err := cached.GetFixturesForRound(ctx, 1)
	if err != nil {
		t.Fatalf("fixtures for round: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected appended fixture to show up, got %d matches", len(matches))
	}
}

func TestCachedLedger_FlushDropsEverything(t *testing.T) {
	ctx := context.Background()
	cached, next := newCachedLedger(t)

	if _, err := cached.GetCurrentPlayers(ctx); err != nil {
		t.Fatalf("get players: %v", err)
	}
	if _, err := cached.CurrentRound(ctx); err != nil {
		t.Fatalf("current round: %v", err)
	}

	cached.FlushLedgerCache()

	if _, err := cached.GetCurrentPlayers(ctx); err != nil {
		t.Fatalf("get players: %v", err)
	}
	if _, err := cached.CurrentRound(ctx); err != nil {
		t.Fatalf("current round: %v", err)
	}
	if next.playersCalls != 2 || next.roundCalls != 2 {
		t.Fatalf("expected reloads after flush, got players=%d round=%d",
			next.playersCalls, next.roundCalls)
	}
}
