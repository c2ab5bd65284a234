package cache

import (
	"context"
	"strconv"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
	basecache "github.com/cueleague/snooker-scores/internal/platform/cache"
)

const (
	ledgerKeyPrefix       = "ledger:"
	playersKey            = "ledger:players"
	currentRoundKey       = "ledger:round:current"
	fixturesByRoundPrefix = "ledger:fixtures:round:"
)

// Ledger is a read-through cache over another ledger. Roster, rounds and
// round listings are cached and may be served stale within the store's TTL.
// GetFixtureByID always passes through: the recording path re-reads the
// fixture right before writing, and that read has to see the backend.
type Ledger struct {
	next  snooker.Ledger
	cache *basecache.Store
}

func NewLedger(next snooker.Ledger, cache *basecache.Store) *Ledger {
	return &Ledger{next: next, cache: cache}
}

// FlushLedgerCache drops every cached ledger read.
func (l *Ledger) FlushLedgerCache() {
	l.cache.DeletePrefix(context.Background(), ledgerKeyPrefix)
}

func (l *Ledger) GetCurrentPlayers(ctx context.Context) ([]snooker.Player, error) {
	v, err := l.cache.GetOrLoad(ctx, playersKey, func(ctx context.Context) (any, error) {
		players, err := l.next.GetCurrentPlayers(ctx)
		if err != nil {
			return nil, err
		}
		return append([]snooker.Player(nil), players...), nil
	})
	if err != nil {
		return nil, err
	}

	players, _ := v.([]snooker.Player)
	return append([]snooker.Player(nil), players...), nil
}

func (l *Ledger) CurrentRound(ctx context.Context) (int, error) {
	v, err := l.cache.GetOrLoad(ctx, currentRoundKey, func(ctx context.Context) (any, error) {
		round, err := l.next.CurrentRound(ctx)
		if err != nil {
			return nil, err
		}
		return round, nil
	})
	if err != nil {
		return 0, err
	}

	round, _ := v.(int)
	return round, nil
}

func (l *Ledger) GetFixturesForRound(ctx context.Context, round int) ([]snooker.Match, error) {
	key := fixturesByRoundPrefix + strconv.Itoa(round)
	v, err := l.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		matches, err := l.next.GetFixturesForRound(ctx, round)
		if err != nil {
			return nil, err
		}
		return append([]snooker.Match(nil), matches...), nil
	})
	if err != nil {
		return nil, err
	}

	matches, _ := v.([]snooker.Match)
	return append([]snooker.Match(nil), matches...), nil
}

func (l *Ledger) GetFixtureByID(ctx context.Context, matchID string) (snooker.Match, error) {
	return l.next.GetFixtureByID(ctx, matchID)
}

func (l *Ledger) AppendFixtureRows(ctx context.Context, matches []snooker.Match) error {
	if err := l.next.AppendFixtureRows(ctx, matches); err != nil {
		return err
	}
	l.cache.DeletePrefix(ctx, fixturesByRoundPrefix)
	return nil
}

func (l *Ledger) AppendBreakRow(ctx context.Context, rec snooker.BreakRecord) error {
	return l.next.AppendBreakRow(ctx, rec)
}

func (l *Ledger) UpdateFixtureRow(ctx context.Context, matchID string, fields map[string]any) error {
	if err := l.next.UpdateFixtureRow(ctx, matchID, fields); err != nil {
		return err
	}
	// The round of the written row is not known here, so every round listing
	// goes.
	l.cache.DeletePrefix(ctx, fixturesByRoundPrefix)
	return nil
}
