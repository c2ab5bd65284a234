package postgres

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(nil, Config{
		Format:   snooker.LeagueFormat,
		Location: time.FixedZone("EET", 2*60*60),
		Now:      func() time.Time { return time.Date(2026, time.February, 20, 12, 0, 0, 0, time.UTC) },
	})
}

func TestMatch_DecodesOutcomeFromScoreColumns(t *testing.T) {
	l := testLedger(t)

	t.Run("both scores null is unplayed", func(t *testing.T) {
		m, err := l.match(fixtureTableModel{
			MatchID:     "kq3wr",
			Round:       1,
			GroupName:   "L1",
			Player1Name: "Virtanen Aatos",
			Player2Name: "Mäkinen Joonas",
		})
		if err != nil {
			t.Fatalf("match: %v", err)
		}
		if m.Completed() {
			t.Fatalf("expected unplayed match")
		}
		if m.Player1.Group != "L1" || m.Player2.Group != "L1" {
			t.Fatalf("players should carry the fixture group, got %q and %q", m.Player1.Group, m.Player2.Group)
		}
	})

	t.Run("both scores set is completed", func(t *testing.T) {
		m, err := l.match(fixtureTableModel{
			MatchID:      "zt8mh",
			Round:        2,
			GroupName:    "L1",
			Player1Name:  "Korhonen Elias",
			Player2Name:  "Virtanen Aatos",
			PlayedOn:     sql.NullTime{Time: time.Date(2026, time.February, 7, 0, 0, 0, 0, time.UTC), Valid: true},
			Player1Score: sql.NullInt64{Int64: 2, Valid: true},
			Player2Score: sql.NullInt64{Int64: 1, Valid: true},
		})
		if err != nil {
			t.Fatalf("match: %v", err)
		}
		if !m.Completed() {
			t.Fatalf("expected completed match")
		}
		winner, _ := m.Winner()
		if winner.Name != "Korhonen Elias" {
			t.Fatalf("unexpected winner %q", winner.Name)
		}
		if got := m.Outcome.Date; got.Year() != 2026 || got.Month() != time.February || got.Day() != 7 {
			t.Fatalf("unexpected outcome date %v", got)
		}
		if got := m.Outcome.Date.Location().String(); got != "EET" {
			t.Fatalf("outcome date should be on the league clock, got %s", got)
		}
	})

	t.Run("half-filled scoreline is a corrupt row", func(t *testing.T) {
		_, err := l.match(fixtureTableModel{
			MatchID:      "bad42",
			Round:        1,
			GroupName:    "L1",
			Player1Name:  "Virtanen Aatos",
			Player2Name:  "Mäkinen Joonas",
			Player1Score: sql.NullInt64{Int64: 2, Valid: true},
		})
		if err == nil {
			t.Fatalf("expected error for half-filled scoreline")
		}
	})

	t.Run("stored scoreline must satisfy the format", func(t *testing.T) {
		_, err := l.match(fixtureTableModel{
			MatchID:      "bad43",
			Round:        1,
			GroupName:    "L1",
			Player1Name:  "Virtanen Aatos",
			Player2Name:  "Mäkinen Joonas",
			Player1Score: sql.NullInt64{Int64: 5, Valid: true},
			Player2Score: sql.NullInt64{Int64: 0, Valid: true},
		})
		if !errors.Is(err, snooker.ErrInvalidScoreline) {
			t.Fatalf("expected invalid scoreline error, got %v", err)
		}
	})
}

func TestFixtureColumns_CoverEveryLedgerField(t *testing.T) {
	names := []string{
		snooker.ColumnID,
		snooker.ColumnRound,
		snooker.ColumnGroup,
		snooker.ColumnPlayer1,
		snooker.ColumnPlayer2,
		snooker.ColumnDate,
		snooker.ColumnPlayer1Score,
		snooker.ColumnPlayer2Score,
		snooker.ColumnWinner,
		snooker.ColumnLog,
	}
	for _, name := range names {
		if _, ok := fixtureColumns[name]; !ok {
			t.Fatalf("no SQL column mapped for ledger field %q", name)
		}
	}
}

func TestDay_ReducesToLeagueCalendarDay(t *testing.T) {
	l := testLedger(t)

	// 23:30 UTC is already the next day in EET.
	late := time.Date(2026, time.February, 13, 23, 30, 0, 0, time.UTC)
	got := l.day(late)
	want := time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNullDay_ZeroTimeIsNull(t *testing.T) {
	l := testLedger(t)
	if l.nullDay(time.Time{}).Valid {
		t.Fatalf("zero time should store as NULL")
	}
	if !l.nullDay(time.Date(2026, time.February, 7, 18, 0, 0, 0, time.UTC)).Valid {
		t.Fatalf("set time should store as a value")
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if isNotFound(errors.New("boom")) {
		t.Fatalf("expected false for unrelated error")
	}
}
