package snooker

import (
	"errors"
	"testing"
	"time"
)

type stubIDGen struct {
	id  string
	err error
}

func (s stubIDGen) NewMatchID() (string, error) {
	return s.id, s.err
}

func testMatch(t *testing.T) Match {
	t.Helper()
	m, err := NewMatch(stubIDGen{id: "kx7p2"}, "L1", "Virtanen Aatos", "Mäkinen Joonas", 1, LeagueFormat)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return m
}

func TestNewMatch(t *testing.T) {
	m := testMatch(t)
	if m.ID != "kx7p2" {
		t.Fatalf("expected generated id, got %q", m.ID)
	}
	if m.Completed() {
		t.Fatal("new match must be unplayed")
	}
	if m.State() != StateUnplayed {
		t.Fatalf("expected state %q, got %q", StateUnplayed, m.State())
	}
	if m.Player1.Group != "L1" || m.Player2.Group != "L1" {
		t.Fatalf("players must carry the match group, got %q and %q", m.Player1.Group, m.Player2.Group)
	}
}

func TestNewMatchRejectsSelfPairing(t *testing.T) {
	_, err := NewMatch(stubIDGen{id: "kx7p2"}, "L1", "Virtanen Aatos", "Virtanen Aatos", 1, LeagueFormat)
	if !errors.Is(err, ErrInvalidMatch) {
		t.Fatalf("expected ErrInvalidMatch, got %v", err)
	}
}

func TestAttachOutcomeScorelines(t *testing.T) {
	tests := []struct {
		name      string
		p1, p2    int
		targetErr error
	}{
		{name: "clean win", p1: 2, p2: 0, targetErr: nil},
		{name: "decider win", p1: 2, p2: 1, targetErr: nil},
		{name: "decider loss", p1: 1, p2: 2, targetErr: nil},
		{name: "unfinished", p1: 1, p2: 1, targetErr: ErrInvalidScoreline},
		{name: "too many frames", p1: 3, p2: 1, targetErr: ErrInvalidScoreline},
		{name: "drawn at threshold", p1: 2, p2: 2, targetErr: ErrInvalidScoreline},
		{name: "negative frames", p1: 2, p2: -1, targetErr: ErrInvalidScoreline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMatch(t)
			_, err := m.AttachOutcome(NewOutcome(time.Now(), tt.p1, tt.p2, nil))
			if tt.targetErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected error %v, got %v", tt.targetErr, err)
			}
		})
	}
}

func TestAttachOutcomeBreaks(t *testing.T) {
	tests := []struct {
		name      string
		breaks    []Break
		targetErr error
	}{
		{
			name:   "breaks by both players",
			breaks: []Break{{Player: Player{Name: "Virtanen Aatos"}, Points: 54}, {Player: Player{Name: "Mäkinen Joonas"}, Points: 32}},
		},
		{
			name:   "maximum break",
			breaks: []Break{{Player: Player{Name: "Virtanen Aatos"}, Points: 147}},
		},
		{
			name:      "points above maximum",
			breaks:    []Break{{Player: Player{Name: "Virtanen Aatos"}, Points: 167}},
			targetErr: ErrInvalidBreakPoints,
		},
		{
			name:      "zero points",
			breaks:    []Break{{Player: Player{Name: "Virtanen Aatos"}, Points: 0}},
			targetErr: ErrInvalidBreakPoints,
		},
		{
			name:      "break by outsider",
			breaks:    []Break{{Player: Player{Name: "Rantanen Lauri"}, Points: 50}},
			targetErr: ErrInvalidBreakAttribution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMatch(t)
			_, err := m.AttachOutcome(NewOutcome(time.Now(), 2, 1, tt.breaks))
			if tt.targetErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected error %v, got %v", tt.targetErr, err)
			}
		})
	}
}

func TestAttachOutcomeOnlyOnce(t *testing.T) {
	m := testMatch(t)
	played, err := m.AttachOutcome(NewOutcome(time.Now(), 2, 0, nil))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !played.Completed() || played.State() != StateCompleted {
		t.Fatal("match with outcome must be completed")
	}
	if m.Completed() {
		t.Fatal("original match value must stay unplayed")
	}
	_, err = played.AttachOutcome(NewOutcome(time.Now(), 2, 1, nil))
	if !errors.Is(err, ErrMatchAlreadyCompleted) {
		t.Fatalf("expected ErrMatchAlreadyCompleted, got %v", err)
	}
}

func TestAttachOutcomeSortsBreaks(t *testing.T) {
	m := testMatch(t)
	played, err := m.AttachOutcome(Outcome{
		Date:         time.Now(),
		Player1Score: 2,
		Player2Score: 1,
		Breaks: []Break{
			{Player: m.Player2, Points: 30},
			{Player: m.Player1, Points: 100},
			{Player: m.Player1, Points: 50},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got := played.Outcome.Breaks
	if got[0].Points != 100 || got[1].Points != 50 || got[2].Points != 30 {
		t.Fatalf("breaks not sorted highest first: %v", got)
	}
	top, ok := played.HighestBreak()
	if !ok || top.Points != 100 {
		t.Fatalf("expected highest break 100, got %v %v", top, ok)
	}
}

func TestWinnerAndLoser(t *testing.T) {
	m := testMatch(t)
	if _, ok := m.Winner(); ok {
		t.Fatal("unplayed match must not have a winner")
	}

	played, err := m.AttachOutcome(NewOutcome(time.Now(), 1, 2, nil))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	winner, ok := played.Winner()
	if !ok || winner.Name != "Mäkinen Joonas" {
		t.Fatalf("expected winner Mäkinen Joonas, got %v %v", winner, ok)
	}
	loser, ok := played.Loser()
	if !ok || loser.Name != "Virtanen Aatos" {
		t.Fatalf("expected loser Virtanen Aatos, got %v %v", loser, ok)
	}
	if got := played.Outcome.Scoreline(); got != "1-2" {
		t.Fatalf("scoreline must stay in fixture order, got %q", got)
	}
}

func TestSummary(t *testing.T) {
	m, err := NewMatch(stubIDGen{id: "abc23"}, "L1", "Trump Judd", "Selby Mark", 1, LeagueFormat)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	played, err := m.AttachOutcome(NewOutcome(time.Now(), 1, 2, []Break{
		{Player: Player{Name: "Selby Mark"}, Points: 50},
		{Player: Player{Name: "Trump Judd"}, Points: 100},
		{Player: Player{Name: "Trump Judd"}, Points: 30},
	}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := "Selby Mark won Trump Judd by 2 frames to 1. Breaks: Judd 100, Mark 50, Judd 30."
	if got := played.Summary(); got != want {
		t.Fatalf("summary mismatch:\n got %q\nwant %q", got, want)
	}

	if got, want := m.Summary(), "Trump Judd vs Selby Mark"; got != want {
		t.Fatalf("unplayed summary mismatch: got %q, want %q", got, want)
	}
}

func TestRehydrateMatch(t *testing.T) {
	outcome := NewOutcome(time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), 2, 1, []Break{
		{Player: Player{Name: "Virtanen Aatos", Group: "L1"}, Points: 62},
	})

	tests := []struct {
		name      string
		id        string
		group     string
		p1, p2    Player
		format    Format
		outcome   *Outcome
		targetErr error
	}{
		{
			name:    "completed fixture",
			id:      "kx7p2",
			group:   "L1",
			p1:      Player{Name: "Virtanen Aatos", Group: "L1"},
			p2:      Player{Name: "Mäkinen Joonas", Group: "L1"},
			format:  LeagueFormat,
			outcome: &outcome,
		},
		{
			name:   "unplayed fixture",
			id:     "kx7p2",
			group:  "L1",
			p1:     Player{Name: "Virtanen Aatos", Group: "L1"},
			p2:     Player{Name: "Mäkinen Joonas", Group: "L1"},
			format: LeagueFormat,
		},
		{
			name:      "empty id",
			group:     "L1",
			p1:        Player{Name: "Virtanen Aatos", Group: "L1"},
			p2:        Player{Name: "Mäkinen Joonas", Group: "L1"},
			format:    LeagueFormat,
			targetErr: ErrInvalidMatch,
		},
		{
			name:      "same player twice",
			id:        "kx7p2",
			group:     "L1",
			p1:        Player{Name: "Virtanen Aatos", Group: "L1"},
			p2:        Player{Name: "Virtanen Aatos", Group: "L1"},
			format:    LeagueFormat,
			targetErr: ErrInvalidMatch,
		},
		{
			name:      "player from another group",
			id:        "kx7p2",
			group:     "L1",
			p1:        Player{Name: "Virtanen Aatos", Group: "L1"},
			p2:        Player{Name: "Rantanen Lauri", Group: "L2"},
			format:    LeagueFormat,
			targetErr: ErrGroupMismatch,
		},
		{
			name:      "even best-of",
			id:        "kx7p2",
			group:     "L1",
			p1:        Player{Name: "Virtanen Aatos", Group: "L1"},
			p2:        Player{Name: "Mäkinen Joonas", Group: "L1"},
			format:    Format{BestOf: 4, Reds: 15},
			targetErr: ErrInvalidMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := RehydrateMatch(tt.id, 1, tt.group, tt.p1, tt.p2, tt.format, tt.outcome)
			if tt.targetErr != nil {
				if !errors.Is(err, tt.targetErr) {
					t.Fatalf("expected error %v, got %v", tt.targetErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if m.Completed() != (tt.outcome != nil) {
				t.Fatalf("completed = %v with outcome %v", m.Completed(), tt.outcome)
			}
		})
	}
}

func TestFormatFramesToWin(t *testing.T) {
	if got := LeagueFormat.FramesToWin(); got != 2 {
		t.Fatalf("best-of-3 needs 2 frames, got %d", got)
	}
	if got := SixRedFormat.FramesToWin(); got != 3 {
		t.Fatalf("best-of-5 needs 3 frames, got %d", got)
	}
}

func TestFormatByName(t *testing.T) {
	f, err := FormatByName("six-red")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if f != SixRedFormat {
		t.Fatalf("expected six-red format, got %+v", f)
	}
	if _, err := FormatByName("exhibition"); !errors.Is(err, ErrInvalidMatch) {
		t.Fatalf("expected ErrInvalidMatch, got %v", err)
	}
}
