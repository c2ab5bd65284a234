package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
)

type stubFlusher struct{ calls int }

func (s *stubFlusher) FlushLedgerCache() { s.calls++ }

type brokenRoundLedger struct{ *fakeLedger }

func (brokenRoundLedger) CurrentRound(context.Context) (int, error) {
	return 0, errors.New("backend down")
}

func TestRefreshService_Refresh_AllKinds(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	ledger.addFixture(t, "kx7p2", "L1", "Virtanen Aatos", "Mäkinen Joonas", 1)

	flusher := &stubFlusher{}
	svc := NewRefreshService(ledger, flusher)

	result, err := svc.Refresh(context.Background(), RefreshInput{Flush: true})
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	if result.TaskCount != 3 {
		t.Fatalf("expected 3 tasks, got %d", result.TaskCount)
	}
	if result.SuccessCount != 3 || result.FailedCount != 0 || result.SkippedCount != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if !result.Flushed || flusher.calls != 1 {
		t.Fatalf("expected one cache flush, got flushed=%v calls=%d", result.Flushed, flusher.calls)
	}
	if len(result.Tasks) != 3 {
		t.Fatalf("expected 3 task rows, got %d", len(result.Tasks))
	}
	// Rows come back sorted by kind.
	wantKinds := []string{"fixtures", "players", "round"}
	for i, want := range wantKinds {
		if result.Tasks[i].Kind != want {
			t.Fatalf("task %d: expected kind %s, got %s", i, want, result.Tasks[i].Kind)
		}
	}
	for _, row := range result.Tasks {
		if row.Status != refreshStatusSuccess {
			t.Fatalf("task %s: expected success, got %s (%s)", row.Kind, row.Status, row.Message)
		}
		if row.Records == 0 {
			t.Fatalf("task %s: expected a record count", row.Kind)
		}
	}
}

func TestRefreshService_Refresh_SkipsEmptyLedger(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	ledger.players = nil
	ledger.round = 0

	svc := NewRefreshService(ledger, nil)
	result, err := svc.Refresh(context.Background(), RefreshInput{})
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	// With no open round there is nothing to warm fixtures for.
	if result.TaskCount != 2 {
		t.Fatalf("expected 2 tasks, got %d", result.TaskCount)
	}
	if result.SkippedCount != 2 || result.SuccessCount != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.Flushed {
		t.Fatal("no flusher is wired, nothing may report flushed")
	}
}

func TestRefreshService_Refresh_ExplicitRounds(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	ledger.addFixture(t, "kx7p2", "L1", "Virtanen Aatos", "Mäkinen Joonas", 1)

	svc := NewRefreshService(ledger, nil)
	result, err := svc.Refresh(context.Background(), RefreshInput{
		Rounds: []int{2, 2, 1},
		Kinds:  []string{"fixtures"},
	})
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	if result.TaskCount != 2 {
		t.Fatalf("expected one task per distinct round, got %d", result.TaskCount)
	}
	if result.SuccessCount != 1 || result.SkippedCount != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.Tasks[0].Round != 1 || result.Tasks[1].Round != 2 {
		t.Fatalf("expected rounds sorted ascending, got %+v", result.Tasks)
	}
	if result.Tasks[1].Message != "round 2 has no fixtures" {
		t.Fatalf("unexpected skip message: %q", result.Tasks[1].Message)
	}
}

func TestRefreshService_Refresh_TaskFailure(t *testing.T) {
	t.Parallel()

	svc := NewRefreshService(brokenRoundLedger{newFakeLedger()}, nil)
	result, err := svc.Refresh(context.Background(), RefreshInput{
		Rounds: []int{1},
		Kinds:  []string{"round"},
	})
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if result.FailedCount != 1 {
		t.Fatalf("expected 1 failed task, got %+v", result)
	}
	if result.Tasks[0].Message == "" {
		t.Fatal("failed task must carry the backend error message")
	}
}

func TestRefreshService_Refresh_InputValidation(t *testing.T) {
	t.Parallel()

	svc := NewRefreshService(newFakeLedger(), nil)

	if _, err := svc.Refresh(context.Background(), RefreshInput{Kinds: []string{"standings"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), RefreshInput{Rounds: []int{-1}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative round, got %v", err)
	}
}

func TestRefreshService_Refresh_WorkerCap(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	ledger.addFixture(t, "kx7p2", "L1", "Virtanen Aatos", "Mäkinen Joonas", 1)

	svc := NewRefreshService(ledger, nil)
	result, err := svc.Refresh(context.Background(), RefreshInput{MaxWorkers: 16})
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if result.WorkerCount != 2 {
		t.Fatalf("expected worker count capped at 2, got %d", result.WorkerCount)
	}
}

func TestRefreshService_Refresh_KindAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kinds []string
		want  []string
	}{
		{name: "roster alias", kinds: []string{"roster"}, want: []string{"players"}},
		{name: "matches alias", kinds: []string{"matches"}, want: []string{"fixtures"}},
		{name: "case and duplicates collapse", kinds: []string{"Round", "ROUND", "rounds"}, want: []string{"round"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ledger := newFakeLedger()
			ledger.addFixture(t, "kx7p2", "L1", "Virtanen Aatos", "Mäkinen Joonas", 1)

			svc := NewRefreshService(ledger, nil)
			result, err := svc.Refresh(context.Background(), RefreshInput{Kinds: tc.kinds})
			if err != nil {
				t.Fatalf("Refresh error: %v", err)
			}
			if len(result.RequestedKinds) != len(tc.want) {
				t.Fatalf("expected kinds %v, got %v", tc.want, result.RequestedKinds)
			}
			for i, want := range tc.want {
				if result.RequestedKinds[i] != want {
					t.Fatalf("kind %d: expected %s, got %s", i, want, result.RequestedKinds[i])
				}
			}
		})
	}
}

var _ snooker.Ledger = (*fakeLedger)(nil)
