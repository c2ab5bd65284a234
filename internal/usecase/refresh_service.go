package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
)

type RefreshInput struct {
	// Rounds to warm fixture listings for. Empty means the current round.
	Rounds []int
	// Kinds of ledger data to refresh. Empty means all of them.
	Kinds      []string
	MaxWorkers int
	// Flush drops cached reads first so warming repopulates from the backend.
	Flush bool
}

type RefreshResult struct {
	TaskCount      int                 `json:"task_count"`
	SuccessCount   int                 `json:"success_count"`
	FailedCount    int                 `json:"failed_count"`
	SkippedCount   int                 `json:"skipped_count"`
	WorkerCount    int                 `json:"worker_count"`
	Flushed        bool                `json:"flushed"`
	Tasks          []RefreshTaskResult `json:"tasks"`
	RequestedKinds []string            `json:"requested_kinds"`
}

type RefreshTaskResult struct {
	Kind       string `json:"kind"`
	Round      int    `json:"round,omitempty"`
	Status     string `json:"status"`
	Records    int    `json:"records"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

type refreshKind string

const (
	refreshStatusSuccess = "success"
	refreshStatusFailed  = "failed"
	refreshStatusSkipped = "skipped"

	refreshKindPlayers  refreshKind = "players"
	refreshKindRound    refreshKind = "round"
	refreshKindFixtures refreshKind = "fixtures"
)

type refreshTask struct {
	kind  refreshKind
	round int
}

// CacheFlusher drops cached ledger reads so the next read hits the backend.
type CacheFlusher interface {
	FlushLedgerCache()
}

// RefreshService re-reads hot ledger data through the caching layer so score
// reporting does not pay cold-read latency against the spreadsheet backend.
type RefreshService struct {
	ledger  snooker.Ledger
	flusher CacheFlusher
}

// NewRefreshService builds a refresh service. flusher may be nil when the
// ledger is not cached; Flush requests are then ignored.
func NewRefreshService(ledger snooker.Ledger, flusher CacheFlusher) *RefreshService {
	return &RefreshService{
		ledger:  ledger,
		flusher: flusher,
	}
}

func (s *RefreshService) Refresh(ctx context.Context, input RefreshInput) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshService.Refresh")
	defer span.End()

	kinds, requested, err := normalizeRefreshKinds(input.Kinds)
	if err != nil {
		return RefreshResult{}, err
	}

	flushed := false
	if input.Flush && s.flusher != nil {
		s.flusher.FlushLedgerCache()
		flushed = true
	}

	rounds, err := s.resolveRefreshRounds(ctx, input.Rounds)
	if err != nil {
		return RefreshResult{}, err
	}

	tasks := make([]refreshTask, 0, len(kinds)+len(rounds))
	for _, kind := range kinds {
		if kind == refreshKindFixtures {
			for _, round := range rounds {
				tasks = append(tasks, refreshTask{kind: kind, round: round})
			}
			continue
		}
		tasks = append(tasks, refreshTask{kind: kind})
	}

	workerCount := normalizeRefreshWorkerCount(input.MaxWorkers, len(tasks))
	result := RefreshResult{
		TaskCount:      len(tasks),
		WorkerCount:    workerCount,
		Flushed:        flushed,
		RequestedKinds: requested,
		Tasks:          make([]RefreshTaskResult, 0, len(tasks)),
	}
	if len(tasks) == 0 {
		return result, nil
	}

	results := make(chan RefreshTaskResult, len(tasks))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RefreshTaskResult{
				Kind:  string(task.kind),
				Round: task.round,
			}

			records, status, message := s.runRefreshTask(ctx, task)
			row.Records = records
			row.Status = status
			row.Message = message
			row.DurationMs = time.Since(start).Milliseconds()

			switch status {
			case refreshStatusSuccess:
				successCount.Add(1)
			case refreshStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}

			results <- row
		}); err != nil {
			workers.Done()
			return RefreshResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}

	sort.SliceStable(result.Tasks, func(i, j int) bool {
		if result.Tasks[i].Kind != result.Tasks[j].Kind {
			return result.Tasks[i].Kind < result.Tasks[j].Kind
		}
		return result.Tasks[i].Round < result.Tasks[j].Round
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	return result, nil
}

func (s *RefreshService) runRefreshTask(ctx context.Context, task refreshTask) (int, string, string) {
	switch task.kind {
	case refreshKindPlayers:
		players, err := s.ledger.GetCurrentPlayers(ctx)
		if err != nil {
			return 0, refreshStatusFailed, err.Error()
		}
		if len(players) == 0 {
			return 0, refreshStatusSkipped, "roster is empty"
		}
		return len(players), refreshStatusSuccess, ""
	case refreshKindRound:
		round, err := s.ledger.CurrentRound(ctx)
		if err != nil {
			return 0, refreshStatusFailed, err.Error()
		}
		if round == 0 {
			return 0, refreshStatusSkipped, "no round has opened yet"
		}
		return 1, refreshStatusSuccess, ""
	case refreshKindFixtures:
		fixtures, err := s.ledger.GetFixturesForRound(ctx, task.round)
		if err != nil {
			return 0, refreshStatusFailed, err.Error()
		}
		if len(fixtures) == 0 {
			return 0, refreshStatusSkipped, fmt.Sprintf("round %d has no fixtures", task.round)
		}
		return len(fixtures), refreshStatusSuccess, ""
	default:
		return 0, refreshStatusSkipped, "unsupported kind"
	}
}

func (s *RefreshService) resolveRefreshRounds(ctx context.Context, rounds []int) ([]int, error) {
	if len(rounds) == 0 {
		current, err := s.ledger.CurrentRound(ctx)
		if err != nil {
			return nil, fmt.Errorf("get current round: %w", err)
		}
		if current == 0 {
			return nil, nil
		}
		return []int{current}, nil
	}

	seen := make(map[int]struct{}, len(rounds))
	out := make([]int, 0, len(rounds))
	for _, round := range rounds {
		if round <= 0 {
			return nil, fmt.Errorf("%w: rounds must be greater than zero", ErrInvalidInput)
		}
		if _, dup := seen[round]; dup {
			continue
		}
		seen[round] = struct{}{}
		out = append(out, round)
	}
	sort.Ints(out)
	return out, nil
}

func normalizeRefreshKinds(raw []string) ([]refreshKind, []string, error) {
	if len(raw) == 0 {
		all := []refreshKind{refreshKindPlayers, refreshKindRound, refreshKindFixtures}
		requested := make([]string, len(all))
		for i, kind := range all {
			requested[i] = string(kind)
		}
		return all, requested, nil
	}

	seen := make(map[refreshKind]struct{}, len(raw))
	kinds := make([]refreshKind, 0, len(raw))
	requested := make([]string, 0, len(raw))
	for _, item := range raw {
		normalized := strings.TrimSpace(strings.ToLower(item))
		if normalized == "" {
			continue
		}
		kind, ok := toRefreshKind(normalized)
		if !ok {
			return nil, nil, fmt.Errorf("%w: unsupported kind=%s", ErrInvalidInput, item)
		}
		if _, exists := seen[kind]; exists {
			continue
		}
		seen[kind] = struct{}{}
		kinds = append(kinds, kind)
		requested = append(requested, string(kind))
	}
	if len(kinds) == 0 {
		return nil, nil, fmt.Errorf("%w: kinds is required", ErrInvalidInput)
	}
	return kinds, requested, nil
}

func toRefreshKind(value string) (refreshKind, bool) {
	switch value {
	case "players", "roster":
		return refreshKindPlayers, true
	case "round", "rounds", "current_round":
		return refreshKindRound, true
	case "fixtures", "matches":
		return refreshKindFixtures, true
	default:
		return "", false
	}
}

func normalizeRefreshWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 1
	}
	if value > 2 {
		value = 2
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
