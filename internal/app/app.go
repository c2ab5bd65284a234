package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/cueleague/snooker-scores/external/gsheets"
	"github.com/cueleague/snooker-scores/external/llmscores"
	"github.com/cueleague/snooker-scores/external/pushover"
	"github.com/cueleague/snooker-scores/external/twilio"
	"github.com/cueleague/snooker-scores/internal/config"
	"github.com/cueleague/snooker-scores/internal/domain/snooker"
	ledgercache "github.com/cueleague/snooker-scores/internal/infrastructure/ledger/cache"
	"github.com/cueleague/snooker-scores/internal/infrastructure/ledger/memory"
	ledgerpg "github.com/cueleague/snooker-scores/internal/infrastructure/ledger/postgres"
	"github.com/cueleague/snooker-scores/internal/infrastructure/ledger/sheets"
	"github.com/cueleague/snooker-scores/internal/interfaces/httpapi"
	basecache "github.com/cueleague/snooker-scores/internal/platform/cache"
	idgen "github.com/cueleague/snooker-scores/internal/platform/id"
	"github.com/cueleague/snooker-scores/internal/platform/logging"
	"github.com/cueleague/snooker-scores/internal/platform/resilience"
	"github.com/cueleague/snooker-scores/internal/usecase"
)

// leagueTimezone is the wall clock the league runs on. Fixture dates and
// round windows are read in it; it is not configurable because the league
// plays in one place.
const leagueTimezone = "Europe/Helsinki"

const cacheWarmupTimeout = 2 * time.Minute

func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	backend, format, err := NewLedger(cfg, logger)
	if err != nil {
		return nil, err
	}

	ledger := backend
	var flusher usecase.CacheFlusher
	if cfg.CacheEnabled {
		cached := ledgercache.NewLedger(backend, basecache.NewStore(cfg.CacheTTL))
		ledger = cached
		flusher = cached
	}

	matchSvc := usecase.NewMatchService(ledger)
	recordingSvc := usecase.NewRecordingService(ledger)
	fixtureSvc := usecase.NewFixtureService(ledger, idgen.NewRandomGenerator(), format)
	refreshSvc := usecase.NewRefreshService(ledger, flusher)
	reportSvc := usecase.NewReportService(
		ledger,
		recordingSvc,
		buildExtractor(cfg),
		buildMessenger(cfg),
		buildMonitor(cfg),
		usecase.MessagesFor(cfg.ReplyLang),
		cfg.SheetsSheetURL,
		logging.Default(),
	)

	if cfg.CacheEnabled {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), cacheWarmupTimeout)
			defer cancel()
			warmLedgerCache(ctx, refreshSvc, ledger, cfg.RefreshMaxWorkers, logger)
		}()
	}

	handler := httpapi.NewHandler(matchSvc, recordingSvc, reportSvc, fixtureSvc, refreshSvc, logger)
	router := httpapi.NewRouter(
		handler,
		logger,
		cfg.SwaggerEnabled,
		cfg.CORSAllowedOrigins,
		cfg.APIUser,
		cfg.APISecret,
		cfg.InternalJobToken,
		cfg.UptraceCaptureRequestBody,
		cfg.UptraceRequestBodyMaxBytes,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

// NewLedger builds the uncached ledger backend selected by LEDGER_BACKEND,
// along with the match format every fixture is played to. The API server
// wraps the result in the read-through cache; one-shot tools use it as is.
func NewLedger(cfg config.Config, logger *slog.Logger) (snooker.Ledger, snooker.Format, error) {
	format, err := snooker.FormatByName(cfg.MatchFormat)
	if err != nil {
		return nil, snooker.Format{}, fmt.Errorf("resolve match format: %w", err)
	}

	loc := leagueLocation(logger)

	var backend snooker.Ledger
	switch cfg.LedgerBackend {
	case config.BackendSheets:
		api := gsheets.NewClient(gsheets.ClientConfig{
			BaseURL:       cfg.SheetsBaseURL,
			SpreadsheetID: cfg.SheetsSpreadsheetID,
			Tokens:        gsheets.StaticTokenSource(cfg.SheetsToken),
			Timeout:       cfg.SheetsTimeout,
			MaxRetries:    cfg.SheetsMaxRetries,
			Logger:        logging.Default(),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.SheetsCircuitEnabled,
				FailureThreshold: cfg.SheetsCircuitFailureCount,
				OpenTimeout:      cfg.SheetsCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.SheetsCircuitHalfOpenMaxReq,
			},
		})
		backend = sheets.NewLedger(api, sheets.Config{
			Format:   format,
			Location: loc,
		})
	case config.BackendPostgres:
		db, err := otelsqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, snooker.Format{}, fmt.Errorf("connect to postgres: %w", err)
		}
		backend = ledgerpg.NewLedger(db, ledgerpg.Config{
			Format:   format,
			Location: loc,
		})
	case config.BackendMemory:
		backend = memory.NewLedger(memory.DevSeed())
	default:
		return nil, snooker.Format{}, fmt.Errorf("unsupported ledger backend %q", cfg.LedgerBackend)
	}

	return backend, format, nil
}

// buildExtractor returns nil when the LLM integration is off; the report
// service answers ErrDependencyUnavailable in that case.
func buildExtractor(cfg config.Config) usecase.ScoreExtractor {
	if !cfg.LLMEnabled {
		return nil
	}
	return llmscores.NewClient(llmscores.ClientConfig{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
		Logger:  logging.Default(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.LLMCircuitEnabled,
			FailureThreshold: cfg.LLMCircuitFailureCount,
			OpenTimeout:      cfg.LLMCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.LLMCircuitHalfOpenMaxReq,
		},
	})
}

func buildMessenger(cfg config.Config) usecase.Messenger {
	if !cfg.TwilioEnabled {
		return nil
	}
	return twilio.NewClient(twilio.ClientConfig{
		BaseURL:    cfg.TwilioBaseURL,
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioFromNumber,
		Timeout:    cfg.TwilioTimeout,
		Logger:     logging.Default(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.TwilioCircuitEnabled,
			FailureThreshold: cfg.TwilioCircuitFailureCount,
			OpenTimeout:      cfg.TwilioCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.TwilioCircuitHalfOpenMaxReq,
		},
	})
}

func buildMonitor(cfg config.Config) usecase.Monitor {
	if !cfg.PushoverEnabled {
		return nil
	}
	return pushover.NewClient(pushover.ClientConfig{
		BaseURL: cfg.PushoverBaseURL,
		Token:   cfg.PushoverToken,
		UserKey: cfg.PushoverUserKey,
		Logger:  logging.Default(),
	})
}

// warmLedgerCache pre-reads the roster, the current round and every round's
// fixture listing so the first score report does not pay cold-read latency
// against the backend.
func warmLedgerCache(ctx context.Context, refresh *usecase.RefreshService, ledger snooker.Ledger, maxWorkers int, logger *slog.Logger) {
	current, err := ledger.CurrentRound(ctx)
	if err != nil {
		logger.WarnContext(ctx, "cache warmup skipped", "error", err)
		return
	}

	rounds := make([]int, 0, current)
	for round := 1; round <= current; round++ {
		rounds = append(rounds, round)
	}

	result, err := refresh.Refresh(ctx, usecase.RefreshInput{
		Rounds:     rounds,
		MaxWorkers: maxWorkers,
	})
	if err != nil {
		logger.WarnContext(ctx, "cache warmup failed", "error", err)
		return
	}

	logger.InfoContext(ctx, "cache warmup finished",
		"task_count", result.TaskCount,
		"success_count", result.SuccessCount,
		"failed_count", result.FailedCount,
		"skipped_count", result.SkippedCount,
	)
}

func leagueLocation(logger *slog.Logger) *time.Location {
	loc, err := time.LoadLocation(leagueTimezone)
	if err != nil {
		logger.Warn("league timezone unavailable, falling back to UTC", "timezone", leagueTimezone, "error", err)
		return time.UTC
	}
	return loc
}
