package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/cueleague/snooker-scores/internal/usecase"
)

func (h *Handler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateFixtures")
	defer span.End()

	var req generateFixturesRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.fixtureService.GenerateRound(ctx, usecase.GenerateFixturesInput{
		Round:  req.Round,
		Groups: req.Groups,
		DryRun: req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "generate fixtures failed", "round", req.Round, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "fixtures generated",
		"round", result.Round,
		"fixtures", result.FixtureCount,
		"dry_run", req.DryRun,
	)

	status := http.StatusCreated
	if req.DryRun {
		status = http.StatusOK
	}
	writeSuccess(ctx, w, status, generateResultToDTO(ctx, result, req.DryRun))
}

func (h *Handler) RefreshCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshCache")
	defer span.End()

	// The refresh endpoint is cron-friendly: an empty body means defaults.
	var req refreshCacheRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.refreshService.Refresh(ctx, usecase.RefreshInput{
		Rounds:     req.Rounds,
		Kinds:      req.Kinds,
		MaxWorkers: req.MaxWorkers,
		Flush:      req.Flush,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "cache refresh failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "cache refresh completed",
		"tasks", result.TaskCount,
		"failed", result.FailedCount,
		"flushed", result.Flushed,
	)

	writeSuccess(ctx, w, http.StatusOK, result)
}
