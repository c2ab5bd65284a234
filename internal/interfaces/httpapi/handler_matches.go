package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cueleague/snooker-scores/internal/usecase"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	query := r.URL.Query()
	filter := usecase.MatchFilter{Group: strings.TrimSpace(query.Get("group"))}

	if raw := strings.TrimSpace(query.Get("round")); raw != "" {
		round, err := strconv.Atoi(raw)
		if err != nil || round < 1 {
			writeError(ctx, w, fmt.Errorf("%w: invalid round %q", usecase.ErrInvalidInput, raw))
			return
		}
		filter.Round = round
	}
	if raw := strings.TrimSpace(query.Get("unplayed")); raw != "" {
		unplayed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid unplayed %q", usecase.ErrInvalidInput, raw))
			return
		}
		filter.Unplayed = unplayed
	}
	if raw := strings.TrimSpace(query.Get("completed")); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid completed %q", usecase.ErrInvalidInput, raw))
			return
		}
		filter.Completed = completed
	}

	list, err := h.matchService.ListMatches(ctx, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "round", filter.Round, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchListToDTO(ctx, list))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	match, err := h.matchService.GetMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, match))
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	players, err := h.matchService.ListPlayers(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerDTO{Name: p.Name, Group: p.Group})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
