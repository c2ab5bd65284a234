package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cueleague/snooker-scores/internal/usecase"
)

const scoreDateLayout = "2006-01-02"

// ReportScoreSMS handles the inbound Twilio webhook. The reply to the sender
// goes out over the messenger inside the report flow; the HTTP response only
// tells Twilio whether the report was accepted.
func (h *Handler) ReportScoreSMS(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReportScoreSMS")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid form payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	sender := strings.TrimSpace(r.PostFormValue("From"))
	body := r.PostFormValue("Body")
	if sender == "" {
		writeError(ctx, w, fmt.Errorf("%w: missing From field", usecase.ErrInvalidInput))
		return
	}

	h.logger.InfoContext(ctx, "inbound score report",
		"sender", sender,
		"client_ip", clientAddr(r),
		"client_country", clientCountry(r),
	)

	receipt, err := h.reportService.HandleReport(ctx, usecase.InboundReport{Sender: sender, Body: body})
	if err != nil {
		h.logger.WarnContext(ctx, "score report rejected", "sender", sender, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, receiptToDTO(ctx, receipt))
}

// SubmitScores records a structured result against a known match ID.
func (h *Handler) SubmitScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitScores")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err))
		return
	}

	var req submitScoresRequest
	decoder := sonic.ConfigDefault.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		date, err = time.Parse(scoreDateLayout, req.Date)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid date %q, expected %s", usecase.ErrInvalidInput, req.Date, scoreDateLayout))
			return
		}
	}

	sub := usecase.ScoreSubmission{
		Player1Score: req.Player1Score,
		Player2Score: req.Player2Score,
		Date:         date,
	}
	for _, b := range req.Breaks {
		sub.Breaks = append(sub.Breaks, usecase.PositionalBreak{By: b.Player, Points: b.Points})
	}

	// The raw body doubles as the audit passage stored next to break rows.
	match, err := h.recordingService.RecordByID(ctx, matchID, sub, usecase.ReportSourceAPI, string(raw))
	if err != nil {
		h.logger.WarnContext(ctx, "submit scores failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	apiUser, _ := apiUserFromContext(ctx)
	h.logger.InfoContext(ctx, "match recorded via api", "match_id", match.ID, "api_user", apiUser)

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(ctx, match))
}
