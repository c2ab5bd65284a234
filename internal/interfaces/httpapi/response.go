package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/cueleague/snooker-scores/internal/domain/snooker"
	"github.com/cueleague/snooker-scores/internal/usecase"
)

// Responses use the Google JSON envelope: apiVersion plus exactly one of
// data or error.
const (
	googleAPIVersion = "2.0"
	errorDomain      = "snooker-scores"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

// errorMappings orders domain sentinels before the generic usecase ones so
// the most specific reason wins when an error wraps both.
var errorMappings = []struct {
	target error
	mapped mappedError
}{
	{target: snooker.ErrMatchNotFound, mapped: mappedError{HTTPStatus: http.StatusNotFound, Reason: "matchNotFound", Status: "NOT_FOUND"}},
	{target: snooker.ErrMatchAlreadyCompleted, mapped: mappedError{HTTPStatus: http.StatusConflict, Reason: "matchAlreadyCompleted", Status: "ALREADY_EXISTS"}},
	{target: snooker.ErrFixtureMismatch, mapped: mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidResult", Status: "INVALID_ARGUMENT"}},
	{target: snooker.ErrInvalidScoreline, mapped: mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidResult", Status: "INVALID_ARGUMENT"}},
	{target: snooker.ErrInvalidBreakAttribution, mapped: mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidResult", Status: "INVALID_ARGUMENT"}},
	{target: snooker.ErrInvalidBreakPoints, mapped: mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidResult", Status: "INVALID_ARGUMENT"}},
	{target: snooker.ErrGroupMismatch, mapped: mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidResult", Status: "INVALID_ARGUMENT"}},
	{target: snooker.ErrInvalidMatch, mapped: mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidResult", Status: "INVALID_ARGUMENT"}},
	{target: snooker.ErrLedgerWrite, mapped: mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "ledgerWriteFailed", Status: "UNAVAILABLE"}},
	{target: usecase.ErrInvalidInput, mapped: mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"}},
	{target: usecase.ErrNotFound, mapped: mappedError{HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"}},
	{target: usecase.ErrUnauthorized, mapped: mappedError{HTTPStatus: http.StatusUnauthorized, Reason: "unauthorized", Status: "UNAUTHENTICATED"}},
	{target: usecase.ErrDependencyUnavailable, mapped: mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"}},
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	writeJSON(ctx, w, mapped.HTTPStatus, errorEnvelope(mapped, err.Error()))
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	mapped := mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}
	writeJSON(ctx, w, mapped.HTTPStatus, errorEnvelope(mapped, "internal server error"))
}

func errorEnvelope(mapped mappedError, message string) googleResponseEnvelope {
	return googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{{
				Domain:  errorDomain,
				Reason:  mapped.Reason,
				Message: message,
			}},
		},
	}
}

func mapError(err error) mappedError {
	for _, mapping := range errorMappings {
		if errors.Is(err, mapping.target) {
			return mapping.mapped
		}
	}
	return mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}
}
