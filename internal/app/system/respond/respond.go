// Package respond writes JSON responses and maps classified errors to HTTP
// status codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   ErrorDetail `json:"error"`
	Offline bool        `json:"offline,omitempty"`
}

// ErrorDetail describes one error.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Kind    string            `json:"kind"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes payload with status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes payload with 200.
func OK(w http.ResponseWriter, payload any) { JSON(w, http.StatusOK, payload) }

// Created writes payload with 201.
func Created(w http.ResponseWriter, payload any) { JSON(w, http.StatusCreated, payload) }

// NoContent writes 204.
func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindPermission:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindStateConflict:
		return http.StatusConflict
	case apperr.KindExpired:
		return http.StatusGone
	case apperr.KindBackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error classifies err and writes the matching status and body. Internal
// errors are logged and their detail is not sent to the client.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)

	detail := ErrorDetail{Code: apperr.Code(err), Kind: string(kind)}
	var ae *apperr.Error
	switch {
	case kind == apperr.KindInternal:
		detail.Message = "An unexpected error occurred."
	case errors.As(err, &ae):
		detail.Message = ae.Message
	default:
		detail.Message = "The service is temporarily unavailable."
	}

	if log != nil {
		switch kind {
		case apperr.KindInternal:
			log.Error("request failed", zap.Error(err))
		case apperr.KindBackendUnavailable:
			log.Warn("backend unavailable", zap.String("code", detail.Code), zap.Error(err))
		}
	}

	JSON(w, status, ErrorBody{Error: detail, Offline: kind == apperr.KindBackendUnavailable})
}

// Validation writes a 400 with per-field messages.
func Validation(w http.ResponseWriter, msg string, fields map[string]string) {
	JSON(w, http.StatusBadRequest, ErrorBody{Error: ErrorDetail{
		Code:    "invalid_input",
		Message: msg,
		Kind:    string(apperr.KindValidation),
		Fields:  fields,
	}})
}

// Unauthorized writes a 401.
func Unauthorized(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusUnauthorized, ErrorBody{Error: ErrorDetail{
		Code:    "unauthenticated",
		Message: msg,
		Kind:    string(apperr.KindPermission),
	}})
}

// TooManyRequests writes a 429.
func TooManyRequests(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusTooManyRequests, ErrorBody{Error: ErrorDetail{
		Code:    "rate_limited",
		Message: msg,
		Kind:    string(apperr.KindPermission),
	}})
}

// DecodeJSON reads a JSON request body into v. Unknown fields and bodies
// over 1 MiB are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid_json", "Request body is not valid JSON.", err)
	}
	return nil
}
