package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// Response is the JSON envelope for every API response.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error half of the envelope.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes v inside the data envelope.
func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, Response{Data: v})
}

// WriteError renders err in the error envelope. AppErrors keep their code and
// status; anything else becomes a logged 500 with a generic message. Upstream
// (5xx) AppErrors are logged at ERROR with their cause.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	var fieldErr *validator.FieldError
	switch {
	case errors.As(err, &valErr), errors.As(err, &fieldErr),
		errors.Is(err, validator.ErrEmptyBody), errors.Is(err, validator.ErrMalformedBody):
		writeValidationError(w, err, requestID)
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			l.ErrorContext(r.Context(), "request failed",
				slog.String("code", appErr.Code),
				slog.String("error", err.Error()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
		}
		WriteJSON(w, appErr.Status, Response{
			Error: &ErrorResponse{Code: appErr.Code, Message: appErr.Message, RequestID: requestID},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code, message = "NOT_FOUND", "resource not found"
	case errors.Is(err, apperrors.ErrConflict):
		code, message = "CONFLICT", "the collection was modified concurrently, retry the request"
	case errors.Is(err, apperrors.ErrInvalidInput):
		code, message = "INVALID_INPUT", err.Error()
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{
		Error: &ErrorResponse{Code: code, Message: message, RequestID: requestID},
	})
}

func writeValidationError(w http.ResponseWriter, err error, requestID string) {
	resp := &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error(), RequestID: requestID}

	var valErr *validator.ValidationError
	var fieldErr *validator.FieldError
	switch {
	case errors.As(err, &valErr):
		resp.Code = "VALIDATION_ERROR"
		resp.Message = "request validation failed"
		resp.Fields = valErr.Fields()
	case errors.As(err, &fieldErr):
		resp.Code = "VALIDATION_ERROR"
		resp.Fields = map[string]string{fieldErr.Field: fieldErr.Message}
	}

	WriteJSON(w, http.StatusBadRequest, Response{Error: resp})
}

// ParseID parses a positive integer path parameter. On failure it writes a
// 400 response and returns false, signaling the caller to return early.
func ParseID(w http.ResponseWriter, name, param string) (int, bool) {
	id, err := strconv.Atoi(param)
	if err != nil || id <= 0 {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "INVALID_PARAMETER",
				Message: "invalid " + name + ": " + param,
			},
		})
		return 0, false
	}
	return id, true
}
