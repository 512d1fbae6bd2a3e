package handler

// RESPONSE HELPERS:
// Every API response goes through writeJSON or writeError, so clients see one
// error shape regardless of status:
//
//	{"error": "validation_error", "message": "title is required", "field": "title"}
//
// go-chi/render does the encoding; render.Status carries the status code in
// the request context until render.JSON writes the header.

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/sakif/bloglist/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // machine-readable type, e.g. "not_found"
	Message string `json:"message"`         // human-readable description
	Field   string `json:"field,omitempty"` // offending field of a validation error
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

// writeError maps a domain error to its HTTP status.
//
// errors.Is walks the Unwrap chain, so a service that returns
// fmt.Errorf("...: %w", apperror.NotFound(...)) still maps to 404.
// Anything that isn't an *apperror.AppError is a 500 whose details are
// logged and never sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, r, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "an internal error occurred",
		})
		return
	}

	status, code := statusFor(err)
	writeJSON(w, r, status, ErrorResponse{
		Error:   code,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// bind decodes the JSON body into v and runs its Bind validation.
// A body that doesn't decode at all is reported as a validation error.
func bind(r *http.Request, v render.Binder) error {
	if err := render.Bind(r, v); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperror.ValidationFailed("", "malformed JSON body")
	}
	return nil
}
