// Package respond writes JSON responses and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/biztrack/internal/assistant"
	"github.com/MrJamesThe3rd/biztrack/internal/auth"
	"github.com/MrJamesThe3rd/biztrack/internal/importer"
	"github.com/MrJamesThe3rd/biztrack/internal/importer/bank"
	"github.com/MrJamesThe3rd/biztrack/internal/importer/biztrack"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

const maxBody = 1 << 20

type errorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Message writes an error body with an explicit status.
func Message(w http.ResponseWriter, status int, code, msg string) {
	JSON(w, status, errorResponse{Code: code, Message: msg})
}

// Error writes err with the status its kind maps to. Unknown errors are
// logged and hidden behind a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		Message(w, authStatus(authErr), authErr.Code, authErr.Message)
		return
	}

	status := Status(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		Message(w, status, "", http.StatusText(status))

		return
	}

	Message(w, status, "", err.Error())
}

// Status maps a non-auth error to its HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrProjectNotFound),
		errors.Is(err, session.ErrTransactionNotFound),
		errors.Is(err, project.ErrNotFound),
		errors.Is(err, transaction.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoActiveProject),
		errors.Is(err, session.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, transaction.ErrInvalidKind),
		errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrMissingName),
		errors.Is(err, transaction.ErrMissingDate),
		errors.Is(err, transaction.ErrKindImmutable),
		errors.Is(err, transaction.ErrFieldNotApplicable),
		errors.Is(err, project.ErrMissingName),
		errors.Is(err, project.ErrInvalidCurrency),
		errors.Is(err, project.ErrInvalidType),
		errors.Is(err, project.ErrInvalidTracking),
		errors.Is(err, assistant.ErrEmptyQuestion),
		errors.Is(err, importer.ErrUnknownFormat),
		errors.Is(err, biztrack.ErrMissingColumn),
		errors.Is(err, bank.ErrNoProfile),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, assistant.ErrNoAnswer):
		return http.StatusBadGateway
	case errors.Is(err, assistant.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrRemote):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func authStatus(err *auth.Error) int {
	switch err {
	case auth.ErrEmailInUse:
		return http.StatusConflict
	case auth.ErrInvalidCredential:
		return http.StatusUnauthorized
	case auth.ErrUserNotFound:
		return http.StatusNotFound
	case auth.ErrTooManyRequests:
		return http.StatusTooManyRequests
	}

	return http.StatusBadRequest
}

var errBadRequest = errors.New("bad request")

// BadRequest wraps msg so that Error answers 400.
func BadRequest(msg string) error {
	return fmt.Errorf("%w: %s", errBadRequest, msg)
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return BadRequest("invalid request body: " + err.Error())
	}

	return nil
}
