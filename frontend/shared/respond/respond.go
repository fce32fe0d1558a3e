// Package respond maps domain errors to redirects with flash messages and to
// JSON status codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"almoxarifado/models"
)

// Status maps a domain error to an HTTP status code.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrPermissionDenied), errors.Is(err, models.ErrSelfModification):
		return http.StatusForbidden
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrMissingSector):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrDuplicate),
		errors.Is(err, models.ErrInUse),
		errors.Is(err, models.ErrWarehouseInUse),
		errors.Is(err, models.ErrUserHasHistory),
		errors.Is(err, models.ErrInsufficientStock):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Message is the user-facing text for err. Unexpected errors are logged and
// replaced by a generic message.
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		log.Error().Err(err).Msg("unexpected error")
		return "unexpected error, please try again"
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	switch {
	case errors.Is(err, models.ErrDuplicate):
		return "a record with the same identifying fields already exists"
	case errors.Is(err, models.ErrPermissionDenied):
		return "you do not have permission for this action"
	}
	return err.Error()
}

// WithStatus redirects to path with a success flash message.
func WithStatus(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, addQuery(path, "status", msg), http.StatusSeeOther)
}

// WithError redirects to path with an error flash message built from err.
func WithError(w http.ResponseWriter, r *http.Request, path string, err error) {
	http.Redirect(w, r, addQuery(path, "error", Message(err)), http.StatusSeeOther)
}

// WithErrorText redirects to path with a fixed error message.
func WithErrorText(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, addQuery(path, "error", msg), http.StatusSeeOther)
}

func addQuery(path, key, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + key + "=" + url.QueryEscape(value)
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode json response")
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSONError writes err as {"error": ...} with its mapped status.
func JSONError(w http.ResponseWriter, err error) {
	body := errorBody{Error: Message(err)}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	JSON(w, Status(err), body)
}

// Page renders a plain error page for GET handlers that cannot redirect.
func Page(w http.ResponseWriter, err error) {
	http.Error(w, Message(err), Status(err))
}
