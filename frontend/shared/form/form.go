// Package form reads typed values from parsed request forms and URL params.
package form

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"almoxarifado/models"
)

// Errors collects per-field parse failures.
type Errors map[string]string

// Err returns a ValidationError, or nil when nothing failed.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	fields := make(map[string]string, len(e))
	for k, v := range e {
		fields[k] = v
	}
	return &models.ValidationError{Fields: fields}
}

func String(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

func Bool(r *http.Request, name string) bool {
	switch strings.ToLower(String(r, name)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Float parses a decimal accepting both dot and comma separators. Empty is 0.
func Float(r *http.Request, name string, errs Errors) float64 {
	raw := strings.ReplaceAll(String(r, name), ",", ".")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs[name] = "must be a number"
		return 0
	}
	return v
}

// Int parses an integer. Empty is 0.
func Int(r *http.Request, name string, errs Errors) int {
	raw := String(r, name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		errs[name] = "must be a whole number"
		return 0
	}
	return v
}

// OptionalID parses a positive id; empty yields nil.
func OptionalID(r *http.Request, name string, errs Errors) *int64 {
	raw := String(r, name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		errs[name] = "is not a valid selection"
		return nil
	}
	return &v
}

// Date parses yyyy-mm-dd; empty yields nil.
func Date(r *http.Request, name string, errs Errors) *time.Time {
	raw := String(r, name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		errs[name] = "must be a date (yyyy-mm-dd)"
		return nil
	}
	return &t
}

// QueryID parses an optional id from the query string, ignoring garbage.
func QueryID(r *http.Request, name string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get(name)), 10, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// QueryInt parses an optional integer from the query string.
func QueryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	return v
}

// QueryDate parses an optional yyyy-mm-dd query value.
func QueryDate(r *http.Request, name string) *time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(r.URL.Query().Get(name)))
	if err != nil {
		return nil
	}
	return &t
}

// PathID reads a positive integer chi URL param.
func PathID(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
