package html

import (
	"strconv"
	"time"
)

// Qty formats a quantity without trailing zeros.
func Qty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Date formats a date as dd/mm/yyyy, or "-" when nil.
func Date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

// DateTime formats a timestamp in local time.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006 15:04")
}

// ID formats an identifier for URLs.
func ID(id int64) string {
	return strconv.FormatInt(id, 10)
}
