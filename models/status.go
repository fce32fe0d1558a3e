package models

import "time"

// Stock status labels, worst first.
const (
	StockZero     = "zero"
	StockCritical = "critical"
	StockLow      = "low"
	StockOK       = "ok"
)

// Expiry status labels.
const (
	ExpiryNone     = ""
	ExpiryExpired  = "expired"
	ExpirySoon     = "expiring_soon"
	ExpiryOK       = "ok"
	ExpiryWarnDays = 30
)

// StockStatus classifies a balance against its minimum.
func StockStatus(balance, minStock float64) string {
	switch {
	case balance <= 0:
		return StockZero
	case balance < minStock*0.5:
		return StockCritical
	case balance < minStock:
		return StockLow
	default:
		return StockOK
	}
}

// ExpiryStatus classifies an optional expiry date relative to today.
func ExpiryStatus(expiry *time.Time, today time.Time) string {
	if expiry == nil {
		return ExpiryNone
	}
	days := DaysBetween(today, *expiry)
	switch {
	case days < 0:
		return ExpiryExpired
	case days <= ExpiryWarnDays:
		return ExpirySoon
	default:
		return ExpiryOK
	}
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// Status of the item's balance.
func (i Item) Status() string {
	return StockStatus(i.Balance, i.MinStock)
}
