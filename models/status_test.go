package models

import (
	"testing"
	"time"
)

func TestStockStatus(t *testing.T) {
	cases := []struct {
		balance, min float64
		want         string
	}{
		{0, 10, StockZero},
		{-1, 0, StockZero},
		{4, 10, StockCritical},
		{5, 10, StockLow},
		{9.5, 10, StockLow},
		{10, 10, StockOK},
		{30, 10, StockOK},
		{1, 0, StockOK},
	}
	for _, tc := range cases {
		if got := StockStatus(tc.balance, tc.min); got != tc.want {
			t.Fatalf("StockStatus(%v, %v) = %s, want %s", tc.balance, tc.min, got, tc.want)
		}
	}
}

func TestExpiryStatus(t *testing.T) {
	today := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	day := func(offset int) *time.Time {
		d := DateOnly(today).AddDate(0, 0, offset)
		return &d
	}

	if got := ExpiryStatus(nil, today); got != ExpiryNone {
		t.Fatalf("expected no status for nil expiry, got %q", got)
	}
	if got := ExpiryStatus(day(-1), today); got != ExpiryExpired {
		t.Fatalf("expected expired, got %q", got)
	}
	if got := ExpiryStatus(day(0), today); got != ExpirySoon {
		t.Fatalf("expected expiring today to be soon, got %q", got)
	}
	if got := ExpiryStatus(day(30), today); got != ExpirySoon {
		t.Fatalf("expected day 30 to be soon, got %q", got)
	}
	if got := ExpiryStatus(day(31), today); got != ExpiryOK {
		t.Fatalf("expected day 31 to be ok, got %q", got)
	}
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "is required", "barcode": "is required"}}
	if err.Error() != "invalid input: barcode is required; name is required;" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !err.Is(ErrValidation) {
		t.Fatalf("expected ValidationError to match ErrValidation")
	}
}
