package models

import (
	"errors"
	"fmt"
	"sort"
)

// Failures surfaced by the store, the ledger and the access layer.
// All are recoverable at the request boundary.
var (
	ErrNotFound          = errors.New("record not found")
	ErrItemNotFound      = fmt.Errorf("item: %w", ErrNotFound)
	ErrDuplicate         = errors.New("duplicate record")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrMissingSector     = errors.New("sector is required for exits")
	ErrWarehouseInUse    = errors.New("warehouse still has active users or items")
	ErrInUse             = errors.New("record is still referenced")
	ErrUserHasHistory    = errors.New("user has recorded movements; deactivate instead")
	ErrSelfModification  = errors.New("users cannot delete or deactivate themselves")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrValidation        = errors.New("invalid input")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	msg := ErrValidation.Error() + ":"
	for _, name := range sortedKeys(e.Fields) {
		msg += " " + name + " " + e.Fields[name] + ";"
	}
	return msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
