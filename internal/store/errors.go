package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the addressed driver or entry does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateWeek is returned when a driver already has an entry starting
	// on the same week.
	ErrDuplicateWeek = errors.New("weekly entry already exists for this driver and week")
)

// postgres error codes the adapter cares about
const (
	pqUniqueViolation = "23505"
	pqUndefinedColumn = "42703"
	pqUndefinedTable  = "42P01"
)

// translate maps driver specific failures onto the package sentinels.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicateWeek)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsSchemaMismatch reports whether err comes from a table or column the
// database does not have, which usually means migrations were not run or the
// configured weekly schema convention is wrong.
func IsSchemaMismatch(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUndefinedColumn || pqErr.Code == pqUndefinedTable
	}
	msg := err.Error()
	return strings.Contains(msg, "no such column") || strings.Contains(msg, "no such table")
}
