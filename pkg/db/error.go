package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyErr reports whether err is a unique-constraint violation,
// in whichever shape the configured dialect raises it. The escrow service
// relies on this to turn the order_id unique index into an
// order-already-escrowed rejection.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// Not every driver maps onto gorm.ErrDuplicatedKey, so fall back to
	// the dialect message. postgres 23505, mysql 1062, sqlite 2067.
	for _, fragment := range []string{
		"duplicate key value violates unique constraint",
		"Error 1062",
		"UNIQUE constraint failed",
	} {
		if strings.Contains(err.Error(), fragment) {
			return true
		}
	}

	return false
}
