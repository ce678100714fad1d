package store

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a unique constraint.
var ErrConflict = errors.New("conflict")

const uniqueViolation = pq.ErrorCode("23505")

func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// dbNow matches the microsecond precision of TIMESTAMPTZ columns.
func dbNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
