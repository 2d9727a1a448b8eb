package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrForeignKeyViolation is returned when a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrConstraintViolation is returned for other constraint failures.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrOverlap is returned when an insert would double book a room. The
	// repository re-checks overlaps inside the insert transaction, so this
	// can surface even after the caller's own conflict check passed.
	ErrOverlap = errors.New("persistence: booking overlaps an existing booking")
	// ErrStaleStatus is returned when a compare-and-set status update finds
	// the booking no longer in the expected status.
	ErrStaleStatus = errors.New("persistence: booking status changed concurrently")
)
