package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence"
)

const bookingColumns = "id, room_id, requester_id, organization_id, purpose, start_time, end_time, status, recurrence_group_id, created_at, updated_at, decided_at, decided_by"

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateBookings inserts all bookings in one transaction. Before each
// insert the PENDING and APPROVED bookings of the same room and of the
// same requester are re-checked for overlap, so a conflicting row
// committed between the caller's own check and this call surfaces as
// persistence.ErrOverlap and nothing is inserted.
func (r *BookingRepository) CreateBookings(ctx context.Context, bookings []persistence.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	for _, b := range bookings {
		if b.ID == "" {
			return persistence.ErrConstraintViolation
		}
		if !b.End.After(b.Start) {
			return persistence.ErrConstraintViolation
		}
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, b := range bookings {
				var count int
				err := r.helper.QueryRowTx(tx,
					`SELECT COUNT(1) FROM bookings
					 WHERE (room_id = ? OR requester_id = ?)
					   AND status IN ('PENDING', 'APPROVED')
					   AND start_time < ?
					   AND end_time > ?`,
					b.RoomID,
					b.RequesterID,
					formatTime(b.End),
					formatTime(b.Start),
				).Scan(&count)
				if err != nil {
					return r.mapper.MapError(err)
				}
				if count > 0 {
					return persistence.ErrOverlap
				}

				if err := r.insertBooking(tx, b); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func (r *BookingRepository) insertBooking(tx *sql.Tx, b persistence.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.ExecTx(tx, query,
		b.ID,
		b.RoomID,
		b.RequesterID,
		b.OrganizationID,
		b.Purpose,
		formatTime(b.Start),
		formatTime(b.End),
		b.Status,
		nullString(b.RecurrenceGroupID),
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
		nullTime(b.DecidedAt),
		nullString(b.DecidedBy),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, r.mapper.MapError(err)
	}
	return booking, nil
}

// ListBookings lists bookings matching the filter, ordered by start time.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query, args := buildBookingListQuery(filter)

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return bookings, nil
}

// UpdateBookingStatus transitions a booking only while it still holds
// expectedStatus. The guard in the WHERE clause makes the update a
// compare-and-set; a lost race surfaces as persistence.ErrStaleStatus.
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id, expectedStatus, newStatus string, decidedAt time.Time, decidedBy string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	var updated persistence.Booking
	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			result, err := r.helper.ExecTx(tx,
				`UPDATE bookings
				 SET status = ?, decided_at = ?, decided_by = ?, updated_at = ?
				 WHERE id = ? AND status = ?`,
				newStatus,
				formatTime(decidedAt),
				decidedBy,
				formatTime(decidedAt),
				id,
				expectedStatus,
			)
			if err != nil {
				return r.mapper.MapError(err)
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if affected == 0 {
				var current string
				err := r.helper.QueryRowTx(tx, "SELECT status FROM bookings WHERE id = ?", id).Scan(&current)
				if errors.Is(err, sql.ErrNoRows) {
					return persistence.ErrNotFound
				}
				if err != nil {
					return r.mapper.MapError(err)
				}
				return persistence.ErrStaleStatus
			}

			row := r.helper.QueryRowTx(tx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)
			updated, err = scanBooking(row)
			if err != nil {
				return r.mapper.MapError(err)
			}
			return nil
		})
	})
	if err != nil {
		return persistence.Booking{}, err
	}
	return updated, nil
}

// ListElapsedPending returns PENDING bookings whose start has passed.
func (r *BookingRepository) ListElapsedPending(ctx context.Context, reference time.Time) ([]persistence.Booking, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE status = 'PENDING' AND start_time < ? ORDER BY start_time ASC, id ASC",
		formatTime(reference),
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return bookings, nil
}

// ListElapsedApproved returns APPROVED bookings whose end has passed.
func (r *BookingRepository) ListElapsedApproved(ctx context.Context, reference time.Time) ([]persistence.Booking, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE status = 'APPROVED' AND end_time <= ? ORDER BY end_time ASC, id ASC",
		formatTime(reference),
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return bookings, nil
}

// buildBookingListQuery builds the SQL query for listing bookings with
// filters. Zero-valued filter fields are skipped.
func buildBookingListQuery(filter persistence.BookingFilter) (string, []interface{}) {
	query := "SELECT " + bookingColumns + " FROM bookings"

	var conditions []string
	var args []interface{}

	if filter.RoomID != "" {
		conditions = append(conditions, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.RequesterID != "" {
		conditions = append(conditions, "requester_id = ?")
		args = append(args, filter.RequesterID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.StartsBefore != nil {
		conditions = append(conditions, "start_time < ?")
		args = append(args, formatTime(*filter.StartsBefore))
	}
	if filter.EndsAfter != nil {
		conditions = append(conditions, "end_time > ?")
		args = append(args, formatTime(*filter.EndsAfter))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time ASC, id ASC"

	return query, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var b persistence.Booking
	var startStr, endStr, createdAtStr, updatedAtStr string
	var recurrenceGroupID, decidedAtStr, decidedBy sql.NullString

	err := row.Scan(
		&b.ID,
		&b.RoomID,
		&b.RequesterID,
		&b.OrganizationID,
		&b.Purpose,
		&startStr,
		&endStr,
		&b.Status,
		&recurrenceGroupID,
		&createdAtStr,
		&updatedAtStr,
		&decidedAtStr,
		&decidedBy,
	)
	if err != nil {
		return persistence.Booking{}, err
	}

	if b.Start, err = parseTime(startStr, "start_time"); err != nil {
		return persistence.Booking{}, err
	}
	if b.End, err = parseTime(endStr, "end_time"); err != nil {
		return persistence.Booking{}, err
	}
	if b.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.Booking{}, err
	}
	if b.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.Booking{}, err
	}

	if recurrenceGroupID.Valid {
		b.RecurrenceGroupID = &recurrenceGroupID.String
	}
	if decidedAtStr.Valid {
		decidedAt, err := parseTime(decidedAtStr.String, "decided_at")
		if err != nil {
			return persistence.Booking{}, err
		}
		b.DecidedAt = &decidedAt
	}
	if decidedBy.Valid {
		b.DecidedBy = &decidedBy.String
	}

	return b, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value, column string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return parsed, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullTime(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*value), Valid: true}
}
