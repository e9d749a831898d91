package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/roombook/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository on SQLite.
type BookingRepository struct {
	store *Store
}

// NewBookingRepository binds a repository to the store.
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

const bookingColumns = `id, room_id, user_id, start_time, end_time, status, create_time, update_time`

// InsertBooking inserts a reservation and returns it with the assigned id.
func (r *BookingRepository) InsertBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	if booking.Status == "" {
		booking.Status = persistence.BookingStatusPending
	}
	if !persistence.ValidBookingStatus(booking.Status) {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	booking.CreateTime = now
	booking.UpdateTime = now

	result, err := r.store.db.ExecContext(ctx, `
		INSERT INTO bookings (room_id, user_id, start_time, end_time, status, create_time, update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		booking.RoomID,
		booking.UserID,
		formatTime(booking.StartTime),
		formatTime(booking.EndTime),
		string(booking.Status),
		formatTime(booking.CreateTime),
		formatTime(booking.UpdateTime),
	)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Booking{}, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	booking.ID = id
	return booking, nil
}

// GetBooking retrieves a reservation by id.
func (r *BookingRepository) GetBooking(ctx context.Context, id int64) (persistence.Booking, error) {
	return scanBooking(r.store.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
}

// UpdateBookingStatus overwrites the status regardless of the current state.
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id int64, status persistence.BookingStatus) error {
	if !persistence.ValidBookingStatus(status) {
		return persistence.ErrConstraintViolation
	}

	result, err := r.store.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, update_time = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), id,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// FindOverlapping returns bookings for the room whose half-open interval
// intersects [start, end) and whose status is in statuses. Timestamps are
// stored as fixed-width UTC text, so the comparison happens in SQL.
func (r *BookingRepository) FindOverlapping(ctx context.Context, roomID int64, start, end time.Time, statuses []persistence.BookingStatus) ([]persistence.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE room_id = ? AND start_time < ? AND ? < end_time`
	args := []any{roomID, formatTime(end), formatTime(start)}

	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += ` AND status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY start_time, id`

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bookings, nil
}

// ListBookings returns one joined page plus the unpaged total count. The
// owner's password hash column is never selected.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter, skip, take int) ([]persistence.BookingDetail, int64, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if filter.Username != "" {
		where = append(where, "u.username LIKE ?")
		args = append(args, likePattern(filter.Username))
	}
	if filter.RoomName != "" {
		where = append(where, "m.name LIKE ?")
		args = append(args, likePattern(filter.RoomName))
	}
	if filter.RoomLocation != "" {
		where = append(where, "m.location LIKE ?")
		args = append(args, likePattern(filter.RoomLocation))
	}
	if filter.RangeStart != nil {
		rangeEnd := filter.RangeEnd
		if rangeEnd == nil {
			// An open-ended range defaults to one hour.
			end := filter.RangeStart.Add(time.Hour)
			rangeEnd = &end
		}
		where = append(where, "b.start_time >= ? AND b.start_time < ?")
		args = append(args, formatTime(*filter.RangeStart), formatTime(*rangeEnd))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	from := ` FROM bookings b
		JOIN users u ON u.id = b.user_id
		JOIN meeting_rooms m ON m.id = b.room_id`

	var total int64
	if err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT
			b.id, b.room_id, b.user_id, b.start_time, b.end_time, b.status, b.create_time, b.update_time,
			u.id, u.username, u.nick_name, u.email, u.head_pic, u.phone, u.is_admin, u.is_frozen,
			m.id, m.name, m.capacity, m.location, m.equipment, m.description` +
		from + clause + ` ORDER BY b.id LIMIT ? OFFSET ?`

	rows, err := r.store.db.QueryContext(ctx, query, append(args, take, skip)...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	details := make([]persistence.BookingDetail, 0, take)
	for rows.Next() {
		var (
			detail                 persistence.BookingDetail
			startTime, endTime     string
			createTime, updateTime string
			status                 string
		)
		err := rows.Scan(
			&detail.ID, &detail.Booking.RoomID, &detail.Booking.UserID,
			&startTime, &endTime, &status, &createTime, &updateTime,
			&detail.User.ID, &detail.User.Username, &detail.User.NickName,
			&detail.User.Email, &detail.User.HeadPic, &detail.User.Phone,
			&detail.User.IsAdmin, &detail.User.IsFrozen,
			&detail.Room.ID, &detail.Room.Name, &detail.Room.Capacity,
			&detail.Room.Location, &detail.Room.Equipment, &detail.Room.Description,
		)
		if err != nil {
			return nil, 0, mapError(err)
		}

		detail.Status = persistence.BookingStatus(status)
		if detail.StartTime, err = parseTime(startTime); err != nil {
			return nil, 0, err
		}
		if detail.EndTime, err = parseTime(endTime); err != nil {
			return nil, 0, err
		}
		if detail.CreateTime, err = parseTime(createTime); err != nil {
			return nil, 0, err
		}
		if detail.UpdateTime, err = parseTime(updateTime); err != nil {
			return nil, 0, err
		}
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return details, total, nil
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var (
		booking                persistence.Booking
		startTime, endTime     string
		createTime, updateTime string
		status                 string
	)
	err := row.Scan(
		&booking.ID,
		&booking.RoomID,
		&booking.UserID,
		&startTime,
		&endTime,
		&status,
		&createTime,
		&updateTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, mapError(err)
	}

	booking.Status = persistence.BookingStatus(status)
	if booking.StartTime, err = parseTime(startTime); err != nil {
		return persistence.Booking{}, err
	}
	if booking.EndTime, err = parseTime(endTime); err != nil {
		return persistence.Booking{}, err
	}
	if booking.CreateTime, err = parseTime(createTime); err != nil {
		return persistence.Booking{}, err
	}
	if booking.UpdateTime, err = parseTime(updateTime); err != nil {
		return persistence.Booking{}, err
	}
	return booking, nil
}
