package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/roombook/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository on SQLite.
type RoomRepository struct {
	store *Store
}

// NewRoomRepository binds a repository to the store.
func NewRoomRepository(store *Store) *RoomRepository {
	return &RoomRepository{store: store}
}

const roomColumns = `id, name, capacity, location, equipment, description, create_time, update_time`

// CreateRoom inserts a catalog entry and returns it with the assigned id.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.MeetingRoom) (persistence.MeetingRoom, error) {
	if strings.TrimSpace(room.Name) == "" {
		return persistence.MeetingRoom{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	room.CreateTime = now
	room.UpdateTime = now

	result, err := r.store.db.ExecContext(ctx, `
		INSERT INTO meeting_rooms (name, capacity, location, equipment, description, create_time, update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		room.Name,
		room.Capacity,
		room.Location,
		room.Equipment,
		room.Description,
		formatTime(room.CreateTime),
		formatTime(room.UpdateTime),
	)
	if err != nil {
		return persistence.MeetingRoom{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.MeetingRoom{}, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	room.ID = id
	return room, nil
}

// UpdateRoom overwrites the catalog entry.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.MeetingRoom) error {
	if room.ID == 0 {
		return persistence.ErrNotFound
	}
	room.UpdateTime = time.Now().UTC()

	result, err := r.store.db.ExecContext(ctx, `
		UPDATE meeting_rooms
		SET name = ?, capacity = ?, location = ?, equipment = ?, description = ?, update_time = ?
		WHERE id = ?`,
		room.Name,
		room.Capacity,
		room.Location,
		room.Equipment,
		room.Description,
		formatTime(room.UpdateTime),
		room.ID,
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

// GetRoom retrieves a catalog entry by id.
func (r *RoomRepository) GetRoom(ctx context.Context, id int64) (persistence.MeetingRoom, error) {
	return scanRoom(r.store.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM meeting_rooms WHERE id = ?`, id))
}

// GetRoomByName retrieves a catalog entry by its unique name.
func (r *RoomRepository) GetRoomByName(ctx context.Context, name string) (persistence.MeetingRoom, error) {
	return scanRoom(r.store.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM meeting_rooms WHERE name = ?`, name))
}

// DeleteRoom removes a catalog entry.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM meeting_rooms WHERE id = ?`, id)
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

// ListRooms returns one page of catalog entries plus the unpaged total count.
func (r *RoomRepository) ListRooms(ctx context.Context, filter persistence.RoomFilter, skip, take int) ([]persistence.MeetingRoom, int64, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if filter.Name != "" {
		where = append(where, "name LIKE ?")
		args = append(args, likePattern(filter.Name))
	}
	if filter.Capacity > 0 {
		where = append(where, "capacity = ?")
		args = append(args, filter.Capacity)
	}
	if filter.Equipment != "" {
		where = append(where, "equipment LIKE ?")
		args = append(args, likePattern(filter.Equipment))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meeting_rooms`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+roomColumns+` FROM meeting_rooms`+clause+` ORDER BY id LIMIT ? OFFSET ?`,
		append(args, take, skip)...,
	)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	rooms := make([]persistence.MeetingRoom, 0, take)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return rooms, total, nil
}

func scanRoom(row rowScanner) (persistence.MeetingRoom, error) {
	var (
		room                   persistence.MeetingRoom
		createTime, updateTime string
	)
	err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Capacity,
		&room.Location,
		&room.Equipment,
		&room.Description,
		&createTime,
		&updateTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.MeetingRoom{}, persistence.ErrNotFound
		}
		return persistence.MeetingRoom{}, mapError(err)
	}

	if room.CreateTime, err = parseTime(createTime); err != nil {
		return persistence.MeetingRoom{}, err
	}
	if room.UpdateTime, err = parseTime(updateTime); err != nil {
		return persistence.MeetingRoom{}, err
	}
	return room, nil
}
