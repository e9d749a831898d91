package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/roombook/internal/persistence"
)

// RoomRepository captures the persistence interactions needed by the service.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room persistence.MeetingRoom) (persistence.MeetingRoom, error)
	UpdateRoom(ctx context.Context, room persistence.MeetingRoom) error
	GetRoom(ctx context.Context, id int64) (persistence.MeetingRoom, error)
	GetRoomByName(ctx context.Context, name string) (persistence.MeetingRoom, error)
	DeleteRoom(ctx context.Context, id int64) error
	ListRooms(ctx context.Context, filter persistence.RoomFilter, skip, take int) ([]persistence.MeetingRoom, int64, error)
}

// RoomService orchestrates validation and persistence for the room catalog.
type RoomService struct {
	rooms  RoomRepository
	logger *slog.Logger
}

// NewRoomService wires dependencies for room operations.
func NewRoomService(rooms RoomRepository, logger *slog.Logger) *RoomService {
	return &RoomService{rooms: rooms, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// Create adds a catalog entry. Room names are unique.
func (s *RoomService) Create(ctx context.Context, input RoomInput) (MeetingRoom, error) {
	if s == nil || s.rooms == nil {
		return MeetingRoom{}, fmt.Errorf("room service not configured")
	}

	logger := s.loggerWith(ctx, "Create", "name", input.Name)

	if vErr := validateRoomInput(input); vErr.HasErrors() {
		return MeetingRoom{}, vErr
	}

	if _, err := s.rooms.GetRoomByName(ctx, input.Name); err == nil {
		logger.InfoContext(ctx, "room name already taken")
		return MeetingRoom{}, ErrAlreadyExists
	} else if !errors.Is(err, persistence.ErrNotFound) {
		return MeetingRoom{}, err
	}

	persisted, err := s.rooms.CreateRoom(ctx, persistence.MeetingRoom{
		Name:        strings.TrimSpace(input.Name),
		Capacity:    input.Capacity,
		Location:    input.Location,
		Equipment:   input.Equipment,
		Description: input.Description,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return MeetingRoom{}, ErrAlreadyExists
		}
		return MeetingRoom{}, err
	}

	logger.With("room_id", persisted.ID).InfoContext(ctx, "room created")
	return roomFromPersistence(persisted), nil
}

// Update overwrites a catalog entry. Description and equipment keep their
// stored values when the input leaves them empty.
func (s *RoomService) Update(ctx context.Context, id int64, input RoomInput) (MeetingRoom, error) {
	if s == nil || s.rooms == nil {
		return MeetingRoom{}, fmt.Errorf("room service not configured")
	}

	logger := s.loggerWith(ctx, "Update", "room_id", id)

	existing, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return MeetingRoom{}, ErrNotFound
		}
		return MeetingRoom{}, err
	}

	if vErr := validateRoomInput(input); vErr.HasErrors() {
		return MeetingRoom{}, vErr
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Capacity = input.Capacity
	existing.Location = input.Location
	if input.Equipment != "" {
		existing.Equipment = input.Equipment
	}
	if input.Description != "" {
		existing.Description = input.Description
	}

	if err := s.rooms.UpdateRoom(ctx, existing); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			return MeetingRoom{}, ErrNotFound
		case errors.Is(err, persistence.ErrDuplicate):
			return MeetingRoom{}, ErrAlreadyExists
		}
		return MeetingRoom{}, err
	}

	logger.InfoContext(ctx, "room updated")
	return roomFromPersistence(existing), nil
}

// Get retrieves one catalog entry.
func (s *RoomService) Get(ctx context.Context, id int64) (MeetingRoom, error) {
	if s == nil || s.rooms == nil {
		return MeetingRoom{}, fmt.Errorf("room service not configured")
	}

	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return MeetingRoom{}, ErrNotFound
		}
		return MeetingRoom{}, err
	}
	return roomFromPersistence(room), nil
}

// Delete removes a catalog entry.
func (s *RoomService) Delete(ctx context.Context, id int64) error {
	if s == nil || s.rooms == nil {
		return fmt.Errorf("room service not configured")
	}

	logger := s.loggerWith(ctx, "Delete", "room_id", id)

	if err := s.rooms.DeleteRoom(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		logger.ErrorContext(ctx, "room deletion failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "room deleted")
	return nil
}

// Find returns one page of catalog entries.
func (s *RoomService) Find(ctx context.Context, params ListRoomsParams) (RoomPage, error) {
	if s == nil || s.rooms == nil {
		return RoomPage{}, fmt.Errorf("room service not configured")
	}

	if params.PageNo < 1 || params.PageSize < 0 {
		vErr := &ValidationError{}
		vErr.add("page", "pageNo must be >= 1 and pageSize must be >= 0")
		return RoomPage{}, vErr
	}

	filter := persistence.RoomFilter{
		Name:      params.Name,
		Capacity:  params.Capacity,
		Equipment: params.Equipment,
	}

	skip := (params.PageNo - 1) * params.PageSize
	rooms, total, err := s.rooms.ListRooms(ctx, filter, skip, params.PageSize)
	if err != nil {
		return RoomPage{}, err
	}

	page := RoomPage{TotalCount: total, Rooms: make([]MeetingRoom, 0, len(rooms))}
	for _, room := range rooms {
		page.Rooms = append(page.Rooms, roomFromPersistence(room))
	}
	return page, nil
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity < 0 {
		vErr.add("capacity", "capacity must not be negative")
	}
	return vErr
}
