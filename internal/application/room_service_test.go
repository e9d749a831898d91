package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/example/roombook/internal/persistence"
)

func TestRoomService_Create(t *testing.T) {
	t.Parallel()

	t.Run("stores a catalog entry", func(t *testing.T) {
		t.Parallel()

		rooms := newRoomRepoStub()
		svc := NewRoomService(rooms, nil)

		room, err := svc.Create(context.Background(), RoomInput{Name: " Boardroom ", Capacity: 12, Location: "3F", Equipment: "projector"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if room.ID == 0 {
			t.Fatal("expected assigned room id")
		}
		if room.Name != "Boardroom" {
			t.Fatalf("expected trimmed name, got %q", room.Name)
		}
	})

	t.Run("rejects taken names", func(t *testing.T) {
		t.Parallel()

		rooms := newRoomRepoStub()
		rooms.seed(persistence.MeetingRoom{ID: 1, Name: "Boardroom"})
		svc := NewRoomService(rooms, nil)

		_, err := svc.Create(context.Background(), RoomInput{Name: "Boardroom", Capacity: 12})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("collects field validation errors", func(t *testing.T) {
		t.Parallel()

		svc := NewRoomService(newRoomRepoStub(), nil)

		var vErr *ValidationError
		_, err := svc.Create(context.Background(), RoomInput{Name: "  ", Capacity: -1})
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if len(vErr.FieldErrors) != 2 {
			t.Fatalf("expected two field errors, got %#v", vErr.FieldErrors)
		}
	})
}

func TestRoomService_Update(t *testing.T) {
	t.Parallel()

	t.Run("keeps equipment and description when the input omits them", func(t *testing.T) {
		t.Parallel()

		rooms := newRoomRepoStub()
		rooms.seed(persistence.MeetingRoom{ID: 1, Name: "Boardroom", Capacity: 12, Equipment: "projector", Description: "large"})
		svc := NewRoomService(rooms, nil)

		room, err := svc.Update(context.Background(), 1, RoomInput{Name: "Boardroom", Capacity: 20, Location: "4F"})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if room.Capacity != 20 || room.Location != "4F" {
			t.Fatalf("expected overwritten fields, got %#v", room)
		}
		if room.Equipment != "projector" || room.Description != "large" {
			t.Fatalf("expected stored values to be kept, got %#v", room)
		}
	})

	t.Run("reports missing rooms", func(t *testing.T) {
		t.Parallel()

		svc := NewRoomService(newRoomRepoStub(), nil)
		if _, err := svc.Update(context.Background(), 404, RoomInput{Name: "x"}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRoomService_GetDelete(t *testing.T) {
	t.Parallel()

	rooms := newRoomRepoStub()
	rooms.seed(persistence.MeetingRoom{ID: 1, Name: "Boardroom"})
	svc := NewRoomService(rooms, nil)

	room, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if room.Name != "Boardroom" {
		t.Fatalf("unexpected room %#v", room)
	}

	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoomService_Find(t *testing.T) {
	t.Parallel()

	t.Run("validates paging parameters", func(t *testing.T) {
		t.Parallel()

		svc := NewRoomService(newRoomRepoStub(), nil)

		var vErr *ValidationError
		if _, err := svc.Find(context.Background(), ListRoomsParams{PageNo: 0, PageSize: 10}); !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("translates paging into skip and take", func(t *testing.T) {
		t.Parallel()

		rooms := newRoomRepoStub()
		svc := NewRoomService(rooms, nil)

		if _, err := svc.Find(context.Background(), ListRoomsParams{PageNo: 2, PageSize: 8, Name: "Board"}); err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if rooms.lastSkip != 8 || rooms.lastTake != 8 {
			t.Fatalf("expected skip=8 take=8, got %d/%d", rooms.lastSkip, rooms.lastTake)
		}
		if rooms.lastFilter.Name != "Board" {
			t.Fatalf("expected name filter, got %#v", rooms.lastFilter)
		}
	})
}

type roomRepoStub struct {
	mu         sync.Mutex
	nextID     int64
	rows       map[int64]persistence.MeetingRoom
	lastFilter persistence.RoomFilter
	lastSkip   int
	lastTake   int
}

func newRoomRepoStub() *roomRepoStub {
	return &roomRepoStub{rows: make(map[int64]persistence.MeetingRoom)}
}

func (s *roomRepoStub) seed(room persistence.MeetingRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[room.ID] = room
	if room.ID > s.nextID {
		s.nextID = room.ID
	}
}

func (s *roomRepoStub) CreateRoom(_ context.Context, room persistence.MeetingRoom) (persistence.MeetingRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.Name == room.Name {
			return persistence.MeetingRoom{}, persistence.ErrDuplicate
		}
	}
	s.nextID++
	room.ID = s.nextID
	s.rows[room.ID] = room
	return room, nil
}

func (s *roomRepoStub) UpdateRoom(_ context.Context, room persistence.MeetingRoom) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[room.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.rows[room.ID] = room
	return nil
}

func (s *roomRepoStub) GetRoom(_ context.Context, id int64) (persistence.MeetingRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rows[id]
	if !ok {
		return persistence.MeetingRoom{}, persistence.ErrNotFound
	}
	return room, nil
}

func (s *roomRepoStub) GetRoomByName(_ context.Context, name string) (persistence.MeetingRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rows {
		if room.Name == name {
			return room, nil
		}
	}
	return persistence.MeetingRoom{}, persistence.ErrNotFound
}

func (s *roomRepoStub) DeleteRoom(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *roomRepoStub) ListRooms(_ context.Context, filter persistence.RoomFilter, skip, take int) ([]persistence.MeetingRoom, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter = filter
	s.lastSkip = skip
	s.lastTake = take
	return nil, int64(len(s.rows)), nil
}
