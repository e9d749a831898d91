package persistence

import (
	"context"
	"time"
)

// UserFilter narrows paginated user listings. Empty fields match everything.
type UserFilter struct {
	Username string
	NickName string
	Email    string
}

// UserRepository exposes account storage operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	// FindAdminUser returns any user with the admin flag set.
	FindAdminUser(ctx context.Context) (User, error)
	FreezeUser(ctx context.Context, id int64) error
	// ListUsers returns one page plus the unpaged total count.
	ListUsers(ctx context.Context, filter UserFilter, skip, take int) ([]User, int64, error)
}

// RoomFilter narrows paginated room listings.
type RoomFilter struct {
	Name      string
	Capacity  int
	Equipment string
}

// RoomRepository exposes meeting-room catalog operations.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room MeetingRoom) (MeetingRoom, error)
	UpdateRoom(ctx context.Context, room MeetingRoom) error
	GetRoom(ctx context.Context, id int64) (MeetingRoom, error)
	GetRoomByName(ctx context.Context, name string) (MeetingRoom, error)
	DeleteRoom(ctx context.Context, id int64) error
	ListRooms(ctx context.Context, filter RoomFilter, skip, take int) ([]MeetingRoom, int64, error)
}

// BookingFilter narrows paginated booking listings.
type BookingFilter struct {
	Username     string
	RoomName     string
	RoomLocation string
	RangeStart   *time.Time
	RangeEnd     *time.Time
}

// BookingRepository exposes reservation storage operations.
type BookingRepository interface {
	InsertBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	// UpdateBookingStatus overwrites the status regardless of the current
	// state. Missing ids report ErrNotFound.
	UpdateBookingStatus(ctx context.Context, id int64, status BookingStatus) error
	// FindOverlapping returns bookings for the room whose [start, end)
	// interval intersects the given one and whose status is in statuses.
	FindOverlapping(ctx context.Context, roomID int64, start, end time.Time, statuses []BookingStatus) ([]Booking, error)
	// ListBookings returns one joined page plus the unpaged total count.
	ListBookings(ctx context.Context, filter BookingFilter, skip, take int) ([]BookingDetail, int64, error)
}
