package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/roombook/internal/persistence"
)

var (
	userCounter    uint64
	roomCounter    uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic account record that can be
// materialised for application or persistence tests.
type UserFixture struct {
	ID           int64
	Username     string
	PasswordHash string
	NickName     string
	Email        string
	IsAdmin      bool
	IsFrozen     bool
	CreateTime   time.Time
	Roles        []persistence.Role
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           int64(idx),
		Username:     fmt.Sprintf("user%03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		NickName:     fmt.Sprintf("User %03d", idx),
		Email:        fmt.Sprintf("user%03d@example.com", idx),
		CreateTime:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUsername overrides the generated username.
func WithUsername(username string) UserOption {
	return func(f *UserFixture) {
		f.Username = username
	}
}

// WithPasswordHash overrides the generated password hash.
func WithPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithEmail overrides the generated email address.
func WithEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithAdmin sets the admin flag on the generated fixture.
func WithAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithFrozen sets the frozen flag on the generated fixture.
func WithFrozen(isFrozen bool) UserOption {
	return func(f *UserFixture) {
		f.IsFrozen = isFrozen
	}
}

// WithRoles attaches roles to the generated fixture.
func WithRoles(roles ...persistence.Role) UserOption {
	return func(f *UserFixture) {
		f.Roles = roles
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Username:     f.Username,
		PasswordHash: f.PasswordHash,
		NickName:     f.NickName,
		Email:        f.Email,
		IsAdmin:      f.IsAdmin,
		IsFrozen:     f.IsFrozen,
		CreateTime:   f.CreateTime,
		UpdateTime:   f.CreateTime,
		Roles:        f.Roles,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic meeting-room record.
type RoomFixture struct {
	ID          int64
	Name        string
	Capacity    int
	Location    string
	Equipment   string
	Description string
	CreateTime  time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := RoomFixture{
		ID:         int64(idx),
		Name:       fmt.Sprintf("Room %03d", idx),
		Capacity:   10,
		Location:   fmt.Sprintf("Floor %d", idx%5+1),
		CreateTime: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomLocation overrides the generated location.
func WithRoomLocation(location string) RoomOption {
	return func(f *RoomFixture) {
		f.Location = location
	}
}

// WithRoomEquipment overrides the generated equipment list.
func WithRoomEquipment(equipment string) RoomOption {
	return func(f *RoomFixture) {
		f.Equipment = equipment
	}
}

// Persistence returns the fixture as a persistence.MeetingRoom value.
func (f RoomFixture) Persistence() persistence.MeetingRoom {
	return persistence.MeetingRoom{
		ID:          f.ID,
		Name:        f.Name,
		Capacity:    f.Capacity,
		Location:    f.Location,
		Equipment:   f.Equipment,
		Description: f.Description,
		CreateTime:  f.CreateTime,
		UpdateTime:  f.CreateTime,
	}
}

// ---------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic reservation record. Each fixture
// claims its own hour so generated bookings never collide unless a test
// overrides the window.
type BookingFixture struct {
	ID        int64
	RoomID    int64
	UserID    int64
	StartTime time.Time
	EndTime   time.Time
	Status    persistence.BookingStatus
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture with optional overrides.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := BookingFixture{
		ID:        int64(idx),
		RoomID:    1,
		UserID:    1,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    persistence.BookingStatusPending,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingRoom overrides the room the booking claims.
func WithBookingRoom(roomID int64) BookingOption {
	return func(f *BookingFixture) {
		f.RoomID = roomID
	}
}

// WithBookingUser overrides the owning user.
func WithBookingUser(userID int64) BookingOption {
	return func(f *BookingFixture) {
		f.UserID = userID
	}
}

// WithBookingWindow overrides the reserved interval.
func WithBookingWindow(start, end time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithBookingStatus overrides the lifecycle status.
func WithBookingStatus(status persistence.BookingStatus) BookingOption {
	return func(f *BookingFixture) {
		f.Status = status
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:         f.ID,
		RoomID:     f.RoomID,
		UserID:     f.UserID,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		Status:     f.Status,
		CreateTime: f.StartTime,
		UpdateTime: f.StartTime,
	}
}
