package persistence

import "time"

// User represents an account row with its joined roles.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	NickName     string
	Email        string
	HeadPic      string
	Phone        string
	IsAdmin      bool
	IsFrozen     bool
	CreateTime   time.Time
	UpdateTime   time.Time
	Roles        []Role
}

// Role groups permissions under a name.
type Role struct {
	ID          int64
	Name        string
	Permissions []Permission
}

// Permission is a grantable capability with a unique code.
type Permission struct {
	ID          int64
	Code        string
	Description string
}

// MeetingRoom represents a bookable room catalog entry.
type MeetingRoom struct {
	ID          int64
	Name        string
	Capacity    int
	Location    string
	Equipment   string
	Description string
	CreateTime  time.Time
	UpdateTime  time.Time
}

// BookingStatus enumerates the booking lifecycle states.
type BookingStatus string

const (
	// BookingStatusPending marks a freshly admitted reservation awaiting review.
	BookingStatusPending BookingStatus = "pending"
	// BookingStatusApplied marks an approved reservation.
	BookingStatusApplied BookingStatus = "applied"
	// BookingStatusCanceled marks a rejected reservation.
	BookingStatusCanceled BookingStatus = "canceled"
	// BookingStatusUnbind marks a released reservation.
	BookingStatusUnbind BookingStatus = "unbind"
)

// ValidBookingStatus reports whether s is one of the lifecycle states.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusApplied, BookingStatusCanceled, BookingStatusUnbind:
		return true
	}
	return false
}

// Booking represents a reservation row. Rows are never deleted; terminal
// states keep the row as an audit trail.
type Booking struct {
	ID         int64
	RoomID     int64
	UserID     int64
	StartTime  time.Time
	EndTime    time.Time
	Status     BookingStatus
	CreateTime time.Time
	UpdateTime time.Time
}

// BookingDetail is a booking joined with its owner and room for listings.
// The owner's password hash is never populated.
type BookingDetail struct {
	Booking
	User User
	Room MeetingRoom
}
