package application

import (
	"time"

	"github.com/example/roombook/internal/persistence"
)

// Principal represents the authenticated identity invoking a service method,
// decoded from an access token.
type Principal struct {
	UserID      int64
	Username    string
	IsAdmin     bool
	Roles       []string
	Permissions []string
}

// User is the account view exposed by the application services. It never
// carries the password hash.
type User struct {
	ID          int64
	Username    string
	NickName    string
	Email       string
	HeadPic     string
	Phone       string
	IsAdmin     bool
	IsFrozen    bool
	CreateTime  time.Time
	Roles       []string
	Permissions []string
}

// LoginParams captures the credentials supplied to a login endpoint.
type LoginParams struct {
	Username string
	Password string
}

// TokenPair bundles the access and refresh tokens issued together.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult captures the outcome of a successful login.
type LoginResult struct {
	User   User
	Tokens TokenPair
}

// RegisterParams captures the data required to register an account.
type RegisterParams struct {
	Username string
	Password string
	NickName string
	Email    string
	Captcha  string
}

// UpdatePasswordParams captures a captcha-gated password change.
type UpdatePasswordParams struct {
	UserID   int64
	Email    string
	Password string
	Captcha  string
}

// UpdateProfileParams captures a captcha-gated profile update.
type UpdateProfileParams struct {
	UserID   int64
	NickName string
	HeadPic  string
	Email    string
	Captcha  string
}

// ListUsersParams narrows the paged user listing.
type ListUsersParams struct {
	PageNo   int
	PageSize int
	Username string
	NickName string
	Email    string
}

// UserPage is one page of accounts plus the unpaged total count.
type UserPage struct {
	Users      []User
	TotalCount int64
}

// RoomInput captures caller provided meeting-room fields.
type RoomInput struct {
	Name        string
	Capacity    int
	Location    string
	Equipment   string
	Description string
}

// MeetingRoom is the catalog entry exposed by the application services.
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

// ListRoomsParams narrows the paged room listing.
type ListRoomsParams struct {
	PageNo    int
	PageSize  int
	Name      string
	Capacity  int
	Equipment string
}

// RoomPage is one page of catalog entries plus the unpaged total count.
type RoomPage struct {
	Rooms      []MeetingRoom
	TotalCount int64
}

// BookingStatus mirrors the persistence lifecycle states.
type BookingStatus = persistence.BookingStatus

// Booking is the reservation view exposed by the application services.
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

// BookingDetail joins a reservation with its owner and room for listings.
type BookingDetail struct {
	Booking
	User User
	Room MeetingRoom
}

// AddBookingParams captures a reservation request.
type AddBookingParams struct {
	RoomID    int64
	UserID    int64
	StartTime time.Time
	EndTime   time.Time
}

// FindBookingsParams narrows the paged booking listing.
type FindBookingsParams struct {
	PageNo       int
	PageSize     int
	Username     string
	RoomName     string
	RoomLocation string
	RangeStart   *time.Time
	RangeEnd     *time.Time
}

// BookingPage is one page of joined reservations plus the unpaged total count.
type BookingPage struct {
	Bookings   []BookingDetail
	TotalCount int64
}

func userFromPersistence(stored persistence.User, roleNames, permissions []string) User {
	return User{
		ID:          stored.ID,
		Username:    stored.Username,
		NickName:    stored.NickName,
		Email:       stored.Email,
		HeadPic:     stored.HeadPic,
		Phone:       stored.Phone,
		IsAdmin:     stored.IsAdmin,
		IsFrozen:    stored.IsFrozen,
		CreateTime:  stored.CreateTime,
		Roles:       roleNames,
		Permissions: permissions,
	}
}

func roomFromPersistence(stored persistence.MeetingRoom) MeetingRoom {
	return MeetingRoom{
		ID:          stored.ID,
		Name:        stored.Name,
		Capacity:    stored.Capacity,
		Location:    stored.Location,
		Equipment:   stored.Equipment,
		Description: stored.Description,
		CreateTime:  stored.CreateTime,
		UpdateTime:  stored.UpdateTime,
	}
}

func bookingFromPersistence(stored persistence.Booking) Booking {
	return Booking{
		ID:         stored.ID,
		RoomID:     stored.RoomID,
		UserID:     stored.UserID,
		StartTime:  stored.StartTime,
		EndTime:    stored.EndTime,
		Status:     stored.Status,
		CreateTime: stored.CreateTime,
		UpdateTime: stored.UpdateTime,
	}
}
