package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/roombook/internal/interval"
	"github.com/example/roombook/internal/kvstore"
	"github.com/example/roombook/internal/persistence"
)

const (
	urgeKeyPrefix = "urge_"
	adminEmailKey = "admin_email"
	urgeTTL       = 30 * time.Minute
)

// occupyingStatuses are the states that block a room. Canceled and unbind
// bookings read as released.
var occupyingStatuses = []persistence.BookingStatus{
	persistence.BookingStatusPending,
	persistence.BookingStatusApplied,
}

// BookingRepository captures the persistence interactions needed by the service.
type BookingRepository interface {
	InsertBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error)
	GetBooking(ctx context.Context, id int64) (persistence.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status persistence.BookingStatus) error
	FindOverlapping(ctx context.Context, roomID int64, start, end time.Time, statuses []persistence.BookingStatus) ([]persistence.Booking, error)
	ListBookings(ctx context.Context, filter persistence.BookingFilter, skip, take int) ([]persistence.BookingDetail, int64, error)
}

// RoomCatalog exposes room lookups.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id int64) (persistence.MeetingRoom, error)
}

// UserDirectory exposes user lookups.
type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (persistence.User, error)
	FindAdminUser(ctx context.Context) (persistence.User, error)
}

// BookingService owns reservation admission, the status state machine, and
// the urge-notification throttle.
type BookingService struct {
	bookings BookingRepository
	rooms    RoomCatalog
	users    UserDirectory
	store    kvstore.Store
	mailer   Mailer
	now      func() time.Time
	logger   *slog.Logger

	// roomLocks serializes the overlap-check-then-insert window per room.
	// Without it two concurrent Add calls could both pass the check and
	// double-book the room.
	mu        sync.Mutex
	roomLocks map[int64]*sync.Mutex
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingRepository, rooms RoomCatalog, users UserDirectory, store kvstore.Store, mailer Mailer, now func() time.Time, logger *slog.Logger) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:  bookings,
		rooms:     rooms,
		users:     users,
		store:     store,
		mailer:    mailer,
		now:       now,
		logger:    defaultLogger(logger),
		roomLocks: make(map[int64]*sync.Mutex),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

func (s *BookingService) roomLock(roomID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		s.roomLocks[roomID] = lock
	}
	return lock
}

// Add admits a reservation for [start, end) on the room when no pending or
// applied booking overlaps it. Two intervals overlap iff a < d && c < b, so
// back-to-back reservations sharing a boundary are both admissible.
func (s *BookingService) Add(ctx context.Context, params AddBookingParams) (result Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil || s.rooms == nil || s.users == nil {
		err = fmt.Errorf("booking service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Add",
		"room_id", params.RoomID,
		"user_id", params.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking admission failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", result.ID).InfoContext(ctx, "booking admitted")
	}()

	span := interval.NewSpan(params.StartTime, params.EndTime)
	if !span.Valid() {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		err = vErr
		return
	}

	if _, err = s.rooms.GetRoom(ctx, params.RoomID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		return
	}
	if _, err = s.users.GetUser(ctx, params.UserID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		return
	}

	lock := s.roomLock(params.RoomID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.bookings.FindOverlapping(ctx, params.RoomID, params.StartTime, params.EndTime, occupyingStatuses)
	if err != nil {
		return
	}

	occupancies := make([]interval.Occupancy, 0, len(existing))
	for _, b := range existing {
		occupancies = append(occupancies, interval.Occupancy{
			BookingID: b.ID,
			Span:      interval.NewSpan(b.StartTime, b.EndTime),
		})
	}
	if conflict, found := interval.FirstConflict(occupancies, span); found {
		logger.With("conflicting_booking_id", conflict.BookingID).InfoContext(ctx, "room occupied for requested interval")
		err = ErrRoomUnavailable
		return
	}

	persisted, err := s.bookings.InsertBooking(ctx, persistence.Booking{
		RoomID:    params.RoomID,
		UserID:    params.UserID,
		StartTime: params.StartTime,
		EndTime:   params.EndTime,
		Status:    persistence.BookingStatusPending,
	})
	if err != nil {
		return
	}

	result = bookingFromPersistence(persisted)
	return
}

// Apply moves the booking to applied.
func (s *BookingService) Apply(ctx context.Context, id int64) error {
	return s.transition(ctx, "Apply", id, persistence.BookingStatusApplied)
}

// Reject moves the booking to canceled.
func (s *BookingService) Reject(ctx context.Context, id int64) error {
	return s.transition(ctx, "Reject", id, persistence.BookingStatusCanceled)
}

// Unbind moves the booking to unbind.
func (s *BookingService) Unbind(ctx context.Context, id int64) error {
	return s.transition(ctx, "Unbind", id, persistence.BookingStatusUnbind)
}

// transition overwrites the status keyed by id. There is deliberately no
// current-state precondition: any booking can be moved to any of the three
// target states at any time, matching the permissive review workflow.
func (s *BookingService) transition(ctx context.Context, operation string, id int64, status persistence.BookingStatus) error {
	if s == nil || s.bookings == nil {
		return fmt.Errorf("booking service not configured")
	}

	logger := s.loggerWith(ctx, operation, "booking_id", id)

	if err := s.bookings.UpdateBookingStatus(ctx, id, status); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		logger.ErrorContext(ctx, "status transition failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.With("status", string(status)).InfoContext(ctx, "booking status updated")
	return nil
}

// Find returns one page of joined bookings. A range start without a range
// end implies a one-hour window.
func (s *BookingService) Find(ctx context.Context, params FindBookingsParams) (BookingPage, error) {
	if s == nil || s.bookings == nil {
		return BookingPage{}, fmt.Errorf("booking service not configured")
	}

	if params.PageNo < 1 || params.PageSize < 0 {
		vErr := &ValidationError{}
		vErr.add("page", "pageNo must be >= 1 and pageSize must be >= 0")
		return BookingPage{}, vErr
	}

	filter := persistence.BookingFilter{
		Username:     params.Username,
		RoomName:     params.RoomName,
		RoomLocation: params.RoomLocation,
		RangeStart:   params.RangeStart,
		RangeEnd:     params.RangeEnd,
	}

	skip := (params.PageNo - 1) * params.PageSize
	details, total, err := s.bookings.ListBookings(ctx, filter, skip, params.PageSize)
	if err != nil {
		return BookingPage{}, err
	}

	page := BookingPage{TotalCount: total, Bookings: make([]BookingDetail, 0, len(details))}
	for _, detail := range details {
		page.Bookings = append(page.Bookings, BookingDetail{
			Booking: bookingFromPersistence(detail.Booking),
			User:    userFromPersistence(detail.User, nil, nil),
			Room:    roomFromPersistence(detail.Room),
		})
	}
	return page, nil
}

// Urge notifies the admin that a booking awaits review, at most once per
// throttle window. The admin address is cached without expiry after the
// first lookup: a changed address is not picked up until restart, a
// documented trade-off for skipping the query on every urge.
func (s *BookingService) Urge(ctx context.Context, bookingID int64) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.store == nil || s.users == nil || s.mailer == nil {
		return fmt.Errorf("booking service not configured")
	}

	logger := s.loggerWith(ctx, "Urge", "booking_id", bookingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "urge failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "urge notification sent")
	}()

	urgeKey := fmt.Sprintf("%s%d", urgeKeyPrefix, bookingID)
	if _, found, getErr := s.store.Get(ctx, urgeKey); getErr != nil {
		err = getErr
		return
	} else if found {
		err = ErrAlreadyUrged
		return
	}

	email, found, err := s.store.Get(ctx, adminEmailKey)
	if err != nil {
		return
	}
	if !found {
		admin, lookupErr := s.users.FindAdminUser(ctx)
		if lookupErr != nil {
			if errors.Is(lookupErr, persistence.ErrNotFound) {
				lookupErr = ErrNotFound
			}
			err = lookupErr
			return
		}
		email = admin.Email
		if err = s.store.Set(ctx, adminEmailKey, email, 0); err != nil {
			return
		}
	}

	subject := "Urge for booking"
	body := fmt.Sprintf("<p>There is a user urge for booking %d</p>", bookingID)
	if err = s.mailer.Send(ctx, email, subject, body); err != nil {
		return
	}

	err = s.store.Set(ctx, urgeKey, "1", urgeTTL)
	return
}
