package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/roombook/internal/application"
)

type bookingService interface {
	Add(ctx context.Context, params application.AddBookingParams) (application.Booking, error)
	Apply(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64) error
	Unbind(ctx context.Context, id int64) error
	Find(ctx context.Context, params application.FindBookingsParams) (application.BookingPage, error)
	Urge(ctx context.Context, bookingID int64) error
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) Add(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	var req addBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Add", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Add", "room_id", req.MeetingRoomID, "user_id", principal.UserID)

	booking, err := h.service.Add(r.Context(), application.AddBookingParams{
		RoomID:    req.MeetingRoomID,
		UserID:    principal.UserID,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking admission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking admitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Apply(w http.ResponseWriter, r *http.Request, id int64) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.transition(w, r, "Apply", id, h.service.Apply)
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request, id int64) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.transition(w, r, "Reject", id, h.service.Reject)
}

func (h *BookingHandler) Unbind(w http.ResponseWriter, r *http.Request, id int64) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.transition(w, r, "Unbind", id, h.service.Unbind)
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, operation string, id int64, apply func(ctx context.Context, id int64) error) {

	logger := h.log(r.Context(), operation, "booking_id", id)

	if err := apply(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "status transition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking status updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "success"})
}

func (h *BookingHandler) Urge(w http.ResponseWriter, r *http.Request, id int64) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Urge", "booking_id", id)

	if err := h.service.Urge(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "urge failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "urge notification sent")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "urge sent"})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	params := application.FindBookingsParams{
		PageNo:       queryInt(query.Get("pageNo"), 1),
		PageSize:     queryInt(query.Get("pageSize"), 10),
		Username:     strings.TrimSpace(query.Get("username")),
		RoomName:     strings.TrimSpace(query.Get("meetingRoomName")),
		RoomLocation: strings.TrimSpace(query.Get("meetingRoomPosition")),
	}

	if raw := strings.TrimSpace(query.Get("bookingTimeRangeStart")); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		params.RangeStart = &start
	}
	if raw := strings.TrimSpace(query.Get("bookingTimeRangeEnd")); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		params.RangeEnd = &end
	}

	page, err := h.service.Find(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "booking listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	bookings := make([]bookingDetailDTO, 0, len(page.Bookings))
	for _, detail := range page.Bookings {
		bookings = append(bookings, bookingDetailDTO{
			bookingDTO: toBookingDTO(detail.Booking),
			User:       toUserDTO(detail.User),
			Room:       toRoomDTO(detail.Room),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingListResponse{Bookings: bookings, TotalCount: page.TotalCount})
}

type addBookingRequest struct {
	MeetingRoomID int64  `json:"meetingRoomId"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

type bookingDTO struct {
	ID         int64  `json:"id"`
	RoomID     int64  `json:"meetingRoomId"`
	UserID     int64  `json:"userId"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Status     string `json:"status"`
	CreateTime string `json:"createTime,omitempty"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	dto := bookingDTO{
		ID:        booking.ID,
		RoomID:    booking.RoomID,
		UserID:    booking.UserID,
		StartTime: booking.StartTime.UTC().Format(time.RFC3339),
		EndTime:   booking.EndTime.UTC().Format(time.RFC3339),
		Status:    string(booking.Status),
	}
	if !booking.CreateTime.IsZero() {
		dto.CreateTime = booking.CreateTime.UTC().Format(time.RFC3339)
	}
	return dto
}

type bookingDetailDTO struct {
	bookingDTO
	User userDTO `json:"user"`
	Room roomDTO `json:"room"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type bookingListResponse struct {
	Bookings   []bookingDetailDTO `json:"bookings"`
	TotalCount int64              `json:"totalCount"`
}
