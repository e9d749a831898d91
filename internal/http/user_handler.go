package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/roombook/internal/application"
)

type userService interface {
	Register(ctx context.Context, params application.RegisterParams) (application.User, error)
	SendRegisterCaptcha(ctx context.Context, username, address string) error
	SendPasswordCaptcha(ctx context.Context, address string) error
	SendUpdateCaptcha(ctx context.Context, address string) error
	UpdatePassword(ctx context.Context, params application.UpdatePasswordParams) error
	UpdateProfile(ctx context.Context, params application.UpdateProfileParams) error
	Freeze(ctx context.Context, id int64) error
	Info(ctx context.Context, id int64) (application.User, error)
	List(ctx context.Context, params application.ListUsersParams) (application.UserPage, error)
}

type UserHandler struct {
	service   userService
	responder responder
	logger    *slog.Logger
}

func NewUserHandler(service userService, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	return &UserHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Register", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode register request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Register", "username", req.Username)

	user, err := h.service.Register(r.Context(), application.RegisterParams{
		Username: req.Username,
		Password: req.Password,
		NickName: req.NickName,
		Email:    req.Email,
		Captcha:  req.Captcha,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "registration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", user.ID).InfoContext(r.Context(), "user registered")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, userResponse{User: toUserDTO(user)})
}

func (h *UserHandler) RegisterCaptcha(w http.ResponseWriter, r *http.Request) {
	h.sendCaptcha(w, r, "RegisterCaptcha", func(ctx context.Context, address string) error {
		username := strings.TrimSpace(r.URL.Query().Get("username"))
		return h.service.SendRegisterCaptcha(ctx, username, address)
	})
}

func (h *UserHandler) UpdatePasswordCaptcha(w http.ResponseWriter, r *http.Request) {
	h.sendCaptcha(w, r, "UpdatePasswordCaptcha", func(ctx context.Context, address string) error {
		return h.service.SendPasswordCaptcha(ctx, address)
	})
}

func (h *UserHandler) UpdateCaptcha(w http.ResponseWriter, r *http.Request) {
	h.sendCaptcha(w, r, "UpdateCaptcha", func(ctx context.Context, address string) error {
		return h.service.SendUpdateCaptcha(ctx, address)
	})
}

func (h *UserHandler) sendCaptcha(w http.ResponseWriter, r *http.Request, operation string, send func(ctx context.Context, address string) error) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	address := strings.TrimSpace(r.URL.Query().Get("address"))
	logger := h.log(r.Context(), operation, "address", address)

	if err := send(r.Context(), address); err != nil {
		logger.ErrorContext(r.Context(), "captcha delivery failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "captcha sent")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "captcha sent"})
}

func (h *UserHandler) Info(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	user, err := h.service.Info(r.Context(), principal.UserID)
	if err != nil {
		h.log(r.Context(), "Info", "user_id", principal.UserID).ErrorContext(r.Context(), "profile lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode profile update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "user_id", principal.UserID)

	err := h.service.UpdateProfile(r.Context(), application.UpdateProfileParams{
		UserID:   principal.UserID,
		NickName: req.NickName,
		HeadPic:  req.HeadPic,
		Email:    req.Email,
		Captcha:  req.Captcha,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "profile update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "profile updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "profile updated"})
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdatePassword", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode password update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdatePassword", "user_id", principal.UserID)

	err := h.service.UpdatePassword(r.Context(), application.UpdatePasswordParams{
		UserID:   principal.UserID,
		Email:    req.Email,
		Password: req.Password,
		Captcha:  req.Captcha,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "password update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "password updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "password updated"})
}

func (h *UserHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("id")), 10, 64)
	if err != nil || id <= 0 {
		h.log(r.Context(), "Freeze", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid user id for freeze")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Freeze", "user_id", id)

	if err := h.service.Freeze(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "freeze failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user frozen")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "user frozen"})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	params := application.ListUsersParams{
		PageNo:   queryInt(query.Get("pageNo"), 1),
		PageSize: queryInt(query.Get("pageSize"), 10),
		Username: strings.TrimSpace(query.Get("username")),
		NickName: strings.TrimSpace(query.Get("nickName")),
		Email:    strings.TrimSpace(query.Get("email")),
	}

	page, err := h.service.List(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "user listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	users := make([]userDTO, 0, len(page.Users))
	for _, user := range page.Users {
		users = append(users, toUserDTO(user))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userListResponse{Users: users, TotalCount: page.TotalCount})
}

func queryInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	NickName string `json:"nickName"`
	Email    string `json:"email"`
	Captcha  string `json:"captcha"`
}

type updateProfileRequest struct {
	NickName string `json:"nickName"`
	HeadPic  string `json:"headPic"`
	Email    string `json:"email"`
	Captcha  string `json:"captcha"`
}

type updatePasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Captcha  string `json:"captcha"`
}

type userResponse struct {
	User userDTO `json:"user"`
}

type userListResponse struct {
	Users      []userDTO `json:"users"`
	TotalCount int64     `json:"totalCount"`
}

type messageResponse struct {
	Message string `json:"message"`
}
