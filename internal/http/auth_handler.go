package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/roombook/internal/application"
)

type authService interface {
	Login(ctx context.Context, params application.LoginParams, adminLogin bool) (application.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string, adminMode bool) (application.TokenPair, error)
}

type AuthHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// Login handles the standard user login endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, false)
}

// AdminLogin handles the administrator login endpoint.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, true)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, adminLogin bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Login", "username", req.Username, "admin_login", adminLogin)

	result, err := h.service.Login(r.Context(), application.LoginParams{
		Username: req.Username,
		Password: req.Password,
	}, adminLogin)
	if err != nil {
		logger.ErrorContext(r.Context(), "login rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", result.User.ID).InfoContext(r.Context(), "user logged in")

	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		UserInfo:     toUserDTO(result.User),
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// Refresh handles token rotation for the standard user endpoint.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.refresh(w, r, false)
}

// AdminRefresh handles token rotation for the administrator endpoint.
func (h *AuthHandler) AdminRefresh(w http.ResponseWriter, r *http.Request) {
	h.refresh(w, r, true)
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request, adminMode bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Refresh", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode refresh request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Refresh", "admin_mode", adminMode)

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken, adminMode)
	if err != nil {
		logger.ErrorContext(r.Context(), "refresh rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "token pair rotated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, refreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserInfo     userDTO `json:"userInfo"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type userDTO struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	NickName    string   `json:"nickName"`
	Email       string   `json:"email"`
	HeadPic     string   `json:"headPic,omitempty"`
	Phone       string   `json:"phoneNumber,omitempty"`
	IsAdmin     bool     `json:"isAdmin"`
	IsFrozen    bool     `json:"isFrozen"`
	CreateTime  string   `json:"createTime,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

func toUserDTO(user application.User) userDTO {
	dto := userDTO{
		ID:          user.ID,
		Username:    user.Username,
		NickName:    user.NickName,
		Email:       user.Email,
		HeadPic:     user.HeadPic,
		Phone:       user.Phone,
		IsAdmin:     user.IsAdmin,
		IsFrozen:    user.IsFrozen,
		Roles:       user.Roles,
		Permissions: user.Permissions,
	}
	if !user.CreateTime.IsZero() {
		dto.CreateTime = user.CreateTime.UTC().Format(time.RFC3339)
	}
	return dto
}
