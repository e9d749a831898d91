package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/roombook/internal/application"
)

type authServiceStub struct {
	loginResult application.LoginResult
	loginErr    error
	refreshPair application.TokenPair
	refreshErr  error

	lastAdminLogin bool
}

func (s *authServiceStub) Login(_ context.Context, _ application.LoginParams, adminLogin bool) (application.LoginResult, error) {
	s.lastAdminLogin = adminLogin
	if s.loginErr != nil {
		return application.LoginResult{}, s.loginErr
	}
	return s.loginResult, nil
}

func (s *authServiceStub) Refresh(context.Context, string, bool) (application.TokenPair, error) {
	if s.refreshErr != nil {
		return application.TokenPair{}, s.refreshErr
	}
	return s.refreshPair, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Parallel()

	t.Run("returns tokens and the user profile", func(t *testing.T) {
		t.Parallel()

		stub := &authServiceStub{loginResult: application.LoginResult{
			User:   application.User{ID: 7, Username: "alice", Roles: []string{"member"}},
			Tokens: application.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
		}}
		handler := NewAuthHandler(stub, nil)

		req := httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(`{"username":"alice","password":"secret"}`))
		recorder := httptest.NewRecorder()
		handler.Login(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if stub.lastAdminLogin {
			t.Fatal("expected standard login mode")
		}

		var resp loginResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.AccessToken != "access" || resp.RefreshToken != "refresh" {
			t.Fatalf("unexpected tokens %#v", resp)
		}
		if resp.UserInfo.Username != "alice" {
			t.Fatalf("unexpected user info %#v", resp.UserInfo)
		}
	})

	t.Run("admin endpoint selects admin mode", func(t *testing.T) {
		t.Parallel()

		stub := &authServiceStub{loginResult: application.LoginResult{User: application.User{ID: 1, IsAdmin: true}}}
		handler := NewAuthHandler(stub, nil)

		req := httptest.NewRequest(http.MethodPost, "/user/admin/login", strings.NewReader(`{"username":"root","password":"secret"}`))
		handler.AdminLogin(httptest.NewRecorder(), req)

		if !stub.lastAdminLogin {
			t.Fatal("expected admin login mode")
		}
	})

	t.Run("maps invalid credentials to 401", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&authServiceStub{loginErr: application.ErrInvalidCredentials}, nil)

		req := httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(`{"username":"alice","password":"wrong"}`))
		recorder := httptest.NewRecorder()
		handler.Login(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
		var resp errorResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
			t.Fatalf("unexpected error code %q", resp.ErrorCode)
		}
	})

	t.Run("maps frozen accounts to 403", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&authServiceStub{loginErr: application.ErrAccountFrozen}, nil)

		req := httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(`{"username":"alice","password":"secret"}`))
		recorder := httptest.NewRecorder()
		handler.Login(recorder, req)

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", recorder.Code)
		}
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&authServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(`{garbage`))
		recorder := httptest.NewRecorder()
		handler.Login(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})
}

func TestAuthHandlerRefresh(t *testing.T) {
	t.Parallel()

	t.Run("returns the rotated pair", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&authServiceStub{refreshPair: application.TokenPair{AccessToken: "a2", RefreshToken: "r2"}}, nil)

		req := httptest.NewRequest(http.MethodPost, "/user/refresh", strings.NewReader(`{"refreshToken":"r1"}`))
		recorder := httptest.NewRecorder()
		handler.Refresh(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		var resp refreshResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.AccessToken != "a2" || resp.RefreshToken != "r2" {
			t.Fatalf("unexpected pair %#v", resp)
		}
	})

	t.Run("maps expired sessions to 401", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&authServiceStub{refreshErr: application.ErrSessionExpired}, nil)

		req := httptest.NewRequest(http.MethodPost, "/user/refresh", strings.NewReader(`{"refreshToken":"stale"}`))
		recorder := httptest.NewRecorder()
		handler.Refresh(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})
}

type bookingServiceStub struct {
	booking application.Booking
	addErr  error
	urgeErr error
	page    application.BookingPage
	findErr error

	lastParams     application.AddBookingParams
	lastFind       application.FindBookingsParams
	transitionSeen []string
}

func (s *bookingServiceStub) Add(_ context.Context, params application.AddBookingParams) (application.Booking, error) {
	s.lastParams = params
	if s.addErr != nil {
		return application.Booking{}, s.addErr
	}
	return s.booking, nil
}

func (s *bookingServiceStub) Apply(_ context.Context, _ int64) error {
	s.transitionSeen = append(s.transitionSeen, "apply")
	return nil
}

func (s *bookingServiceStub) Reject(_ context.Context, _ int64) error {
	s.transitionSeen = append(s.transitionSeen, "reject")
	return nil
}

func (s *bookingServiceStub) Unbind(_ context.Context, _ int64) error {
	s.transitionSeen = append(s.transitionSeen, "unbind")
	return nil
}

func (s *bookingServiceStub) Find(_ context.Context, params application.FindBookingsParams) (application.BookingPage, error) {
	s.lastFind = params
	if s.findErr != nil {
		return application.BookingPage{}, s.findErr
	}
	return s.page, nil
}

func (s *bookingServiceStub) Urge(context.Context, int64) error {
	return s.urgeErr
}

func TestBookingHandlerAdd(t *testing.T) {
	t.Parallel()

	t.Run("books for the authenticated principal", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
		stub := &bookingServiceStub{booking: application.Booking{ID: 5, RoomID: 1, UserID: 7, StartTime: start, EndTime: start.Add(time.Hour), Status: "pending"}}
		handler := NewBookingHandler(stub, nil)

		body := `{"meetingRoomId":1,"startTime":"2024-01-02T09:00:00Z","endTime":"2024-01-02T10:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/booking/add", strings.NewReader(body))
		req = req.WithContext(ContextWithPrincipal(req.Context(), application.Principal{UserID: 7}))
		recorder := httptest.NewRecorder()
		handler.Add(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if stub.lastParams.UserID != 7 {
			t.Fatalf("expected principal id to be used, got %d", stub.lastParams.UserID)
		}
	})

	t.Run("maps an occupied room to 409", func(t *testing.T) {
		t.Parallel()

		handler := NewBookingHandler(&bookingServiceStub{addErr: application.ErrRoomUnavailable}, nil)

		body := `{"meetingRoomId":1,"startTime":"2024-01-02T09:00:00Z","endTime":"2024-01-02T10:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/booking/add", strings.NewReader(body))
		req = req.WithContext(ContextWithPrincipal(req.Context(), application.Principal{UserID: 7}))
		recorder := httptest.NewRecorder()
		handler.Add(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}
	})

	t.Run("rejects unparseable timestamps", func(t *testing.T) {
		t.Parallel()

		handler := NewBookingHandler(&bookingServiceStub{}, nil)

		body := `{"meetingRoomId":1,"startTime":"tomorrow","endTime":"2024-01-02T10:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/booking/add", strings.NewReader(body))
		req = req.WithContext(ContextWithPrincipal(req.Context(), application.Principal{UserID: 7}))
		recorder := httptest.NewRecorder()
		handler.Add(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})
}

func TestBookingHandlerUrge(t *testing.T) {
	t.Parallel()

	t.Run("maps the throttle to 429", func(t *testing.T) {
		t.Parallel()

		handler := NewBookingHandler(&bookingServiceStub{urgeErr: application.ErrAlreadyUrged}, nil)

		req := httptest.NewRequest(http.MethodGet, "/booking/urge/5", nil)
		recorder := httptest.NewRecorder()
		handler.Urge(recorder, req, 5)

		if recorder.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", recorder.Code)
		}
	})
}

func TestBookingHandlerList(t *testing.T) {
	t.Parallel()

	stub := &bookingServiceStub{}
	handler := NewBookingHandler(stub, nil)

	url := "/booking/list?pageNo=2&pageSize=5&username=alice&meetingRoomName=board&bookingTimeRangeStart=2024-01-02T09:00:00Z"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if stub.lastFind.PageNo != 2 || stub.lastFind.PageSize != 5 {
		t.Fatalf("unexpected paging %#v", stub.lastFind)
	}
	if stub.lastFind.Username != "alice" || stub.lastFind.RoomName != "board" {
		t.Fatalf("unexpected filters %#v", stub.lastFind)
	}
	if stub.lastFind.RangeStart == nil || !stub.lastFind.RangeStart.Equal(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected range start %v", stub.lastFind.RangeStart)
	}
}

func TestRouterWiring(t *testing.T) {
	t.Parallel()

	auth := NewAuthHandler(&authServiceStub{}, nil)
	bookings := NewBookingHandler(&bookingServiceStub{}, nil)

	admitAll := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ContextWithPrincipal(r.Context(), application.Principal{UserID: 7, IsAdmin: true})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	router := NewRouter(RouterConfig{
		Auth:         auth,
		Bookings:     bookings,
		RequireLogin: admitAll,
	})

	t.Run("rejects wrong methods", func(t *testing.T) {
		t.Parallel()

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/user/login", nil))
		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", recorder.Code)
		}
	})

	t.Run("parses booking action ids from the path", func(t *testing.T) {
		t.Parallel()

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/booking/unbind/12", nil))
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		recorder = httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/booking/unbind/abc", nil))
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for a bad id, got %d", recorder.Code)
		}
	})
}
