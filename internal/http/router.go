package http

import (
	"net/http"
	"strconv"
	"strings"
)

// RouterConfig wires the handlers and the middleware that guards them.
// RequireLogin protects authenticated routes; RequireAdmin additionally
// guards administrator routes and must stack inside RequireLogin.
// Middleware wraps the whole router, outermost first.
type RouterConfig struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Rooms    *RoomHandler
	Bookings *BookingHandler

	RequireLogin func(http.Handler) http.Handler
	RequireAdmin func(http.Handler) http.Handler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	loggedIn := func(h http.HandlerFunc) http.Handler {
		if cfg.RequireLogin == nil {
			return h
		}
		return cfg.RequireLogin(h)
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		var handler http.Handler = h
		if cfg.RequireAdmin != nil {
			handler = cfg.RequireAdmin(handler)
		}
		if cfg.RequireLogin != nil {
			handler = cfg.RequireLogin(handler)
		}
		return handler
	}

	if cfg.Auth != nil {
		mux.Handle("/user/login", postOnly(cfg.Auth.Login))
		mux.Handle("/user/admin/login", postOnly(cfg.Auth.AdminLogin))
		mux.Handle("/user/refresh", postOnly(cfg.Auth.Refresh))
		mux.Handle("/user/admin/refresh", postOnly(cfg.Auth.AdminRefresh))
	}

	if cfg.Users != nil {
		mux.Handle("/user/register", postOnly(cfg.Users.Register))
		mux.Handle("/user/register-captcha", getOnly(cfg.Users.RegisterCaptcha))
		mux.Handle("/user/update_password/captcha", getOnly(cfg.Users.UpdatePasswordCaptcha))
		mux.Handle("/user/update/captcha", methodHandler(http.MethodGet, loggedIn(cfg.Users.UpdateCaptcha)))
		mux.Handle("/user/info", methodHandler(http.MethodGet, loggedIn(cfg.Users.Info)))
		mux.Handle("/user/update", methodHandler(http.MethodPost, loggedIn(cfg.Users.Update)))
		mux.Handle("/user/update_password", methodHandler(http.MethodPost, loggedIn(cfg.Users.UpdatePassword)))
		mux.Handle("/user/freeze", methodHandler(http.MethodGet, adminOnly(cfg.Users.Freeze)))
		mux.Handle("/user/list", methodHandler(http.MethodGet, adminOnly(cfg.Users.List)))
	}

	if cfg.Rooms != nil {
		mux.Handle("/meeting-room/list", methodHandler(http.MethodGet, loggedIn(cfg.Rooms.List)))
		mux.Handle("/meeting-room/create", methodHandler(http.MethodPost, adminOnly(cfg.Rooms.Create)))
		mux.Handle("/meeting-room/update", methodHandler(http.MethodPut, adminOnly(cfg.Rooms.Update)))
		mux.Handle("/meeting-room/", idRoutes(map[string]http.Handler{
			http.MethodGet: loggedIn(func(w http.ResponseWriter, r *http.Request) {
				id, ok := pathID(w, r, "/meeting-room/")
				if !ok {
					return
				}
				cfg.Rooms.Get(w, r, id)
			}),
			http.MethodDelete: adminOnly(func(w http.ResponseWriter, r *http.Request) {
				id, ok := pathID(w, r, "/meeting-room/")
				if !ok {
					return
				}
				cfg.Rooms.Delete(w, r, id)
			}),
		}))
	}

	if cfg.Bookings != nil {
		mux.Handle("/booking/list", methodHandler(http.MethodGet, loggedIn(cfg.Bookings.List)))
		mux.Handle("/booking/add", methodHandler(http.MethodPost, loggedIn(cfg.Bookings.Add)))
		mux.Handle("/booking/apply/", bookingAction(adminOnly, "/booking/apply/", cfg.Bookings.Apply))
		mux.Handle("/booking/reject/", bookingAction(adminOnly, "/booking/reject/", cfg.Bookings.Reject))
		mux.Handle("/booking/unbind/", bookingAction(loggedIn, "/booking/unbind/", cfg.Bookings.Unbind))
		mux.Handle("/booking/urge/", bookingAction(loggedIn, "/booking/urge/", cfg.Bookings.Urge))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func postOnly(h http.HandlerFunc) http.Handler {
	return methodHandler(http.MethodPost, h)
}

func getOnly(h http.HandlerFunc) http.Handler {
	return methodHandler(http.MethodGet, h)
}

func methodHandler(method string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			methodNotAllowed(w, method)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// idRoutes dispatches on method, where each method carries its own guard.
func idRoutes(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := routes[r.Method]
		if !ok {
			allowed := make([]string, 0, len(routes))
			for method := range routes {
				allowed = append(allowed, method)
			}
			methodNotAllowed(w, allowed...)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

func bookingAction(guard func(http.HandlerFunc) http.Handler, prefix string, action func(http.ResponseWriter, *http.Request, int64)) http.Handler {
	return methodHandler(http.MethodGet, guard(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, prefix)
		if !ok {
			return
		}
		action(w, r, id)
	}))
}

func pathID(w http.ResponseWriter, r *http.Request, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
