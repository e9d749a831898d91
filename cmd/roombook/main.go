package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/roombook/internal/application"
	"github.com/example/roombook/internal/config"
	httptransport "github.com/example/roombook/internal/http"
	"github.com/example/roombook/internal/kvstore"
	"github.com/example/roombook/internal/mail"
	"github.com/example/roombook/internal/persistence/sqlite"
	"github.com/example/roombook/internal/token"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	ephemeral, err := newEphemeralStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to the ephemeral store", "error", err)
		os.Exit(1)
	}

	mailer, err := newMailer(cfg, logger)
	if err != nil {
		logger.Error("failed to configure mail delivery", "error", err)
		os.Exit(1)
	}

	tokens, err := token.NewManager([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL, time.Now)
	if err != nil {
		logger.Error("failed to configure token signing", "error", err)
		os.Exit(1)
	}

	authService := application.NewAuthService(store.Users, tokens, application.VerifyPassword, logger)
	userService := application.NewUserService(store.Users, ephemeral, mailer, nil, nil, logger)
	roomService := application.NewRoomService(store.Rooms, logger)
	bookingService := application.NewBookingService(store.Bookings, store.Rooms, store.Users, ephemeral, mailer, time.Now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, logger),
		Users:    httptransport.NewUserHandler(userService, logger),
		Rooms:    httptransport.NewRoomHandler(roomService, logger),
		Bookings: httptransport.NewBookingHandler(bookingService, logger),

		RequireLogin: httptransport.RequireLogin(authService, logger),
		RequireAdmin: httptransport.RequireAdmin(logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// newEphemeralStore connects to Redis when configured and otherwise falls
// back to the in-process store. Single-node deployments work without Redis;
// the in-process store simply does not survive restarts.
func newEphemeralStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (kvstore.Store, error) {
	if cfg.RedisAddr == "" {
		logger.Info("using in-process ephemeral store")
		return kvstore.NewMemoryStore(time.Now), nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := kvstore.NewRedisStore(dialCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to redis", "addr", cfg.RedisAddr)
	return store, nil
}

// newMailer builds the SMTP sender when configured. Without SMTP the
// captcha and urge mails are written to the log instead, which keeps local
// development working end to end.
func newMailer(cfg config.Config, logger *slog.Logger) (application.Mailer, error) {
	if cfg.SMTPAddr == "" {
		logger.Warn("SMTP is not configured, outbound mail will only be logged")
		return logMailer{logger: logger}, nil
	}
	return mail.NewSender(mail.Config{
		Addr:     cfg.SMTPAddr,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	}, logger)
}

type logMailer struct {
	logger *slog.Logger
}

func (m logMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Info("mail suppressed", "to", to, "subject", subject, "body", htmlBody)
	return nil
}
