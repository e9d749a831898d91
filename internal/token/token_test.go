package token_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/example/roombook/internal/testfixtures"
	"github.com/example/roombook/internal/token"
)

func newTestManager(t *testing.T, clock *testfixtures.Clock) *token.Manager {
	t.Helper()
	mgr, err := token.NewManager([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour, clock.NowFunc())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return mgr
}

func TestManagerAccessToken(t *testing.T) {
	t.Parallel()

	t.Run("round-trips full claims", func(t *testing.T) {
		t.Parallel()

		clock := testfixtures.NewClock(time.Time{})
		mgr := newTestManager(t, clock)

		raw, err := mgr.IssueAccessToken(42, "alice", true, []string{"manager"}, []string{"booking.approve", "user.freeze"})
		if err != nil {
			t.Fatalf("IssueAccessToken failed: %v", err)
		}

		claims, err := mgr.VerifyAccessToken(raw)
		if err != nil {
			t.Fatalf("VerifyAccessToken failed: %v", err)
		}
		if claims.UserID != 42 || claims.Username != "alice" || !claims.IsAdmin {
			t.Fatalf("unexpected identity claims: %+v", claims)
		}
		if !reflect.DeepEqual(claims.Roles, []string{"manager"}) {
			t.Fatalf("roles = %v", claims.Roles)
		}
		if !reflect.DeepEqual(claims.Permissions, []string{"booking.approve", "user.freeze"}) {
			t.Fatalf("permissions = %v", claims.Permissions)
		}
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		t.Parallel()

		clock := testfixtures.NewClock(time.Time{})
		mgr := newTestManager(t, clock)

		raw, err := mgr.IssueAccessToken(1, "bob", false, nil, nil)
		if err != nil {
			t.Fatalf("IssueAccessToken failed: %v", err)
		}

		clock.Advance(31 * time.Minute)
		if _, err := mgr.VerifyAccessToken(raw); !errors.Is(err, token.ErrTokenInvalid) {
			t.Fatalf("expected token.ErrTokenInvalid after expiry, got %v", err)
		}
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		t.Parallel()

		clock := testfixtures.NewClock(time.Time{})
		mgr := newTestManager(t, clock)
		other, err := token.NewManager([]byte("other-secret"), 0, 0, clock.NowFunc())
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}

		raw, err := other.IssueAccessToken(1, "mallory", false, nil, nil)
		if err != nil {
			t.Fatalf("IssueAccessToken failed: %v", err)
		}
		if _, err := mgr.VerifyAccessToken(raw); !errors.Is(err, token.ErrTokenInvalid) {
			t.Fatalf("expected token.ErrTokenInvalid for foreign signature, got %v", err)
		}
	})

	t.Run("rejects empty and mangled tokens", func(t *testing.T) {
		t.Parallel()

		mgr := newTestManager(t, testfixtures.NewClock(time.Time{}))
		if _, err := mgr.VerifyAccessToken(""); !errors.Is(err, token.ErrTokenInvalid) {
			t.Fatalf("expected token.ErrTokenInvalid for empty token, got %v", err)
		}
		if _, err := mgr.VerifyAccessToken("not.a.jwt"); !errors.Is(err, token.ErrTokenInvalid) {
			t.Fatalf("expected token.ErrTokenInvalid for garbage token, got %v", err)
		}
	})
}

func TestManagerRefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("carries only the user id", func(t *testing.T) {
		t.Parallel()

		clock := testfixtures.NewClock(time.Time{})
		mgr := newTestManager(t, clock)

		raw, err := mgr.IssueRefreshToken(7)
		if err != nil {
			t.Fatalf("IssueRefreshToken failed: %v", err)
		}
		claims, err := mgr.VerifyRefreshToken(raw)
		if err != nil {
			t.Fatalf("VerifyRefreshToken failed: %v", err)
		}
		if claims.UserID != 7 {
			t.Fatalf("user id = %d, want 7", claims.UserID)
		}
	})

	t.Run("rotates to distinct bytes within the same instant", func(t *testing.T) {
		t.Parallel()

		clock := testfixtures.NewClock(time.Time{})
		mgr := newTestManager(t, clock)

		first, err := mgr.IssueRefreshToken(7)
		if err != nil {
			t.Fatalf("IssueRefreshToken failed: %v", err)
		}
		second, err := mgr.IssueRefreshToken(7)
		if err != nil {
			t.Fatalf("IssueRefreshToken failed: %v", err)
		}
		if first == second {
			t.Fatal("expected each issued refresh token to differ byte-for-byte")
		}
	})

	t.Run("survives access TTL but not refresh TTL", func(t *testing.T) {
		t.Parallel()

		clock := testfixtures.NewClock(time.Time{})
		mgr := newTestManager(t, clock)

		raw, err := mgr.IssueRefreshToken(7)
		if err != nil {
			t.Fatalf("IssueRefreshToken failed: %v", err)
		}

		clock.Advance(24 * time.Hour)
		if _, err := mgr.VerifyRefreshToken(raw); err != nil {
			t.Fatalf("refresh token should outlive access TTL: %v", err)
		}

		clock.Advance(7 * 24 * time.Hour)
		if _, err := mgr.VerifyRefreshToken(raw); !errors.Is(err, token.ErrTokenInvalid) {
			t.Fatalf("expected token.ErrTokenInvalid after refresh TTL, got %v", err)
		}
	})
}

func TestNewManagerRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := token.NewManager(nil, 0, 0, nil); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}
