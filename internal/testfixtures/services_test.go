package testfixtures

import (
	"context"
	"testing"
	"time"
)

func TestServiceFactoryDefaults(t *testing.T) {
	t.Parallel()

	factory := NewServiceFactory()
	if factory.Clock == nil {
		t.Fatal("expected a default clock")
	}
	if got := factory.Clock.Now(); !got.Equal(ReferenceTime()) {
		t.Fatalf("default clock = %v, want %v", got, ReferenceTime())
	}
	if factory.Codes == nil {
		t.Fatal("expected a default code generator")
	}
}

func TestServiceFactoryKVStoreFollowsClock(t *testing.T) {
	t.Parallel()

	factory := NewServiceFactory()
	store := factory.NewKVStore()
	ctx := context.Background()

	if err := store.Set(ctx, "code", "123456", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := store.Get(ctx, "code"); err != nil || !ok {
		t.Fatalf("Get before expiry = ok %v, err %v", ok, err)
	}

	factory.Clock.Advance(2 * time.Minute)
	if _, ok, err := store.Get(ctx, "code"); err != nil || ok {
		t.Fatalf("Get after expiry = ok %v, err %v", ok, err)
	}
}

func TestServiceFactoryTokenManagerUsesClock(t *testing.T) {
	t.Parallel()

	factory := NewServiceFactory()
	manager, err := factory.NewTokenManager("test-secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	access, err := manager.IssueAccessToken(1, "alice", false, nil, nil)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := manager.VerifyAccessToken(access); err != nil {
		t.Fatalf("VerifyAccessToken before expiry: %v", err)
	}

	factory.Clock.Advance(2 * time.Minute)
	if _, err := manager.VerifyAccessToken(access); err == nil {
		t.Fatal("expected verification to fail after expiry")
	}
}
