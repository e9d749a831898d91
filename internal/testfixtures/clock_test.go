package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("zero-value start = %v, want %v", clock.Now(), ReferenceTime())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	if updated := clock.Advance(45 * time.Minute); !updated.Equal(start.Add(45 * time.Minute)) {
		t.Fatalf("Advance returned %v", updated)
	}
	if !clock.Now().Equal(start.Add(45 * time.Minute)) {
		t.Fatalf("Now after Advance = %v", clock.Now())
	}

	jumped := start.Add(3 * time.Hour)
	clock.Set(jumped)
	if !clock.Current().Equal(jumped) {
		t.Fatalf("Current after Set = %v, want %v", clock.Current(), jumped)
	}
}

func TestClockNowFunc(t *testing.T) {
	clock := NewClock(time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC))
	nowFn := clock.NowFunc()

	before := nowFn()
	clock.Advance(time.Minute)
	after := nowFn()
	if !after.Equal(before.Add(time.Minute)) {
		t.Fatalf("NowFunc did not track the clock: %v then %v", before, after)
	}

	var nilClock *Clock
	if nilClock.NowFunc()().IsZero() {
		t.Fatal("nil clock must fall back to wall time")
	}
}
