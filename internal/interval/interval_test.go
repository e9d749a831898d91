package interval

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2025, time.March, 3, hour, min, 0, 0, time.UTC)
}

func TestSpanOverlaps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a    Span
		b    Span
		want bool
	}{
		{
			name: "disjoint intervals do not overlap",
			a:    NewSpan(at(9, 0), at(10, 0)),
			b:    NewSpan(at(11, 0), at(12, 0)),
			want: false,
		},
		{
			name: "back-to-back intervals do not overlap",
			a:    NewSpan(at(10, 0), at(11, 0)),
			b:    NewSpan(at(11, 0), at(12, 0)),
			want: false,
		},
		{
			name: "contained interval overlaps",
			a:    NewSpan(at(9, 0), at(10, 0)),
			b:    NewSpan(at(9, 30), at(9, 45)),
			want: true,
		},
		{
			name: "partial overlap at the tail",
			a:    NewSpan(at(9, 0), at(10, 0)),
			b:    NewSpan(at(9, 30), at(10, 30)),
			want: true,
		},
		{
			name: "identical intervals overlap",
			a:    NewSpan(at(9, 0), at(10, 0)),
			b:    NewSpan(at(9, 0), at(10, 0)),
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("Overlaps is not symmetric: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSpanValid(t *testing.T) {
	t.Parallel()

	if !NewSpan(at(9, 0), at(10, 0)).Valid() {
		t.Fatalf("expected forward span to be valid")
	}
	if NewSpan(at(10, 0), at(9, 0)).Valid() {
		t.Fatalf("expected reversed span to be invalid")
	}
	if NewSpan(at(9, 0), at(9, 0)).Valid() {
		t.Fatalf("expected empty span to be invalid")
	}
	if NewSpan(time.Time{}, at(9, 0)).Valid() {
		t.Fatalf("expected zero start to be invalid")
	}
}

func TestFirstConflict(t *testing.T) {
	t.Parallel()

	existing := []Occupancy{
		{BookingID: 1, Span: NewSpan(at(8, 0), at(9, 0))},
		{BookingID: 2, Span: NewSpan(at(9, 30), at(9, 45))},
		{BookingID: 3, Span: NewSpan(at(9, 40), at(10, 30))},
	}

	occ, found := FirstConflict(existing, NewSpan(at(9, 0), at(10, 0)))
	if !found {
		t.Fatalf("expected a conflict for a contained booking")
	}
	if occ.BookingID != 2 {
		t.Fatalf("expected first conflict in input order, got booking %d", occ.BookingID)
	}

	if _, found := FirstConflict(existing, NewSpan(at(10, 30), at(11, 0))); found {
		t.Fatalf("expected no conflict for a back-to-back booking")
	}

	all := Conflicts(existing, NewSpan(at(9, 0), at(10, 0)))
	if len(all) != 2 {
		t.Fatalf("expected two conflicts, got %d", len(all))
	}
}
