package interval

import "time"

// Span is a half-open time interval [Start, End).
type Span struct {
	Start time.Time
	End   time.Time
}

// NewSpan constructs a span without validating ordering. Use Valid to check
// that Start precedes End.
func NewSpan(start, end time.Time) Span {
	return Span{Start: start, End: end}
}

// Valid reports whether the span covers a non-empty, forward-ordered range.
func (s Span) Valid() bool {
	return !s.Start.IsZero() && !s.End.IsZero() && s.Start.Before(s.End)
}

// Overlaps reports whether two half-open intervals intersect.
//
// [a, b) and [c, d) overlap iff a < d && c < b, so spans that merely share a
// boundary instant (back-to-back reservations) do not conflict.
func (s Span) Overlaps(other Span) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Contains reports whether the instant t falls inside the span.
func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Occupancy describes an existing reservation competing for a room.
type Occupancy struct {
	BookingID int64
	Span      Span
}

// FirstConflict returns the first occupancy whose span intersects the
// candidate, preserving the input order of existing occupancies. The second
// return value reports whether a conflict was found.
func FirstConflict(existing []Occupancy, candidate Span) (Occupancy, bool) {
	for _, occ := range existing {
		if occ.Span.Overlaps(candidate) {
			return occ, true
		}
	}
	return Occupancy{}, false
}

// Conflicts returns every occupancy intersecting the candidate span.
func Conflicts(existing []Occupancy, candidate Span) []Occupancy {
	var found []Occupancy
	for _, occ := range existing {
		if occ.Span.Overlaps(candidate) {
			found = append(found, occ)
		}
	}
	return found
}
