package booking

import "github.com/google/uuid"

// FirstConflict returns the first candidate booking that blocks the requested
// window for a car, or nil when the window is free. A candidate conflicts when
// it occupies the calendar (CONFIRMED or ACTIVE) and its interval passes the
// inclusive overlap test. excludeID skips a booking being modified so it is
// not compared against itself; pass uuid.Nil to compare all candidates.
//
// Pure function over the candidate set: no side effects, safe to call
// concurrently. Consistency of the candidate snapshot is the caller's
// responsibility.
func FirstConflict(candidates []*Booking, window Window, excludeID uuid.UUID) *Booking {
	for _, c := range candidates {
		if excludeID != uuid.Nil && c.ID() == excludeID {
			continue
		}
		if !c.Status().Occupies() {
			continue
		}
		if c.Window().Overlaps(window) {
			return c
		}
	}
	return nil
}
