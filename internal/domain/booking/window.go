package booking

import (
	"fmt"
	"time"

	"github.com/driveport/service-rental/internal/domain"
)

// Window is the ephemeral (start, end) pair used both as a booking's requested
// interval and as a query parameter for availability lookups. It is never
// persisted on its own.
type Window struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// NewWindow validates and builds a rental window. Start must strictly precede end.
func NewWindow(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, domain.NewValidationError("start and end dates are required")
	}
	if !start.Before(end) {
		return Window{}, domain.NewValidationError(
			fmt.Sprintf("start date %s must precede end date %s",
				start.Format(time.DateOnly), end.Format(time.DateOnly)))
	}
	return Window{Start: start, End: end}, nil
}

// Overlaps reports whether the two windows intersect. The test is inclusive:
// touching boundaries count as overlapping, because a car is unavailable for
// the whole of each booked day.
func (w Window) Overlaps(other Window) bool {
	return !w.Start.After(other.End) && !w.End.Before(other.Start)
}

// Days returns the inclusive number of rental days covered by the window.
// A same-week Mon..Wed window is 3 chargeable days.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}
