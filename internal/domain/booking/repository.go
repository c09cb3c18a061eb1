package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByConfirmationNumber retrieves a booking by its confirmation number.
	FindByConfirmationNumber(ctx context.Context, number string) (*Booking, error)

	// FindByCustomerID retrieves all bookings placed by a customer, newest first.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*Booking, error)

	// FindByHubID retrieves all bookings whose car belongs to the given hub,
	// newest first.
	FindByHubID(ctx context.Context, hubID uuid.UUID) ([]*Booking, error)

	// FindByCar retrieves every CONFIRMED or ACTIVE booking for a car. The
	// result is the candidate set for conflict detection and must come from a
	// single consistent read.
	FindByCar(ctx context.Context, carID uuid.UUID) ([]*Booking, error)

	// ListActive retrieves all ACTIVE bookings across the fleet (point-in-time
	// fleet snapshot input).
	ListActive(ctx context.Context) ([]*Booking, error)

	// ListOverlapping retrieves all CONFIRMED or ACTIVE bookings whose interval
	// overlaps the window, across the fleet (window-mode snapshot input).
	ListOverlapping(ctx context.Context, window Window) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
