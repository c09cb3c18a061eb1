package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/driveport/service-rental/internal/domain"
	"github.com/google/uuid"
)

const confirmationNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// FuelLevel is the staff-recorded fuel reading at handover or return.
type FuelLevel string

const (
	FuelQuarter       FuelLevel = "1/4"
	FuelHalf          FuelLevel = "1/2"
	FuelThreeQuarters FuelLevel = "3/4"
	FuelFull          FuelLevel = "Full"
)

// IsValid returns true if the fuel level is a recognized reading.
func (f FuelLevel) IsValid() bool {
	switch f {
	case FuelQuarter, FuelHalf, FuelThreeQuarters, FuelFull:
		return true
	}
	return false
}

// Booking is the aggregate root for the rental booking domain. Exactly one
// car and one customer per booking; the window's start strictly precedes its
// end; status moves only along the lifecycle state machine.
type Booking struct {
	id                 uuid.UUID
	confirmationNumber string
	carID              uuid.UUID
	customerID         uuid.UUID
	window             Window
	pickupTime         string
	status             BookingStatus

	totalCents int64
	currency   string

	handedOverAt  *time.Time
	handoverFuel  FuelLevel
	handoverNotes string
	returnedAt    *time.Time
	returnFuel    FuelLevel
	returnNotes   string
	cancelledAt   *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateConfirmationNumber creates a confirmation number in the format "CR-XXXXXX".
func generateConfirmationNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(confirmationNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate confirmation number: %w", err)
		}
		result[i] = confirmationNumberChars[n.Int64()]
	}
	return "CR-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=CONFIRMED.
// Conflict checking against other bookings is the lifecycle engine's job;
// this constructor only validates the booking's own shape.
func NewBooking(
	carID uuid.UUID,
	customerID uuid.UUID,
	window Window,
	pickupTime string,
	totalCents int64,
	currency string,
) (*Booking, error) {
	if carID == uuid.Nil {
		return nil, domain.NewValidationError("car ID is required")
	}
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if totalCents < 0 {
		return nil, domain.NewValidationError("total amount cannot be negative")
	}

	confirmationNumber, err := generateConfirmationNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:                 uuid.New(),
		confirmationNumber: confirmationNumber,
		carID:              carID,
		customerID:         customerID,
		window:             window,
		pickupTime:         pickupTime,
		status:             StatusConfirmed,
		totalCents:         totalCents,
		currency:           currency,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	confirmationNumber string,
	carID uuid.UUID,
	customerID uuid.UUID,
	window Window,
	pickupTime string,
	status BookingStatus,
	totalCents int64,
	currency string,
	handedOverAt *time.Time,
	handoverFuel FuelLevel,
	handoverNotes string,
	returnedAt *time.Time,
	returnFuel FuelLevel,
	returnNotes string,
	cancelledAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		confirmationNumber: confirmationNumber,
		carID:              carID,
		customerID:         customerID,
		window:             window,
		pickupTime:         pickupTime,
		status:             status,
		totalCents:         totalCents,
		currency:           currency,
		handedOverAt:       handedOverAt,
		handoverFuel:       handoverFuel,
		handoverNotes:      handoverNotes,
		returnedAt:         returnedAt,
		returnFuel:         returnFuel,
		returnNotes:        returnNotes,
		cancelledAt:        cancelledAt,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ConfirmationNumber returns the human-readable confirmation number.
func (b *Booking) ConfirmationNumber() string { return b.confirmationNumber }

// CarID returns the booked car's identifier.
func (b *Booking) CarID() uuid.UUID { return b.carID }

// CustomerID returns the booking customer's identifier.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// Window returns the requested rental interval.
func (b *Booking) Window() Window { return b.window }

// PickupTime returns the requested pickup time of day (e.g. "10:00").
func (b *Booking) PickupTime() string { return b.pickupTime }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// TotalCents returns the monetary total in the smallest currency unit.
func (b *Booking) TotalCents() int64 { return b.totalCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// HandedOverAt returns the time the vehicle was dispatched, or nil.
func (b *Booking) HandedOverAt() *time.Time { return b.handedOverAt }

// HandoverFuel returns the fuel reading recorded at handover.
func (b *Booking) HandoverFuel() FuelLevel { return b.handoverFuel }

// HandoverNotes returns the staff notes recorded at handover.
func (b *Booking) HandoverNotes() string { return b.handoverNotes }

// ReturnedAt returns the time the vehicle was received back, or nil.
func (b *Booking) ReturnedAt() *time.Time { return b.returnedAt }

// ReturnFuel returns the fuel reading recorded at return.
func (b *Booking) ReturnFuel() FuelLevel { return b.returnFuel }

// ReturnNotes returns the staff notes recorded at return.
func (b *Booking) ReturnNotes() string { return b.returnNotes }

// CancelledAt returns the time the booking was cancelled, or nil.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Handover transitions the booking from CONFIRMED to ACTIVE, marking the
// vehicle as physically dispatched to the customer.
func (b *Booking) Handover(fuel FuelLevel, notes string) error {
	if !b.status.CanTransitionTo(StatusActive) {
		return domain.NewInvalidStateError(string(b.status), string(StatusActive))
	}
	if fuel != "" && !fuel.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid fuel level: %s", fuel))
	}
	now := time.Now().UTC()
	b.status = StatusActive
	b.handedOverAt = &now
	b.handoverFuel = fuel
	b.handoverNotes = notes
	b.updatedAt = now
	return nil
}

// Return transitions the booking from ACTIVE to COMPLETED, closing the rental.
// returnedAt defaults to now when zero.
func (b *Booking) Return(returnedAt time.Time, fuel FuelLevel, notes string) error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	if fuel != "" && !fuel.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid fuel level: %s", fuel))
	}
	now := time.Now().UTC()
	if returnedAt.IsZero() {
		returnedAt = now
	}
	b.status = StatusCompleted
	b.returnedAt = &returnedAt
	b.returnFuel = fuel
	b.returnNotes = notes
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to CANCELLED, freeing its window for new
// bookings. Both CONFIRMED and ACTIVE bookings may be cancelled; terminal
// bookings may not.
func (b *Booking) Cancel() error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// Reschedule updates the booking's window, car, pickup time and total in
// place. Only CONFIRMED bookings may be modified; the lifecycle engine
// re-validates availability before calling this.
func (b *Booking) Reschedule(window Window, carID uuid.UUID, pickupTime string, totalCents int64) error {
	if b.status != StatusConfirmed {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	if carID == uuid.Nil {
		return domain.NewValidationError("car ID is required")
	}
	b.window = window
	b.carID = carID
	b.pickupTime = pickupTime
	b.totalCents = totalCents
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
