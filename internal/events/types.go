package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicRentalEvents carries every booking lifecycle event.
const TopicRentalEvents = "rental.events"

// Event type identifiers.
const (
	BookingCreated    = "rental.booking.created"
	BookingHandedOver = "rental.booking.handed_over"
	BookingReturned   = "rental.booking.returned"
	BookingCancelled  = "rental.booking.cancelled"
	BookingModified   = "rental.booking.modified"
)

// BookingCreatedEvent is published when a booking reaches CONFIRMED.
type BookingCreatedEvent struct {
	BookingID          uuid.UUID `json:"booking_id"`
	ConfirmationNumber string    `json:"confirmation_number"`
	CarID              uuid.UUID `json:"car_id"`
	CustomerID         uuid.UUID `json:"customer_id"`
	CustomerEmail      string    `json:"customer_email"`
	CustomerName       string    `json:"customer_name"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	PickupTime         string    `json:"pickup_time"`
	TotalCents         int64     `json:"total_cents"`
	Currency           string    `json:"currency"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// BookingHandedOverEvent is published when the vehicle is dispatched.
type BookingHandedOverEvent struct {
	BookingID          uuid.UUID `json:"booking_id"`
	ConfirmationNumber string    `json:"confirmation_number"`
	CarID              uuid.UUID `json:"car_id"`
	HandedOverAt       time.Time `json:"handed_over_at"`
	FuelLevel          string    `json:"fuel_level"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// BookingReturnedEvent is published when the rental is closed.
type BookingReturnedEvent struct {
	BookingID          uuid.UUID `json:"booking_id"`
	ConfirmationNumber string    `json:"confirmation_number"`
	CarID              uuid.UUID `json:"car_id"`
	ReturnedAt         time.Time `json:"returned_at"`
	FuelLevel          string    `json:"fuel_level"`
	TotalCents         int64     `json:"total_cents"`
	Currency           string    `json:"currency"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID          uuid.UUID `json:"booking_id"`
	ConfirmationNumber string    `json:"confirmation_number"`
	CarID              uuid.UUID `json:"car_id"`
	CancelledAt        time.Time `json:"cancelled_at"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// BookingModifiedEvent is published when a booking's window or car changes.
type BookingModifiedEvent struct {
	BookingID          uuid.UUID `json:"booking_id"`
	ConfirmationNumber string    `json:"confirmation_number"`
	CarID              uuid.UUID `json:"car_id"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	TotalCents         int64     `json:"total_cents"`
	OccurredAt         time.Time `json:"occurred_at"`
}
