package application

import (
	"context"
	"fmt"
	"time"

	"github.com/driveport/service-rental/internal/domain"
	bookingDomain "github.com/driveport/service-rental/internal/domain/booking"
	"github.com/driveport/service-rental/internal/domain/fleet"
	"github.com/driveport/service-rental/internal/events"
	"github.com/driveport/service-rental/internal/kafka"
	"github.com/driveport/service-rental/internal/notification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const eventSource = "service-rental"

// CreateBookingRequest holds the data needed to create a new booking. Dates
// accept "2006-01-02" or RFC 3339.
type CreateBookingRequest struct {
	CarID      string `json:"car_id" binding:"required"`
	CustomerID string `json:"customer_id" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	PickupTime string `json:"pickup_time"`
}

// HandoverRequest holds the staff-recorded details of a vehicle dispatch.
type HandoverRequest struct {
	FuelStatus string `json:"fuel_status"`
	Notes      string `json:"notes"`
}

// ReturnRequest holds the staff-recorded details of a vehicle return.
type ReturnRequest struct {
	ReturnDate string `json:"return_date"`
	FuelStatus string `json:"fuel_status"`
	Notes      string `json:"notes"`
}

// ModifyBookingRequest holds the new window (and optionally a new car) for a
// booking modification.
type ModifyBookingRequest struct {
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	CarID      string `json:"car_id"`
	PickupTime string `json:"pickup_time"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                 uuid.UUID  `json:"id"`
	ConfirmationNumber string     `json:"confirmation_number"`
	CarID              uuid.UUID  `json:"car_id"`
	CustomerID         uuid.UUID  `json:"customer_id"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            time.Time  `json:"end_date"`
	PickupTime         string     `json:"pickup_time,omitempty"`
	Status             string     `json:"status"`
	TotalCents         int64      `json:"total_cents"`
	Currency           string     `json:"currency"`
	HandedOverAt       *time.Time `json:"handed_over_at,omitempty"`
	HandoverFuel       string     `json:"handover_fuel,omitempty"`
	HandoverNotes      string     `json:"handover_notes,omitempty"`
	ReturnedAt         *time.Time `json:"returned_at,omitempty"`
	ReturnFuel         string     `json:"return_fuel,omitempty"`
	ReturnNotes        string     `json:"return_notes,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	Version            int64      `json:"version"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// BookingService is the lifecycle engine orchestrating booking use cases.
// Create and Modify hold the per-car lock across the conflict check and the
// write; Handover, Return and Cancel rely on optimistic locking alone.
type BookingService struct {
	bookings  bookingDomain.BookingRepository
	cars      fleet.CarRepository
	customers fleet.CustomerRepository
	rates     bookingDomain.RateCalculator
	notifier  notification.Notifier
	producer  *kafka.Producer
	locks     *carLocks
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. producer may be nil when
// eventing is disabled (tests).
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	cars fleet.CarRepository,
	customers fleet.CustomerRepository,
	rates bookingDomain.RateCalculator,
	notifier notification.Notifier,
	producer *kafka.Producer,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		cars:      cars,
		customers: customers,
		rates:     rates,
		notifier:  notifier,
		producer:  producer,
		locks:     newCarLocks(),
		logger:    logger,
	}
}

// CreateBooking validates the requested window, checks availability under the
// car's lock and persists a CONFIRMED booking. The confirmation send is
// best-effort and never fails the booking.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	carID, err := parseID("car", req.CarID)
	if err != nil {
		return nil, err
	}
	customerID, err := parseID("customer", req.CustomerID)
	if err != nil {
		return nil, err
	}
	window, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(carID)
	defer unlock()

	car, err := s.cars.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.bookings.FindByCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	if blocking := bookingDomain.FirstConflict(candidates, window, uuid.Nil); blocking != nil {
		return nil, domain.NewBookingConflictError(
			fmt.Sprintf("car %s is already booked %s to %s (booking %s)",
				car.NumberPlate(),
				blocking.Window().Start.Format(time.DateOnly),
				blocking.Window().End.Format(time.DateOnly),
				blocking.ConfirmationNumber()),
			blocking.ID().String())
	}

	total, err := s.rates.Total(car.DailyRateCents(), window)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("rate error: %v", err))
	}

	bk, err := bookingDomain.NewBooking(carID, customerID, window, req.PickupTime, total, "INR")
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, customer, bk)
	s.publishCreated(ctx, customer, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// Handover transitions a CONFIRMED booking to ACTIVE, marking the vehicle as
// physically dispatched.
func (s *BookingService) Handover(ctx context.Context, bookingID uuid.UUID, req HandoverRequest) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Handover(bookingDomain.FuelLevel(req.FuelStatus), req.Notes); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingHandedOverEvent{
		BookingID:          bk.ID(),
		ConfirmationNumber: bk.ConfirmationNumber(),
		CarID:              bk.CarID(),
		HandedOverAt:       *bk.HandedOverAt(),
		FuelLevel:          string(bk.HandoverFuel()),
		OccurredAt:         time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingHandedOver, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// Return transitions an ACTIVE booking to COMPLETED, closing the rental.
func (s *BookingService) Return(ctx context.Context, bookingID uuid.UUID, req ReturnRequest) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var returnedAt time.Time
	if req.ReturnDate != "" {
		returnedAt, err = parseDate(req.ReturnDate)
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("unparsable return date: %s", req.ReturnDate))
		}
	}

	if err := bk.Return(returnedAt, bookingDomain.FuelLevel(req.FuelStatus), req.Notes); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingReturnedEvent{
		BookingID:          bk.ID(),
		ConfirmationNumber: bk.ConfirmationNumber(),
		CarID:              bk.CarID(),
		ReturnedAt:         *bk.ReturnedAt(),
		FuelLevel:          string(bk.ReturnFuel()),
		TotalCents:         bk.TotalCents(),
		Currency:           bk.Currency(),
		OccurredAt:         time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingReturned, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// Cancel transitions a booking to CANCELLED, freeing its window.
func (s *BookingService) Cancel(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Cancel(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingCancelledEvent{
		BookingID:          bk.ID(),
		ConfirmationNumber: bk.ConfirmationNumber(),
		CarID:              bk.CarID(),
		CancelledAt:        *bk.CancelledAt(),
		OccurredAt:         time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCancelled, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// Modify re-validates availability for the new window (excluding the booking
// itself) under the target car's lock, then updates the booking in place.
func (s *BookingService) Modify(ctx context.Context, bookingID uuid.UUID, req ModifyBookingRequest) (*BookingDTO, error) {
	window, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	targetCarID := bk.CarID()
	if req.CarID != "" {
		targetCarID, err = parseID("car", req.CarID)
		if err != nil {
			return nil, err
		}
	}

	unlock := s.locks.Lock(targetCarID)
	defer unlock()

	car, err := s.cars.FindByID(ctx, targetCarID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.bookings.FindByCar(ctx, targetCarID)
	if err != nil {
		return nil, err
	}
	if blocking := bookingDomain.FirstConflict(candidates, window, bk.ID()); blocking != nil {
		return nil, domain.NewBookingConflictError(
			fmt.Sprintf("car %s is already booked %s to %s (booking %s)",
				car.NumberPlate(),
				blocking.Window().Start.Format(time.DateOnly),
				blocking.Window().End.Format(time.DateOnly),
				blocking.ConfirmationNumber()),
			blocking.ID().String())
	}

	total, err := s.rates.Total(car.DailyRateCents(), window)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("rate error: %v", err))
	}

	pickupTime := bk.PickupTime()
	if req.PickupTime != "" {
		pickupTime = req.PickupTime
	}

	if err := bk.Reschedule(window, targetCarID, pickupTime, total); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingModifiedEvent{
		BookingID:          bk.ID(),
		ConfirmationNumber: bk.ConfirmationNumber(),
		CarID:              bk.CarID(),
		StartDate:          bk.Window().Start,
		EndDate:            bk.Window().End,
		TotalCents:         bk.TotalCents(),
		OccurredAt:         time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingModified, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByConfirmationNumber retrieves a booking by confirmation number.
func (s *BookingService) GetBookingByConfirmationNumber(ctx context.Context, number string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByConfirmationNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookingsByCustomer retrieves a customer's bookings, newest first.
func (s *BookingService) ListBookingsByCustomer(ctx context.Context, customerID uuid.UUID) ([]BookingDTO, error) {
	bookings, err := s.bookings.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// ListBookingsByHub retrieves all bookings for cars owned by a hub.
func (s *BookingService) ListBookingsByHub(ctx context.Context, hubID uuid.UUID) ([]BookingDTO, error) {
	bookings, err := s.bookings.FindByHubID(ctx, hubID)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bookings), total, nil
}

// --- Helpers ---

// sendConfirmation dispatches the booking confirmation. Failures are wrapped
// as NotificationError, logged and swallowed; they never fail the booking.
func (s *BookingService) sendConfirmation(ctx context.Context, customer *fleet.Customer, bk *bookingDomain.Booking) {
	summary := notification.BookingSummary{
		ConfirmationNumber: bk.ConfirmationNumber(),
		CustomerName:       customer.DisplayName(),
		StartDate:          bk.Window().Start,
		EndDate:            bk.Window().End,
		PickupTime:         bk.PickupTime(),
		TotalCents:         bk.TotalCents(),
		Currency:           bk.Currency(),
	}
	if err := s.notifier.SendBookingConfirmation(ctx, customer.Email, summary); err != nil {
		s.logger.Error("booking confirmation failed",
			zap.String("booking_id", bk.ID().String()),
			zap.Error(domain.NewNotificationError(err)),
		)
	}
}

func (s *BookingService) publishCreated(ctx context.Context, customer *fleet.Customer, bk *bookingDomain.Booking) {
	evt := events.BookingCreatedEvent{
		BookingID:          bk.ID(),
		ConfirmationNumber: bk.ConfirmationNumber(),
		CarID:              bk.CarID(),
		CustomerID:         bk.CustomerID(),
		CustomerEmail:      customer.Email,
		CustomerName:       customer.DisplayName(),
		StartDate:          bk.Window().Start,
		EndDate:            bk.Window().End,
		PickupTime:         bk.PickupTime(),
		TotalCents:         bk.TotalCents(),
		Currency:           bk.Currency(),
		OccurredAt:         time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCreated, bk.ID().String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	if s.producer == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicRentalEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                 bk.ID(),
		ConfirmationNumber: bk.ConfirmationNumber(),
		CarID:              bk.CarID(),
		CustomerID:         bk.CustomerID(),
		StartDate:          bk.Window().Start,
		EndDate:            bk.Window().End,
		PickupTime:         bk.PickupTime(),
		Status:             string(bk.Status()),
		TotalCents:         bk.TotalCents(),
		Currency:           bk.Currency(),
		HandedOverAt:       bk.HandedOverAt(),
		HandoverFuel:       string(bk.HandoverFuel()),
		HandoverNotes:      bk.HandoverNotes(),
		ReturnedAt:         bk.ReturnedAt(),
		ReturnFuel:         string(bk.ReturnFuel()),
		ReturnNotes:        bk.ReturnNotes(),
		CancelledAt:        bk.CancelledAt(),
		Version:            bk.Version(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func parseID(entity, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(fmt.Sprintf("invalid %s ID: %s", entity, raw))
	}
	return id, nil
}

// parseDate accepts "2006-01-02" or RFC 3339.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseWindow(startRaw, endRaw string) (bookingDomain.Window, error) {
	start, err := parseDate(startRaw)
	if err != nil {
		return bookingDomain.Window{}, domain.NewValidationError(fmt.Sprintf("unparsable start date: %s", startRaw))
	}
	end, err := parseDate(endRaw)
	if err != nil {
		return bookingDomain.Window{}, domain.NewValidationError(fmt.Sprintf("unparsable end date: %s", endRaw))
	}
	return bookingDomain.NewWindow(start, end)
}
