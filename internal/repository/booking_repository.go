package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/driveport/service-rental/internal/domain"
	bookingDomain "github.com/driveport/service-rental/internal/domain/booking"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL error codes surfaced by the bookings exclusion constraint.
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ConfirmationNumber string     `gorm:"uniqueIndex;not null;size:20"`
	CarID              uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	StartDate          time.Time  `gorm:"not null"`
	EndDate            time.Time  `gorm:"not null"`
	PickupTime         string     `gorm:"size:10"`
	Status             string     `gorm:"not null;size:20;index"`
	TotalCents         int64      `gorm:"not null"`
	Currency           string     `gorm:"not null;size:3;default:'INR'"`
	HandedOverAt       *time.Time `gorm:""`
	HandoverFuel       string     `gorm:"size:10"`
	HandoverNotes      string     `gorm:"size:500"`
	ReturnedAt         *time.Time `gorm:""`
	ReturnFuel         string     `gorm:"size:10"`
	ReturnNotes        string     `gorm:"size:500"`
	CancelledAt        *time.Time `gorm:""`
	Version            int64      `gorm:"not null;default:1"`
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, domain.NewTransientStoreError("find booking by id", err)
	}
	return toDomainBooking(&model)
}

// FindByConfirmationNumber retrieves a booking by its confirmation number.
func (r *GormBookingRepository) FindByConfirmationNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := conn(ctx, r.db).Where("confirmation_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, domain.NewTransientStoreError("find booking by confirmation number", err)
	}
	return toDomainBooking(&model)
}

// FindByCustomerID retrieves all bookings placed by a customer, newest first.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := conn(ctx, r.db).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, domain.NewTransientStoreError("find bookings by customer", err)
	}
	return toDomainBookings(models)
}

// FindByHubID retrieves all bookings whose car belongs to the given hub.
func (r *GormBookingRepository) FindByHubID(ctx context.Context, hubID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := conn(ctx, r.db).
		Select("bookings.*").
		Joins("JOIN cars ON cars.id = bookings.car_id").
		Where("cars.hub_id = ?", hubID).
		Order("bookings.created_at DESC").
		Find(&models).Error; err != nil {
		return nil, domain.NewTransientStoreError("find bookings by hub", err)
	}
	return toDomainBookings(models)
}

// FindByCar retrieves every CONFIRMED or ACTIVE booking for a car in a single read.
func (r *GormBookingRepository) FindByCar(ctx context.Context, carID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := conn(ctx, r.db).
		Where("car_id = ? AND status IN ?", carID,
			[]string{string(bookingDomain.StatusConfirmed), string(bookingDomain.StatusActive)}).
		Order("start_date ASC").
		Find(&models).Error; err != nil {
		return nil, domain.NewTransientStoreError("find bookings by car", err)
	}
	return toDomainBookings(models)
}

// ListActive retrieves all ACTIVE bookings across the fleet.
func (r *GormBookingRepository) ListActive(ctx context.Context) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := conn(ctx, r.db).
		Where("status = ?", string(bookingDomain.StatusActive)).
		Find(&models).Error; err != nil {
		return nil, domain.NewTransientStoreError("list active bookings", err)
	}
	return toDomainBookings(models)
}

// ListOverlapping retrieves all CONFIRMED or ACTIVE bookings overlapping the
// window, across the fleet. The overlap test is inclusive on both boundaries.
func (r *GormBookingRepository) ListOverlapping(ctx context.Context, window bookingDomain.Window) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := conn(ctx, r.db).
		Where("status IN ? AND start_date <= ? AND end_date >= ?",
			[]string{string(bookingDomain.StatusConfirmed), string(bookingDomain.StatusActive)},
			window.End, window.Start).
		Find(&models).Error; err != nil {
		return nil, domain.NewTransientStoreError("list overlapping bookings", err)
	}
	return toDomainBookings(models)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := conn(ctx, r.db).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, domain.NewTransientStoreError("count bookings", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := conn(ctx, r.db).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, domain.NewTransientStoreError("list bookings", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// Save persists a new booking. The bookings_no_overlap exclusion constraint is
// the durable backstop against concurrent double-booking; a violation surfaces
// as a ConflictError.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isConflictViolation(err) {
			return domain.NewConflictError("car is already booked for an overlapping window")
		}
		return domain.NewTransientStoreError("save booking", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before persisting).
	expectedVersion := bk.Version() - 1
	result := conn(ctx, r.db).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"car_id":         model.CarID,
			"start_date":     model.StartDate,
			"end_date":       model.EndDate,
			"pickup_time":    model.PickupTime,
			"status":         model.Status,
			"total_cents":    model.TotalCents,
			"currency":       model.Currency,
			"handed_over_at": model.HandedOverAt,
			"handover_fuel":  model.HandoverFuel,
			"handover_notes": model.HandoverNotes,
			"returned_at":    model.ReturnedAt,
			"return_fuel":    model.ReturnFuel,
			"return_notes":   model.ReturnNotes,
			"cancelled_at":   model.CancelledAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		if isConflictViolation(result.Error) {
			return domain.NewConflictError("car is already booked for an overlapping window")
		}
		return domain.NewTransientStoreError("update booking", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// isConflictViolation reports whether the error is a unique or exclusion
// constraint violation from PostgreSQL.
func isConflictViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation || pgErr.Code == pgExclusionViolation
	}
	return false
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
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

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, fmt.Errorf("corrupt booking row %s: %w", m.ID, err)
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.ConfirmationNumber,
		m.CarID,
		m.CustomerID,
		bookingDomain.Window{Start: m.StartDate, End: m.EndDate},
		m.PickupTime,
		status,
		m.TotalCents,
		m.Currency,
		m.HandedOverAt,
		bookingDomain.FuelLevel(m.HandoverFuel),
		m.HandoverNotes,
		m.ReturnedAt,
		bookingDomain.FuelLevel(m.ReturnFuel),
		m.ReturnNotes,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
