package fleet

import (
	"strings"
	"time"

	"github.com/driveport/service-rental/internal/domain"
	"github.com/google/uuid"
)

// Car is a fleet vehicle. Created at catalog import and never deleted by the
// booking core; the availability flag is a maintenance marker set outside the
// booking system (e.g. by a mechanic).
type Car struct {
	id             uuid.UUID
	name           string
	numberPlate    string
	hubID          uuid.UUID
	carTypeName    string
	dailyRateCents int64
	available      bool
	imagePath      string
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

// NewCar creates a catalog car. The raw availability flag is normalized to a
// boolean here, once, rather than re-parsed on every status computation.
func NewCar(name, numberPlate string, hubID uuid.UUID, carTypeName string, dailyRateCents int64, rawAvailability, imagePath string) (*Car, error) {
	if name == "" {
		return nil, domain.NewValidationError("car name is required")
	}
	if numberPlate == "" {
		return nil, domain.NewValidationError("number plate is required")
	}
	if hubID == uuid.Nil {
		return nil, domain.NewValidationError("hub ID is required")
	}
	if dailyRateCents < 0 {
		return nil, domain.NewValidationError("daily rate cannot be negative")
	}

	now := time.Now().UTC()
	return &Car{
		id:             uuid.New(),
		name:           name,
		numberPlate:    numberPlate,
		hubID:          hubID,
		carTypeName:    carTypeName,
		dailyRateCents: dailyRateCents,
		available:      ParseAvailabilityFlag(rawAvailability),
		imagePath:      imagePath,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructCar rebuilds a Car from persistence data (no validation).
func ReconstructCar(
	id uuid.UUID,
	name, numberPlate string,
	hubID uuid.UUID,
	carTypeName string,
	dailyRateCents int64,
	available bool,
	imagePath string,
	version int64,
	createdAt, updatedAt time.Time,
) *Car {
	return &Car{
		id:             id,
		name:           name,
		numberPlate:    numberPlate,
		hubID:          hubID,
		carTypeName:    carTypeName,
		dailyRateCents: dailyRateCents,
		available:      available,
		imagePath:      imagePath,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

func (c *Car) ID() uuid.UUID         { return c.id }
func (c *Car) Name() string          { return c.name }
func (c *Car) NumberPlate() string   { return c.numberPlate }
func (c *Car) HubID() uuid.UUID      { return c.hubID }
func (c *Car) CarTypeName() string   { return c.carTypeName }
func (c *Car) DailyRateCents() int64 { return c.dailyRateCents }
func (c *Car) ImagePath() string     { return c.imagePath }
func (c *Car) Version() int64        { return c.version }
func (c *Car) CreatedAt() time.Time  { return c.createdAt }
func (c *Car) UpdatedAt() time.Time  { return c.updatedAt }

// Available reports the raw maintenance marker. True means the car is
// physically serviceable right now; it says nothing about future windows.
func (c *Car) Available() bool { return c.available }

// SetAvailability flips the maintenance marker (administrative operation).
func (c *Car) SetAvailability(available bool) {
	c.available = available
	c.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (c *Car) IncrementVersion() {
	c.version++
	c.updatedAt = time.Now().UTC()
}

// ParseAvailabilityFlag collapses the catalog's historical truthy/falsy string
// encodings into a boolean. Legacy feeds used "N", "NO", "False" and "0" for
// unavailable; anything else (including empty) counts as available.
func ParseAvailabilityFlag(raw string) bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "N", "NO", "FALSE", "0":
		return false
	}
	return true
}
