package fleet

import (
	"context"

	"github.com/google/uuid"
)

// CarRepository defines the persistence contract for the car catalog.
type CarRepository interface {
	// FindByID retrieves a car by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Car, error)

	// ListAll retrieves the whole catalog in a single consistent read.
	ListAll(ctx context.Context) ([]*Car, error)

	// ListByHub retrieves all cars owned by a hub.
	ListByHub(ctx context.Context, hubID uuid.UUID) ([]*Car, error)

	// Save persists a new catalog car.
	Save(ctx context.Context, car *Car) error

	// Update persists changes to an existing car with optimistic locking.
	Update(ctx context.Context, car *Car) error
}

// HubRepository defines the persistence contract for rental hubs.
type HubRepository interface {
	// FindByID retrieves a hub by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Hub, error)

	// ListAll retrieves all hubs.
	ListAll(ctx context.Context) ([]*Hub, error)
}

// CustomerRepository defines the persistence contract for customer records.
type CustomerRepository interface {
	// FindByID retrieves a customer by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByEmail retrieves a customer by email address.
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// FindByIDs retrieves the customers for a set of identifiers, keyed by ID.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Customer, error)
}

// StaffRepository defines the persistence contract for the staff directory.
type StaffRepository interface {
	// ListStaff retrieves all staff members with their hub assignment, if any.
	ListStaff(ctx context.Context) ([]*StaffMember, error)
}
