package repository

import (
	"context"
	"errors"
	"time"

	"github.com/driveport/service-rental/internal/domain"
	"github.com/driveport/service-rental/internal/domain/fleet"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CarModel is the GORM model for the cars table.
type CarModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"not null;size:100"`
	NumberPlate    string    `gorm:"uniqueIndex;not null;size:20"`
	HubID          uuid.UUID `gorm:"type:uuid;index;not null"`
	CarTypeName    string    `gorm:"size:50"`
	DailyRateCents int64     `gorm:"not null;default:0"`
	Available      bool      `gorm:"not null;default:true"`
	ImagePath      string    `gorm:"size:255"`
	Version        int64     `gorm:"not null;default:1"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CarModel) TableName() string {
	return "cars"
}

// HubModel is the GORM model for the hubs table.
type HubModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"not null;size:100"`
	CityID   uuid.UUID `gorm:"type:uuid;not null"`
	CityName string    `gorm:"not null;size:100"`
}

// TableName returns the table name for the GORM model.
func (HubModel) TableName() string {
	return "hubs"
}

// CustomerModel is the GORM model for the customers table.
type CustomerModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName string    `gorm:"size:100"`
	LastName  string    `gorm:"size:100"`
	Email     string    `gorm:"uniqueIndex;not null;size:255"`
	Phone     string    `gorm:"size:30"`
}

// TableName returns the table name for the GORM model.
func (CustomerModel) TableName() string {
	return "customers"
}

// StaffModel is the GORM model for the staff directory.
type StaffModel struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Username string     `gorm:"uniqueIndex;not null;size:100"`
	Email    string     `gorm:"uniqueIndex;not null;size:255"`
	Role     string     `gorm:"not null;size:20;index"`
	HubID    *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for the GORM model.
func (StaffModel) TableName() string {
	return "staff"
}

// GormCarRepository is the GORM-based implementation of CarRepository.
type GormCarRepository struct {
	db *gorm.DB
}

// NewGormCarRepository creates a new GormCarRepository.
func NewGormCarRepository(db *gorm.DB) *GormCarRepository {
	return &GormCarRepository{db: db}
}

// FindByID retrieves a car by its unique identifier.
func (r *GormCarRepository) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Car, error) {
	var model CarModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Car", id.String())
		}
		return nil, domain.NewTransientStoreError("find car by id", err)
	}
	return toDomainCar(&model), nil
}

// ListAll retrieves the whole catalog in a single consistent read.
func (r *GormCarRepository) ListAll(ctx context.Context) ([]*fleet.Car, error) {
	var models []CarModel
	if err := conn(ctx, r.db).Order("name ASC").Find(&models).Error; err != nil {
		return nil, domain.NewTransientStoreError("list cars", err)
	}
	cars := make([]*fleet.Car, len(models))
	for i, m := range models {
		cars[i] = toDomainCar(&m)
	}
	return cars, nil
}

// ListByHub retrieves all cars owned by a hub.
func (r *GormCarRepository) ListByHub(ctx context.Context, hubID uuid.UUID) ([]*fleet.Car, error) {
	var models []CarModel
	if err := conn(ctx, r.db).Where("hub_id = ?", hubID).Order("name ASC").Find(&models).Error; err != nil {
		return nil, domain.NewTransientStoreError("list cars by hub", err)
	}
	cars := make([]*fleet.Car, len(models))
	for i, m := range models {
		cars[i] = toDomainCar(&m)
	}
	return cars, nil
}

// Save persists a new catalog car.
func (r *GormCarRepository) Save(ctx context.Context, car *fleet.Car) error {
	if err := conn(ctx, r.db).Create(toCarModel(car)).Error; err != nil {
		return domain.NewTransientStoreError("save car", err)
	}
	return nil
}

// Update persists changes to an existing car with optimistic locking.
func (r *GormCarRepository) Update(ctx context.Context, car *fleet.Car) error {
	model := toCarModel(car)
	expectedVersion := car.Version() - 1
	result := conn(ctx, r.db).
		Model(&CarModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":             model.Name,
			"number_plate":     model.NumberPlate,
			"hub_id":           model.HubID,
			"car_type_name":    model.CarTypeName,
			"daily_rate_cents": model.DailyRateCents,
			"available":        model.Available,
			"image_path":       model.ImagePath,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return domain.NewTransientStoreError("update car", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("car was modified by another transaction")
	}
	return nil
}

// GormHubRepository is the GORM-based implementation of HubRepository.
type GormHubRepository struct {
	db *gorm.DB
}

// NewGormHubRepository creates a new GormHubRepository.
func NewGormHubRepository(db *gorm.DB) *GormHubRepository {
	return &GormHubRepository{db: db}
}

// FindByID retrieves a hub by its unique identifier.
func (r *GormHubRepository) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Hub, error) {
	var model HubModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Hub", id.String())
		}
		return nil, domain.NewTransientStoreError("find hub by id", err)
	}
	return toDomainHub(&model), nil
}

// ListAll retrieves all hubs.
func (r *GormHubRepository) ListAll(ctx context.Context) ([]*fleet.Hub, error) {
	var models []HubModel
	if err := conn(ctx, r.db).Order("name ASC").Find(&models).Error; err != nil {
		return nil, domain.NewTransientStoreError("list hubs", err)
	}
	hubs := make([]*fleet.Hub, len(models))
	for i, m := range models {
		hubs[i] = toDomainHub(&m)
	}
	return hubs, nil
}

// GormCustomerRepository is the GORM-based implementation of CustomerRepository.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID retrieves a customer by its unique identifier.
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Customer, error) {
	var model CustomerModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", id.String())
		}
		return nil, domain.NewTransientStoreError("find customer by id", err)
	}
	customer := toDomainCustomer(&model)
	return &customer, nil
}

// FindByEmail retrieves a customer by email address.
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*fleet.Customer, error) {
	var model CustomerModel
	if err := conn(ctx, r.db).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", email)
		}
		return nil, domain.NewTransientStoreError("find customer by email", err)
	}
	customer := toDomainCustomer(&model)
	return &customer, nil
}

// FindByIDs retrieves the customers for a set of identifiers, keyed by ID.
func (r *GormCustomerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*fleet.Customer, error) {
	result := make(map[uuid.UUID]*fleet.Customer, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var models []CustomerModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, domain.NewTransientStoreError("find customers by ids", err)
	}
	for i := range models {
		customer := toDomainCustomer(&models[i])
		result[customer.ID] = &customer
	}
	return result, nil
}

// GormStaffRepository is the GORM-based implementation of StaffRepository.
type GormStaffRepository struct {
	db *gorm.DB
}

// NewGormStaffRepository creates a new GormStaffRepository.
func NewGormStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// staffRow is the joined projection for the staff directory.
type staffRow struct {
	ID       uuid.UUID
	Username string
	Email    string
	Role     string
	HubID    *uuid.UUID
	HubName  *string
	CityID   *uuid.UUID
	CityName *string
}

// ListStaff retrieves all staff members with their hub assignment, if any.
// The hub is kept explicitly nullable instead of collapsing to a zero value.
func (r *GormStaffRepository) ListStaff(ctx context.Context) ([]*fleet.StaffMember, error) {
	var rows []staffRow
	if err := conn(ctx, r.db).
		Table("staff").
		Select("staff.id, staff.username, staff.email, staff.role, "+
			"hubs.id AS hub_id, hubs.name AS hub_name, hubs.city_id, hubs.city_name").
		Joins("LEFT JOIN hubs ON hubs.id = staff.hub_id").
		Where("staff.role = ?", "STAFF").
		Order("staff.username ASC").
		Scan(&rows).Error; err != nil {
		return nil, domain.NewTransientStoreError("list staff", err)
	}

	members := make([]*fleet.StaffMember, len(rows))
	for i, row := range rows {
		member := &fleet.StaffMember{
			ID:       row.ID,
			Username: row.Username,
			Email:    row.Email,
			Role:     row.Role,
		}
		if row.HubID != nil {
			hub := &fleet.Hub{ID: *row.HubID}
			if row.HubName != nil {
				hub.Name = *row.HubName
			}
			if row.CityID != nil {
				hub.City.ID = *row.CityID
			}
			if row.CityName != nil {
				hub.City.Name = *row.CityName
			}
			member.Hub = hub
		}
		members[i] = member
	}
	return members, nil
}

// --- Conversion Helpers ---

func toCarModel(car *fleet.Car) *CarModel {
	return &CarModel{
		ID:             car.ID(),
		Name:           car.Name(),
		NumberPlate:    car.NumberPlate(),
		HubID:          car.HubID(),
		CarTypeName:    car.CarTypeName(),
		DailyRateCents: car.DailyRateCents(),
		Available:      car.Available(),
		ImagePath:      car.ImagePath(),
		Version:        car.Version(),
		CreatedAt:      car.CreatedAt(),
		UpdatedAt:      car.UpdatedAt(),
	}
}

func toDomainCar(m *CarModel) *fleet.Car {
	return fleet.ReconstructCar(
		m.ID,
		m.Name,
		m.NumberPlate,
		m.HubID,
		m.CarTypeName,
		m.DailyRateCents,
		m.Available,
		m.ImagePath,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainHub(m *HubModel) *fleet.Hub {
	return &fleet.Hub{
		ID:   m.ID,
		Name: m.Name,
		City: fleet.City{ID: m.CityID, Name: m.CityName},
	}
}

func toDomainCustomer(m *CustomerModel) fleet.Customer {
	return fleet.Customer{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Phone:     m.Phone,
	}
}
