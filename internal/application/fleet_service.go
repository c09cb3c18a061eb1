package application

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/driveport/service-rental/internal/domain"
	bookingDomain "github.com/driveport/service-rental/internal/domain/booking"
	"github.com/driveport/service-rental/internal/domain/fleet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Car status labels in the fleet snapshot.
const (
	CarStatusAvailable   = "Available"
	CarStatusRented      = "Rented"
	CarStatusMaintenance = "Maintenance"
)

const unknownHubName = "Unknown Hub"

// RentalInfo describes the booking occupying a car in the snapshot.
type RentalInfo struct {
	BookingID          uuid.UUID `json:"booking_id"`
	ConfirmationNumber string    `json:"confirmation_number"`
	CustomerName       string    `json:"customer_name"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	PickupTime         string    `json:"pickup_time,omitempty"`
}

// CarStatusDTO is one car's row in the fleet snapshot.
type CarStatusDTO struct {
	CarID          uuid.UUID   `json:"car_id"`
	Name           string      `json:"name"`
	NumberPlate    string      `json:"number_plate"`
	CarType        string      `json:"car_type"`
	DailyRateCents int64       `json:"daily_rate_cents"`
	Status         string      `json:"status"`
	Rental         *RentalInfo `json:"rental,omitempty"`
}

// HubFleetDTO groups a hub's cars with per-hub counts.
type HubFleetDTO struct {
	HubID       uuid.UUID      `json:"hub_id"`
	HubName     string         `json:"hub_name"`
	CityName    string         `json:"city_name,omitempty"`
	Cars        []CarStatusDTO `json:"cars"`
	Total       int            `json:"total"`
	Available   int            `json:"available"`
	Rented      int            `json:"rented"`
	Maintenance int            `json:"maintenance"`
}

// FleetStatistics carries the fleet-wide counts and utilization percentage.
type FleetStatistics struct {
	TotalCars       int     `json:"total_cars"`
	AvailableCars   int     `json:"available_cars"`
	RentedCars      int     `json:"rented_cars"`
	MaintenanceCars int     `json:"maintenance_cars"`
	UtilizationPct  float64 `json:"utilization_pct"`
}

// FleetSnapshotDTO is the full fleet overview response.
type FleetSnapshotDTO struct {
	Hubs       []HubFleetDTO   `json:"hubs"`
	Statistics FleetStatistics `json:"statistics"`
	WindowFrom *time.Time      `json:"window_from,omitempty"`
	WindowTo   *time.Time      `json:"window_to,omitempty"`
}

// StaffMemberDTO is one entry in the staff directory.
type StaffMemberDTO struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Role     string     `json:"role"`
	HubID    *uuid.UUID `json:"hub_id,omitempty"`
	HubName  string     `json:"hub_name,omitempty"`
	CityName string     `json:"city_name,omitempty"`
}

// ReadTxRunner scopes a function to one read-only database transaction so a
// multi-query read observes a single snapshot of the data.
type ReadTxRunner interface {
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// FleetService builds point-in-time and windowed snapshots of the whole fleet,
// grouped by hub.
type FleetService struct {
	cars      fleet.CarRepository
	hubs      fleet.HubRepository
	customers fleet.CustomerRepository
	staff     fleet.StaffRepository
	bookings  bookingDomain.BookingRepository
	tx        ReadTxRunner
	logger    *zap.Logger
}

// NewFleetService creates a new FleetService. tx may be nil when the
// repositories already share one consistent view (tests).
func NewFleetService(
	cars fleet.CarRepository,
	hubs fleet.HubRepository,
	customers fleet.CustomerRepository,
	staff fleet.StaffRepository,
	bookings bookingDomain.BookingRepository,
	tx ReadTxRunner,
	logger *zap.Logger,
) *FleetService {
	return &FleetService{
		cars:      cars,
		hubs:      hubs,
		customers: customers,
		staff:     staff,
		bookings:  bookings,
		tx:        tx,
		logger:    logger,
	}
}

// Snapshot computes the status of every car, grouped by hub. With a nil window
// the snapshot is point-in-time: a car counts as rented only while an ACTIVE
// booking holds it, and the maintenance flag is honored for idle cars. With a
// window, any CONFIRMED or ACTIVE booking overlapping the window counts as
// rented and the maintenance flag is ignored.
func (s *FleetService) Snapshot(ctx context.Context, window *bookingDomain.Window) (*FleetSnapshotDTO, error) {
	var (
		cars      []*fleet.Car
		hubs      []*fleet.Hub
		occupying []*bookingDomain.Booking
	)
	if err := s.readConsistently(ctx, func(ctx context.Context) error {
		var err error
		if cars, err = s.cars.ListAll(ctx); err != nil {
			return err
		}
		if hubs, err = s.hubs.ListAll(ctx); err != nil {
			return err
		}
		if window == nil {
			occupying, err = s.bookings.ListActive(ctx)
		} else {
			occupying, err = s.bookings.ListOverlapping(ctx, *window)
		}
		return err
	}); err != nil {
		return nil, err
	}

	// One occupying booking per car; if data ever holds more than one, the
	// earliest-starting booking wins.
	bookingByCar := make(map[uuid.UUID]*bookingDomain.Booking, len(occupying))
	for _, bk := range occupying {
		existing, ok := bookingByCar[bk.CarID()]
		if !ok || bk.Window().Start.Before(existing.Window().Start) {
			bookingByCar[bk.CarID()] = bk
		}
	}

	customersByID, err := s.lookupCustomers(ctx, occupying)
	if err != nil {
		return nil, err
	}

	hubsByID := make(map[uuid.UUID]*fleet.Hub, len(hubs))
	for _, h := range hubs {
		hubsByID[h.ID] = h
	}

	groups := make(map[uuid.UUID]*HubFleetDTO)
	var stats FleetStatistics

	for _, car := range cars {
		row := CarStatusDTO{
			CarID:          car.ID(),
			Name:           car.Name(),
			NumberPlate:    car.NumberPlate(),
			CarType:        car.CarTypeName(),
			DailyRateCents: car.DailyRateCents(),
		}

		if bk, rented := bookingByCar[car.ID()]; rented {
			row.Status = CarStatusRented
			info := RentalInfo{
				BookingID:          bk.ID(),
				ConfirmationNumber: bk.ConfirmationNumber(),
				StartDate:          bk.Window().Start,
				EndDate:            bk.Window().End,
				PickupTime:         bk.PickupTime(),
			}
			if customer, ok := customersByID[bk.CustomerID()]; ok {
				info.CustomerName = customer.DisplayName()
			}
			row.Rental = &info
		} else if window == nil && !car.Available() {
			row.Status = CarStatusMaintenance
		} else {
			row.Status = CarStatusAvailable
		}

		group, ok := groups[car.HubID()]
		if !ok {
			group = &HubFleetDTO{HubID: car.HubID(), HubName: unknownHubName}
			if hub, found := hubsByID[car.HubID()]; found {
				group.HubName = hub.Name
				group.CityName = hub.City.Name
			}
			groups[car.HubID()] = group
		}
		group.Cars = append(group.Cars, row)
		group.Total++

		switch row.Status {
		case CarStatusRented:
			group.Rented++
			stats.RentedCars++
		case CarStatusMaintenance:
			group.Maintenance++
			stats.MaintenanceCars++
		default:
			group.Available++
			stats.AvailableCars++
		}
		stats.TotalCars++
	}

	hubDTOs := make([]HubFleetDTO, 0, len(groups))
	for _, group := range groups {
		sort.Slice(group.Cars, func(i, j int) bool {
			return group.Cars[i].Name < group.Cars[j].Name
		})
		hubDTOs = append(hubDTOs, *group)
	}
	sort.Slice(hubDTOs, func(i, j int) bool {
		return hubDTOs[i].HubName < hubDTOs[j].HubName
	})

	if stats.TotalCars > 0 {
		pct := float64(stats.RentedCars) / float64(stats.TotalCars) * 100
		stats.UtilizationPct = math.Round(pct*100) / 100
	}

	snapshot := &FleetSnapshotDTO{
		Hubs:       hubDTOs,
		Statistics: stats,
	}
	if window != nil {
		snapshot.WindowFrom = &window.Start
		snapshot.WindowTo = &window.End
	}
	return snapshot, nil
}

// ListStaff returns the staff directory with hub assignments resolved.
func (s *FleetService) ListStaff(ctx context.Context) ([]StaffMemberDTO, error) {
	members, err := s.staff.ListStaff(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]StaffMemberDTO, len(members))
	for i, m := range members {
		dto := StaffMemberDTO{
			ID:    m.ID,
			Name:  m.Username,
			Email: m.Email,
			Role:  m.Role,
		}
		if m.Hub != nil {
			hubID := m.Hub.ID
			dto.HubID = &hubID
			dto.HubName = m.Hub.Name
			dto.CityName = m.Hub.City.Name
		}
		dtos[i] = dto
	}
	return dtos, nil
}

// ListCars returns the full car catalog.
func (s *FleetService) ListCars(ctx context.Context) ([]CarStatusDTO, error) {
	cars, err := s.cars.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]CarStatusDTO, len(cars))
	for i, car := range cars {
		status := CarStatusAvailable
		if !car.Available() {
			status = CarStatusMaintenance
		}
		rows[i] = CarStatusDTO{
			CarID:          car.ID(),
			Name:           car.Name(),
			NumberPlate:    car.NumberPlate(),
			CarType:        car.CarTypeName(),
			DailyRateCents: car.DailyRateCents(),
			Status:         status,
		}
	}
	return rows, nil
}

// ListHubs returns all rental hubs.
func (s *FleetService) ListHubs(ctx context.Context) ([]*fleet.Hub, error) {
	return s.hubs.ListAll(ctx)
}

// SetCarAvailability flips a car's maintenance marker (admin operation).
func (s *FleetService) SetCarAvailability(ctx context.Context, carID uuid.UUID, rawFlag string) error {
	car, err := s.cars.FindByID(ctx, carID)
	if err != nil {
		return err
	}
	car.SetAvailability(fleet.ParseAvailabilityFlag(rawFlag))
	car.IncrementVersion()
	return s.cars.Update(ctx, car)
}

// readConsistently runs fn inside the read-only transaction when a runner is
// configured, and directly against the repositories otherwise.
func (s *FleetService) readConsistently(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.ReadOnly(ctx, fn)
}

// lookupCustomers batch-fetches the customers behind the occupying bookings.
// A missing customer row degrades to an empty name rather than failing the
// whole snapshot.
func (s *FleetService) lookupCustomers(ctx context.Context, bookings []*bookingDomain.Booking) (map[uuid.UUID]*fleet.Customer, error) {
	if len(bookings) == 0 {
		return map[uuid.UUID]*fleet.Customer{}, nil
	}
	seen := make(map[uuid.UUID]struct{}, len(bookings))
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, bk := range bookings {
		if _, ok := seen[bk.CustomerID()]; ok {
			continue
		}
		seen[bk.CustomerID()] = struct{}{}
		ids = append(ids, bk.CustomerID())
	}
	customers, err := s.customers.FindByIDs(ctx, ids)
	if err != nil {
		var tse *domain.TransientStoreError
		if !errors.As(err, &tse) {
			return nil, err
		}
		s.logger.Warn("customer lookup failed for snapshot, names omitted", zap.Error(err))
		return map[uuid.UUID]*fleet.Customer{}, nil
	}
	return customers, nil
}
