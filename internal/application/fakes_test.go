package application

import (
	"context"
	"sync"

	"github.com/driveport/service-rental/internal/domain"
	bookingDomain "github.com/driveport/service-rental/internal/domain/booking"
	"github.com/driveport/service-rental/internal/domain/fleet"
	"github.com/driveport/service-rental/internal/notification"
	"github.com/google/uuid"
)

// fakeBookingRepo is an in-memory BookingRepository with the same optimistic
// locking behavior as the real store.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
	carHubs  map[uuid.UUID]uuid.UUID
	failNext error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
		carHubs:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *fakeBookingRepo) takeFailure() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByConfirmationNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.ConfirmationNumber() == number {
			return bk, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", number)
}

func (r *fakeBookingRepo) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.CustomerID() == customerID {
			out = append(out, bk)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindByHubID(ctx context.Context, hubID uuid.UUID) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if r.carHubs[bk.CarID()] == hubID {
			out = append(out, bk)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindByCar(ctx context.Context, carID uuid.UUID) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.CarID() == carID && bk.Status().Occupies() {
			out = append(out, bk)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListActive(ctx context.Context) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.Status() == bookingDomain.StatusActive {
			out = append(out, bk)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListOverlapping(ctx context.Context, window bookingDomain.Window) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.Status().Occupies() && bk.Window().Overlaps(window) {
			out = append(out, bk)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		out = append(out, bk)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	existing, ok := r.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if existing != bk && existing.Version() != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[bk.ID()] = bk
	return nil
}

// fakeCarRepo is an in-memory CarRepository.
type fakeCarRepo struct {
	mu   sync.Mutex
	cars map[uuid.UUID]*fleet.Car
}

func newFakeCarRepo(cars ...*fleet.Car) *fakeCarRepo {
	r := &fakeCarRepo{cars: make(map[uuid.UUID]*fleet.Car)}
	for _, car := range cars {
		r.cars[car.ID()] = car
	}
	return r
}

func (r *fakeCarRepo) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	car, ok := r.cars[id]
	if !ok {
		return nil, domain.NewNotFoundError("Car", id.String())
	}
	return car, nil
}

func (r *fakeCarRepo) ListAll(ctx context.Context) ([]*fleet.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*fleet.Car
	for _, car := range r.cars {
		out = append(out, car)
	}
	return out, nil
}

func (r *fakeCarRepo) ListByHub(ctx context.Context, hubID uuid.UUID) ([]*fleet.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*fleet.Car
	for _, car := range r.cars {
		if car.HubID() == hubID {
			out = append(out, car)
		}
	}
	return out, nil
}

func (r *fakeCarRepo) Save(ctx context.Context, car *fleet.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cars[car.ID()] = car
	return nil
}

func (r *fakeCarRepo) Update(ctx context.Context, car *fleet.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cars[car.ID()] = car
	return nil
}

// fakeHubRepo is an in-memory HubRepository.
type fakeHubRepo struct {
	hubs []*fleet.Hub
}

func (r *fakeHubRepo) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Hub, error) {
	for _, h := range r.hubs {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, domain.NewNotFoundError("Hub", id.String())
}

func (r *fakeHubRepo) ListAll(ctx context.Context) ([]*fleet.Hub, error) {
	return r.hubs, nil
}

// fakeCustomerRepo is an in-memory CustomerRepository.
type fakeCustomerRepo struct {
	customers map[uuid.UUID]*fleet.Customer
}

func newFakeCustomerRepo(customers ...*fleet.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{customers: make(map[uuid.UUID]*fleet.Customer)}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

func (r *fakeCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, domain.NewNotFoundError("Customer", id.String())
	}
	return c, nil
}

func (r *fakeCustomerRepo) FindByEmail(ctx context.Context, email string) (*fleet.Customer, error) {
	for _, c := range r.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, domain.NewNotFoundError("Customer", email)
}

func (r *fakeCustomerRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*fleet.Customer, error) {
	out := make(map[uuid.UUID]*fleet.Customer)
	for _, id := range ids {
		if c, ok := r.customers[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

// fakeStaffRepo is an in-memory StaffRepository.
type fakeStaffRepo struct {
	members []*fleet.StaffMember
}

func (r *fakeStaffRepo) ListStaff(ctx context.Context) ([]*fleet.StaffMember, error) {
	return r.members, nil
}

// recordingTxRunner passes reads through while counting how many consistent
// read scopes were opened.
type recordingTxRunner struct {
	mu    sync.Mutex
	calls int
}

func (r *recordingTxRunner) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return fn(ctx)
}

func (r *recordingTxRunner) readScopes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// recordingNotifier captures confirmation sends for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	sends []notification.BookingSummary
	err   error
}

func (n *recordingNotifier) SendBookingConfirmation(ctx context.Context, email string, summary notification.BookingSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sends = append(n.sends, summary)
	return nil
}

func (n *recordingNotifier) sent() []notification.BookingSummary {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.BookingSummary(nil), n.sends...)
}
