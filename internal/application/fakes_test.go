package application

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	bookingDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/booking"
	userDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/user"
	vehicleDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/vehicle"
	"github.com/abnahid/Vehicle-Rental-System/internal/events"
)

// fixedClock pins the sweep's notion of "today" for deterministic tests.
type fixedClock struct {
	today domain.Date
}

func (c fixedClock) Today() domain.Date { return c.today }

// capturingPublisher records published events instead of writing to Kafka.
type capturingPublisher struct {
	mu     sync.Mutex
	events []events.CloudEvent
}

func (p *capturingPublisher) PublishEvent(_ context.Context, _ string, event events.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

// fakeUserRepo is an in-memory user.Repository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*userDomain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*userDomain.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id.String())
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == strings.ToLower(strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("user", email)
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*userDomain.User, 0, len(r.users))
	for _, u := range r.users {
		list = append(list, u)
	}
	return list, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID()]; !ok {
		return domain.NewNotFoundError("user", u.ID().String())
	}
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.NewNotFoundError("user", id.String())
	}
	delete(r.users, id)
	return nil
}

// fakeVehicleRepo is an in-memory vehicle.Repository with a real
// compare-and-swap on availability.
type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]*vehicleDomain.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[uuid.UUID]*vehicleDomain.Vehicle)}
}

func (r *fakeVehicleRepo) FindByID(_ context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, domain.NewNotFoundError("vehicle", id.String())
	}
	return v, nil
}

func (r *fakeVehicleRepo) ListAll(_ context.Context) ([]*vehicleDomain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*vehicleDomain.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		list = append(list, v)
	}
	return list, nil
}

func (r *fakeVehicleRepo) Save(_ context.Context, v *vehicleDomain.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.ID()] = v
	return nil
}

func (r *fakeVehicleRepo) Update(_ context.Context, v *vehicleDomain.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.vehicles[v.ID()]
	if !ok {
		return domain.NewNotFoundError("vehicle", v.ID().String())
	}
	// Availability is owned by SetAvailability; keep the stored value.
	r.vehicles[v.ID()] = vehicleDomain.Reconstruct(
		v.ID(), v.Name(), v.Type(), v.RegistrationNumber(), v.DailyRate(),
		existing.Availability(), v.CreatedAt(), v.UpdatedAt(),
	)
	return nil
}

func (r *fakeVehicleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[id]; !ok {
		return domain.NewNotFoundError("vehicle", id.String())
	}
	delete(r.vehicles, id)
	return nil
}

func (r *fakeVehicleRepo) SetAvailability(_ context.Context, id uuid.UUID, from, to vehicleDomain.AvailabilityStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setAvailabilityLocked(id, from, to)
}

func (r *fakeVehicleRepo) setAvailabilityLocked(id uuid.UUID, from, to vehicleDomain.AvailabilityStatus) error {
	v, ok := r.vehicles[id]
	if !ok {
		return domain.NewNotFoundError("vehicle", id.String())
	}
	if from != "" && v.Availability() != from {
		return domain.NewConflictError("vehicle is not available for booking")
	}
	r.vehicles[id] = vehicleDomain.Reconstruct(
		v.ID(), v.Name(), v.Type(), v.RegistrationNumber(), v.DailyRate(),
		to, v.CreatedAt(), v.UpdatedAt(),
	)
	return nil
}

// fakeBookingRepo is an in-memory booking.Repository.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.CustomerID() == customerID {
			list = append(list, bk)
		}
	}
	return list, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		list = append(list, bk)
	}
	return list, nil
}

func (r *fakeBookingRepo) FindExpiredActive(_ context.Context, today domain.Date) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.IsExpired(today) {
			list = append(list, bk)
		}
	}
	return list, nil
}

func (r *fakeBookingRepo) CountActiveByCustomer(_ context.Context, customerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, bk := range r.bookings {
		if bk.CustomerID() == customerID && bk.IsActive() {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) CountActiveByVehicle(_ context.Context, vehicleID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, bk := range r.bookings {
		if bk.VehicleID() == vehicleID && bk.IsActive() {
			n++
		}
	}
	return n, nil
}

// fakeUnitOfWork couples the booking and vehicle fakes the way the real
// transaction does: the availability flip failing means nothing is stored.
type fakeUnitOfWork struct {
	mu       sync.Mutex
	bookings *fakeBookingRepo
	vehicles *fakeVehicleRepo
	failNext error
}

func newFakeUnitOfWork(bookings *fakeBookingRepo, vehicles *fakeVehicleRepo) *fakeUnitOfWork {
	return &fakeUnitOfWork{bookings: bookings, vehicles: vehicles}
}

func (u *fakeUnitOfWork) CreateWithReservation(ctx context.Context, bk *bookingDomain.Booking) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failNext != nil {
		err := u.failNext
		u.failNext = nil
		return err
	}
	if err := u.vehicles.SetAvailability(ctx, bk.VehicleID(), vehicleDomain.StatusAvailable, vehicleDomain.StatusBooked); err != nil {
		return err
	}
	u.bookings.mu.Lock()
	u.bookings.bookings[bk.ID()] = bk
	u.bookings.mu.Unlock()
	return nil
}

func (u *fakeUnitOfWork) TransitionWithRelease(ctx context.Context, bk *bookingDomain.Booking) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failNext != nil {
		err := u.failNext
		u.failNext = nil
		return err
	}
	u.bookings.mu.Lock()
	if _, ok := u.bookings.bookings[bk.ID()]; !ok {
		u.bookings.mu.Unlock()
		return domain.NewNotFoundError("booking", bk.ID().String())
	}
	u.bookings.bookings[bk.ID()] = bk
	u.bookings.mu.Unlock()
	return u.vehicles.SetAvailability(ctx, bk.VehicleID(), "", vehicleDomain.StatusAvailable)
}
