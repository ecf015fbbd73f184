package booking

import (
	"context"

	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	"github.com/google/uuid"
)

// Repository defines the read-side persistence contract for bookings.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByCustomerID retrieves bookings belonging to a customer,
	// newest first.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*Booking, error)

	// ListAll retrieves all bookings, newest first (admin).
	ListAll(ctx context.Context) ([]*Booking, error)

	// FindExpiredActive retrieves active bookings whose end date is strictly
	// before the given calendar date.
	FindExpiredActive(ctx context.Context, today domain.Date) ([]*Booking, error)

	// CountActiveByCustomer returns how many active bookings a customer holds.
	CountActiveByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)

	// CountActiveByVehicle returns how many active bookings reference a vehicle.
	CountActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error)
}

// UnitOfWork pairs each booking mutation with its vehicle availability flip
// in a single atomic call, so callers cannot forget to pair them. If either
// half fails the whole unit rolls back.
type UnitOfWork interface {
	// CreateWithReservation inserts the booking and flips its vehicle from
	// available to booked. The flip is a compare-and-swap on the previous
	// status: the losing side of a concurrent reservation fails with a
	// conflict and nothing is persisted.
	CreateWithReservation(ctx context.Context, b *Booking) error

	// TransitionWithRelease persists the booking's new status (with
	// optimistic version check) and releases its vehicle back to available.
	// Releasing an already-available vehicle is a no-op, not an error.
	TransitionWithRelease(ctx context.Context, b *Booking) error
}
