package booking

import (
	"time"

	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking is the aggregate root for the rental booking domain. The total
// price is a snapshot fixed at creation; later vehicle rate changes never
// touch it.
type Booking struct {
	id         uuid.UUID
	customerID uuid.UUID
	vehicleID  uuid.UUID
	startDate  domain.Date
	endDate    domain.Date
	totalPrice decimal.Decimal
	status     Status

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=active and the
// price computed from the rental period and the vehicle's current daily rate.
func NewBooking(customerID, vehicleID uuid.UUID, startDate, endDate domain.Date, dailyRate decimal.Decimal) (*Booking, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if vehicleID == uuid.Nil {
		return nil, domain.NewValidationError("vehicle ID is required")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, domain.NewValidationError("rental start and end dates are required")
	}
	if !endDate.After(startDate) {
		return nil, domain.NewValidationError("end date must be after start date")
	}

	price, err := Quote(dailyRate, startDate, endDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:         uuid.New(),
		customerID: customerID,
		vehicleID:  vehicleID,
		startDate:  startDate,
		endDate:    endDate,
		totalPrice: price,
		status:     StatusActive,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(id, customerID, vehicleID uuid.UUID, startDate, endDate domain.Date, totalPrice decimal.Decimal, status Status, version int64, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		id:         id,
		customerID: customerID,
		vehicleID:  vehicleID,
		startDate:  startDate,
		endDate:    endDate,
		totalPrice: totalPrice,
		status:     status,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// CustomerID returns the owning customer's user ID.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// VehicleID returns the reserved vehicle's ID.
func (b *Booking) VehicleID() uuid.UUID { return b.vehicleID }

// StartDate returns the first day of the rental period.
func (b *Booking) StartDate() domain.Date { return b.startDate }

// EndDate returns the day the rental period ends.
func (b *Booking) EndDate() domain.Date { return b.endDate }

// TotalPrice returns the price snapshotted at creation.
func (b *Booking) TotalPrice() decimal.Decimal { return b.totalPrice }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsActive reports whether the booking still holds its vehicle.
func (b *Booking) IsActive() bool { return b.status == StatusActive }

// IsExpired reports whether an active booking's rental period has passed as
// of the given calendar date.
func (b *Booking) IsExpired(today domain.Date) bool {
	return b.status == StatusActive && b.endDate.Before(today)
}

// Cancel transitions the booking from active to cancelled.
func (b *Booking) Cancel() error {
	return b.transitionTo(StatusCancelled)
}

// Return transitions the booking from active to returned.
func (b *Booking) Return() error {
	return b.transitionTo(StatusReturned)
}

func (b *Booking) transitionTo(target Status) error {
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
