package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	bookingDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/booking"
	vehicleDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/vehicle"
)

// GormUnitOfWork implements booking.UnitOfWork. Each method runs the booking
// mutation and the paired vehicle availability write inside one database
// transaction: if either half fails, both roll back.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork.
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// CreateWithReservation inserts the booking and flips its vehicle from
// available to booked. The flip is a compare-and-swap keyed on the previous
// status, so of two concurrent reservations for the same vehicle exactly one
// commits; the loser's insert rolls back and the call reports a conflict.
func (u *GormUnitOfWork) CreateWithReservation(ctx context.Context, bk *bookingDomain.Booking) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toBookingModel(bk)).Error; err != nil {
			// The partial unique index on active bookings fires when a
			// concurrent reservation inserted first.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.NewConflictError("vehicle is not available for booking")
			}
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return setVehicleAvailability(tx, bk.VehicleID(), vehicleDomain.StatusAvailable, vehicleDomain.StatusBooked)
	})
}

// TransitionWithRelease persists the booking's new status and releases its
// vehicle back to available as one atomic unit. The booking update carries an
// optimistic version check; the release is unconditional, so freeing an
// already-available vehicle is a no-op rather than an error.
func (u *GormUnitOfWork) TransitionWithRelease(ctx context.Context, bk *bookingDomain.Booking) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateBookingStatus(tx, bk); err != nil {
			return err
		}
		return setVehicleAvailability(tx, bk.VehicleID(), "", vehicleDomain.StatusAvailable)
	})
}
