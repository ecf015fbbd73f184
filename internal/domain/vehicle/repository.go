package vehicle

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for vehicle aggregates.
//
// SetAvailability is the availability synchronizer: a single-purpose status
// writer with no validation or authorization of its own. When from is
// non-empty the write is a compare-and-swap keyed on the previous status and
// the implementation must report a conflict when no row matches; race safety
// between concurrent callers is otherwise delegated to the unit-of-work
// transaction wrapping the call.
type Repository interface {
	// FindByID retrieves a vehicle by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// ListAll retrieves all vehicles ordered by creation time, newest first.
	ListAll(ctx context.Context) ([]*Vehicle, error)

	// Save persists a new vehicle.
	Save(ctx context.Context, v *Vehicle) error

	// Update persists changes to an existing vehicle's catalog fields.
	Update(ctx context.Context, v *Vehicle) error

	// Delete removes a vehicle.
	Delete(ctx context.Context, id uuid.UUID) error

	// SetAvailability writes the vehicle's availability status. A non-empty
	// from makes the write conditional on the current status.
	SetAvailability(ctx context.Context, id uuid.UUID, from, to AvailabilityStatus) error
}
