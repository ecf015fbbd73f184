package vehicle

import (
	"fmt"
	"strings"
	"time"

	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AvailabilityStatus indicates whether a vehicle may be newly booked.
type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "available"
	StatusBooked    AvailabilityStatus = "booked"
)

// IsValid returns true if the status is a recognized availability status.
func (s AvailabilityStatus) IsValid() bool {
	return s == StatusAvailable || s == StatusBooked
}

// ParseAvailabilityStatus converts a string to an AvailabilityStatus.
func ParseAvailabilityStatus(s string) (AvailabilityStatus, error) {
	status := AvailabilityStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid availability status: %s", s)
	}
	return status, nil
}

// Vehicle is the aggregate root for the rental catalog.
type Vehicle struct {
	id                 uuid.UUID
	name               string
	vehicleType        string
	registrationNumber string
	dailyRate          decimal.Decimal
	availability       AvailabilityStatus
	createdAt          time.Time
	updatedAt          time.Time
}

// NewVehicle creates a new Vehicle aggregate, available by default.
func NewVehicle(name, vehicleType, registrationNumber string, dailyRate decimal.Decimal) (*Vehicle, error) {
	name = strings.TrimSpace(name)
	vehicleType = strings.TrimSpace(vehicleType)
	registrationNumber = strings.TrimSpace(registrationNumber)

	if name == "" {
		return nil, domain.NewValidationError("vehicle name is required")
	}
	if vehicleType == "" {
		return nil, domain.NewValidationError("vehicle type is required")
	}
	if registrationNumber == "" {
		return nil, domain.NewValidationError("registration number is required")
	}
	if dailyRate.LessThanOrEqual(decimal.Zero) {
		return nil, domain.NewValidationError("daily rate must be positive")
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:                 uuid.New(),
		name:               name,
		vehicleType:        vehicleType,
		registrationNumber: registrationNumber,
		dailyRate:          dailyRate,
		availability:       StatusAvailable,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// Reconstruct rebuilds a Vehicle from persistence data (no validation).
func Reconstruct(id uuid.UUID, name, vehicleType, registrationNumber string, dailyRate decimal.Decimal, availability AvailabilityStatus, createdAt, updatedAt time.Time) *Vehicle {
	return &Vehicle{
		id:                 id,
		name:               name,
		vehicleType:        vehicleType,
		registrationNumber: registrationNumber,
		dailyRate:          dailyRate,
		availability:       availability,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// ID returns the vehicle's unique identifier.
func (v *Vehicle) ID() uuid.UUID { return v.id }

// Name returns the vehicle's display name.
func (v *Vehicle) Name() string { return v.name }

// Type returns the vehicle category, such as "car" or "van".
func (v *Vehicle) Type() string { return v.vehicleType }

// RegistrationNumber returns the vehicle's unique registration plate.
func (v *Vehicle) RegistrationNumber() string { return v.registrationNumber }

// DailyRate returns the rental price per day.
func (v *Vehicle) DailyRate() decimal.Decimal { return v.dailyRate }

// Availability returns the vehicle's current availability status.
func (v *Vehicle) Availability() AvailabilityStatus { return v.availability }

// IsAvailable reports whether the vehicle may be newly booked.
func (v *Vehicle) IsAvailable() bool { return v.availability == StatusAvailable }

// CreatedAt returns the creation timestamp.
func (v *Vehicle) CreatedAt() time.Time { return v.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (v *Vehicle) UpdatedAt() time.Time { return v.updatedAt }

// UpdateDetails changes the vehicle's catalog fields. Existing bookings keep
// their snapshotted price; a rate change only affects future bookings.
func (v *Vehicle) UpdateDetails(name, vehicleType, registrationNumber string, dailyRate decimal.Decimal) error {
	name = strings.TrimSpace(name)
	vehicleType = strings.TrimSpace(vehicleType)
	registrationNumber = strings.TrimSpace(registrationNumber)

	if name == "" {
		return domain.NewValidationError("vehicle name is required")
	}
	if vehicleType == "" {
		return domain.NewValidationError("vehicle type is required")
	}
	if registrationNumber == "" {
		return domain.NewValidationError("registration number is required")
	}
	if dailyRate.LessThanOrEqual(decimal.Zero) {
		return domain.NewValidationError("daily rate must be positive")
	}

	v.name = name
	v.vehicleType = vehicleType
	v.registrationNumber = registrationNumber
	v.dailyRate = dailyRate
	v.updatedAt = time.Now().UTC()
	return nil
}
