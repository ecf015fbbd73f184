package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	vehicleDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/vehicle"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name               string          `gorm:"not null;size:120"`
	Type               string          `gorm:"column:vehicle_type;not null;size:40"`
	RegistrationNumber string          `gorm:"uniqueIndex;not null;size:40"`
	DailyRate          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AvailabilityStatus string          `gorm:"not null;size:20;index"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VehicleModel) TableName() string {
	return "vehicles"
}

// GormVehicleRepository is the GORM-based implementation of
// vehicle.Repository.
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository.
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID retrieves a vehicle by its unique identifier.
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	return findVehicleByID(r.db.WithContext(ctx), id)
}

// ListAll retrieves all vehicles, newest first.
func (r *GormVehicleRepository) ListAll(ctx context.Context) ([]*vehicleDomain.Vehicle, error) {
	var models []VehicleModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vehicles := make([]*vehicleDomain.Vehicle, len(models))
	for i, m := range models {
		v, err := toDomainVehicle(&m)
		if err != nil {
			return nil, err
		}
		vehicles[i] = v
	}
	return vehicles, nil
}

// Save persists a new vehicle.
func (r *GormVehicleRepository) Save(ctx context.Context, v *vehicleDomain.Vehicle) error {
	if err := r.db.WithContext(ctx).Create(toVehicleModel(v)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("registration number already exists")
		}
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	return nil
}

// Update persists changes to an existing vehicle's catalog fields. The
// availability status is deliberately not written here; only SetAvailability
// touches it.
func (r *GormVehicleRepository) Update(ctx context.Context, v *vehicleDomain.Vehicle) error {
	model := toVehicleModel(v)
	result := r.db.WithContext(ctx).
		Model(&VehicleModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":                model.Name,
			"vehicle_type":        model.Type,
			"registration_number": model.RegistrationNumber,
			"daily_rate":          model.DailyRate,
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("vehicle", model.ID.String())
	}
	return nil
}

// Delete removes a vehicle.
func (r *GormVehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&VehicleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("vehicle", id.String())
	}
	return nil
}

// SetAvailability writes the vehicle's availability status, optionally as a
// compare-and-swap on the previous status.
func (r *GormVehicleRepository) SetAvailability(ctx context.Context, id uuid.UUID, from, to vehicleDomain.AvailabilityStatus) error {
	return setVehicleAvailability(r.db.WithContext(ctx), id, from, to)
}

// findVehicleByID loads a vehicle through the given (possibly transactional)
// DB handle.
func findVehicleByID(db *gorm.DB, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	var model VehicleModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("vehicle", id.String())
		}
		return nil, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return toDomainVehicle(&model)
}

// setVehicleAvailability performs the availability write through the given
// (possibly transactional) DB handle. A conditional write that matches no row
// reports a conflict: either the vehicle is gone or another caller won the
// status race.
func setVehicleAvailability(db *gorm.DB, id uuid.UUID, from, to vehicleDomain.AvailabilityStatus) error {
	query := db.Model(&VehicleModel{}).Where("id = ?", id)
	if from != "" {
		query = query.Where("availability_status = ?", from)
	}

	result := query.Updates(map[string]interface{}{
		"availability_status": string(to),
		"updated_at":          time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to set vehicle availability: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if from != "" {
			return domain.NewConflictError("vehicle is not available for booking")
		}
		return domain.NewNotFoundError("vehicle", id.String())
	}
	return nil
}

// --- Conversion helpers ---

func toVehicleModel(v *vehicleDomain.Vehicle) *VehicleModel {
	return &VehicleModel{
		ID:                 v.ID(),
		Name:               v.Name(),
		Type:               v.Type(),
		RegistrationNumber: v.RegistrationNumber(),
		DailyRate:          v.DailyRate(),
		AvailabilityStatus: string(v.Availability()),
		CreatedAt:          v.CreatedAt(),
		UpdatedAt:          v.UpdatedAt(),
	}
}

func toDomainVehicle(m *VehicleModel) (*vehicleDomain.Vehicle, error) {
	status, err := vehicleDomain.ParseAvailabilityStatus(m.AvailabilityStatus)
	if err != nil {
		return nil, err
	}
	return vehicleDomain.Reconstruct(
		m.ID,
		m.Name,
		m.Type,
		m.RegistrationNumber,
		m.DailyRate,
		status,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
