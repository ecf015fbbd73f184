package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	bookingDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/booking"
	vehicleDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/vehicle"
)

// VehicleRequest holds the catalog fields for creating or updating a vehicle.
type VehicleRequest struct {
	Name               string          `json:"vehicle_name" binding:"required"`
	Type               string          `json:"type" binding:"required"`
	RegistrationNumber string          `json:"registration_number" binding:"required"`
	DailyRate          decimal.Decimal `json:"daily_rent_price" binding:"required"`
}

// VehicleDTO is the response representation of a vehicle.
type VehicleDTO struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"vehicle_name"`
	Type               string          `json:"type"`
	RegistrationNumber string          `json:"registration_number"`
	DailyRate          decimal.Decimal `json:"daily_rent_price"`
	AvailabilityStatus string          `json:"availability_status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// VehicleService handles the rental catalog. Vehicle availability is owned by
// the booking lifecycle; this service never writes it.
type VehicleService struct {
	vehicles vehicleDomain.Repository
	bookings bookingDomain.Repository
	logger   *zap.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(vehicles vehicleDomain.Repository, bookings bookingDomain.Repository, logger *zap.Logger) *VehicleService {
	return &VehicleService{vehicles: vehicles, bookings: bookings, logger: logger}
}

// CreateVehicle adds a vehicle to the catalog, available by default.
func (s *VehicleService) CreateVehicle(ctx context.Context, req VehicleRequest) (*VehicleDTO, error) {
	v, err := vehicleDomain.NewVehicle(req.Name, req.Type, req.RegistrationNumber, req.DailyRate)
	if err != nil {
		return nil, err
	}
	if err := s.vehicles.Save(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle added",
		zap.String("vehicle_id", v.ID().String()),
		zap.String("registration", v.RegistrationNumber()),
	)

	result := toVehicleDTO(v)
	return &result, nil
}

// ListVehicles returns the whole catalog.
func (s *VehicleService) ListVehicles(ctx context.Context) ([]VehicleDTO, error) {
	vehicles, err := s.vehicles.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]VehicleDTO, len(vehicles))
	for i, v := range vehicles {
		dtos[i] = toVehicleDTO(v)
	}
	return dtos, nil
}

// GetVehicle retrieves one vehicle.
func (s *VehicleService) GetVehicle(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error) {
	v, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	result := toVehicleDTO(v)
	return &result, nil
}

// UpdateVehicle changes a vehicle's catalog fields. A rate change only
// affects future bookings; existing bookings keep their snapshotted price.
func (s *VehicleService) UpdateVehicle(ctx context.Context, vehicleID uuid.UUID, req VehicleRequest) (*VehicleDTO, error) {
	v, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := v.UpdateDetails(req.Name, req.Type, req.RegistrationNumber, req.DailyRate); err != nil {
		return nil, err
	}
	if err := s.vehicles.Update(ctx, v); err != nil {
		return nil, err
	}

	result := toVehicleDTO(v)
	return &result, nil
}

// DeleteVehicle removes a vehicle from the catalog. Vehicles referenced by an
// active booking cannot be deleted.
func (s *VehicleService) DeleteVehicle(ctx context.Context, vehicleID uuid.UUID) error {
	active, err := s.bookings.CountActiveByVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	if active > 0 {
		return domain.NewConflictError(fmt.Sprintf("cannot delete vehicle with %d active booking(s)", active))
	}

	if err := s.vehicles.Delete(ctx, vehicleID); err != nil {
		return err
	}

	s.logger.Info("vehicle deleted", zap.String("vehicle_id", vehicleID.String()))
	return nil
}

func toVehicleDTO(v *vehicleDomain.Vehicle) VehicleDTO {
	return VehicleDTO{
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
