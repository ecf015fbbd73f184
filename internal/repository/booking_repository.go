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
	bookingDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID       `gorm:"type:uuid;index;not null"`
	VehicleID  uuid.UUID       `gorm:"type:uuid;not null;index;index:uq_bookings_active_vehicle,unique,where:status = 'active'"`
	StartDate  domain.Date     `gorm:"type:date;not null"`
	EndDate    domain.Date     `gorm:"type:date;not null;index"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status     string          `gorm:"not null;size:20;index"`
	Version    int64           `gorm:"not null;default:1"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of
// booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCustomerID retrieves a customer's bookings, newest first.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find customer bookings: %w", err)
	}
	return toDomainBookings(models)
}

// ListAll retrieves all bookings, newest first (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindExpiredActive retrieves active bookings whose rental period ended
// strictly before today.
func (r *GormBookingRepository) FindExpiredActive(ctx context.Context, today domain.Date) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND end_date < ?", string(bookingDomain.StatusActive), today).
		Order("end_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired bookings: %w", err)
	}
	return toDomainBookings(models)
}

// CountActiveByCustomer returns how many active bookings a customer holds.
func (r *GormBookingRepository) CountActiveByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("customer_id = ? AND status = ?", customerID, string(bookingDomain.StatusActive)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active customer bookings: %w", err)
	}
	return count, nil
}

// CountActiveByVehicle returns how many active bookings reference a vehicle.
func (r *GormBookingRepository) CountActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, string(bookingDomain.StatusActive)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active vehicle bookings: %w", err)
	}
	return count, nil
}

// updateBookingStatus persists the booking's status with an optimistic
// version check through the given (possibly transactional) DB handle.
func updateBookingStatus(db *gorm.DB, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called after the transition, so the row must still
	// carry the previous version.
	expectedVersion := bk.Version() - 1
	result := db.Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:         bk.ID(),
		CustomerID: bk.CustomerID(),
		VehicleID:  bk.VehicleID(),
		StartDate:  bk.StartDate(),
		EndDate:    bk.EndDate(),
		TotalPrice: bk.TotalPrice(),
		Status:     string(bk.Status()),
		Version:    bk.Version(),
		CreatedAt:  bk.CreatedAt(),
		UpdatedAt:  bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return bookingDomain.Reconstruct(
		m.ID,
		m.CustomerID,
		m.VehicleID,
		m.StartDate,
		m.EndDate,
		m.TotalPrice,
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
