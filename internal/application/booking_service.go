package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/abnahid/Vehicle-Rental-System/internal/auth"
	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	bookingDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/booking"
	vehicleDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/vehicle"
	"github.com/abnahid/Vehicle-Rental-System/internal/events"
)

// CreateBookingRequest holds the data needed to create a new booking. Dates
// stay raw strings so parse failures surface as validation errors before
// anything is read or written.
type CreateBookingRequest struct {
	VehicleID uuid.UUID `json:"vehicle_id" binding:"required"`
	StartDate string    `json:"start_date" binding:"required"`
	EndDate   string    `json:"end_date" binding:"required"`
}

// UpdateBookingStatusRequest holds the requested target status.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// VehicleSnapshotDTO is the read-only vehicle view attached to booking
// responses for display. It never feeds back into pricing.
type VehicleSnapshotDTO struct {
	Name      string          `json:"vehicle_name"`
	Type      string          `json:"type,omitempty"`
	DailyRate decimal.Decimal `json:"daily_rent_price"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID         uuid.UUID           `json:"id"`
	CustomerID uuid.UUID           `json:"customer_id"`
	VehicleID  uuid.UUID           `json:"vehicle_id"`
	StartDate  domain.Date         `json:"rent_start_date"`
	EndDate    domain.Date         `json:"rent_end_date"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	Status     string              `json:"status"`
	Vehicle    *VehicleSnapshotDTO `json:"vehicle,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// SweepResultDTO is the outcome of one expiration sweep.
type SweepResultDTO struct {
	UpdatedCount int          `json:"updated_count"`
	Bookings     []BookingDTO `json:"bookings"`
	FailedIDs    []uuid.UUID  `json:"failed_ids"`
}

// BookingService orchestrates the booking lifecycle: creation with atomic
// vehicle reservation, role-gated status transitions, and the expiration
// sweep.
type BookingService struct {
	bookings  bookingDomain.Repository
	vehicles  vehicleDomain.Repository
	uow       bookingDomain.UnitOfWork
	clock     domain.Clock
	publisher events.Publisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.Repository,
	vehicles vehicleDomain.Repository,
	uow bookingDomain.UnitOfWork,
	clock domain.Clock,
	publisher events.Publisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		vehicles:  vehicles,
		uow:       uow,
		clock:     clock,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBooking validates the rental period, prices it against the vehicle's
// current daily rate, and atomically inserts the booking while flipping the
// vehicle to booked. The computed price is a permanent snapshot.
func (s *BookingService) CreateBooking(ctx context.Context, actor auth.Actor, req CreateBookingRequest) (*BookingDTO, error) {
	startDate, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	endDate, err := domain.ParseDate(req.EndDate)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if !endDate.After(startDate) {
		return nil, domain.NewValidationError("end date must be after start date")
	}

	vh, err := s.vehicles.FindByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !vh.IsAvailable() {
		return nil, domain.NewConflictError("vehicle is not available for booking")
	}

	bk, err := bookingDomain.NewBooking(actor.ID, vh.ID(), startDate, endDate, vh.DailyRate())
	if err != nil {
		return nil, err
	}

	// The insert and the available->booked flip commit or roll back together;
	// a concurrent reservation losing the compare-and-swap gets a conflict.
	if err := s.uow.CreateWithReservation(ctx, bk); err != nil {
		return nil, err
	}

	s.publishBookingCreated(ctx, bk)

	result := toBookingDTO(bk)
	result.Vehicle = &VehicleSnapshotDTO{
		Name:      vh.Name(),
		Type:      vh.Type(),
		DailyRate: vh.DailyRate(),
	}
	return &result, nil
}

// ListBookings returns bookings scoped by role: admins see all, customers
// their own.
func (s *BookingService) ListBookings(ctx context.Context, actor auth.Actor) ([]BookingDTO, error) {
	var (
		list []*bookingDomain.Booking
		err  error
	)
	if actor.IsAdmin() {
		list, err = s.bookings.ListAll(ctx)
	} else {
		list, err = s.bookings.FindByCustomerID(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(list))
	for i, bk := range list {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, nil
}

// GetBooking retrieves a single booking; customers may only view their own.
func (s *BookingService) GetBooking(ctx context.Context, actor auth.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(actor, bk.CustomerID()); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	if vh, err := s.vehicles.FindByID(ctx, bk.VehicleID()); err == nil {
		result.Vehicle = &VehicleSnapshotDTO{
			Name:      vh.Name(),
			Type:      vh.Type(),
			DailyRate: vh.DailyRate(),
		}
	}
	return &result, nil
}

// UpdateBookingStatus applies a role-gated status transition and releases the
// booking's vehicle in the same atomic unit. Customers may cancel their own
// active bookings; only admins may mark a booking returned.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, actor auth.Actor, bookingID uuid.UUID, req UpdateBookingStatusRequest) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	target, err := bookingDomain.ParseStatus(req.Status)
	if err != nil {
		return nil, domain.NewInvalidStateError(string(bk.Status()), req.Status)
	}
	if !bk.Status().CanTransitionTo(target) {
		return nil, domain.NewInvalidStateError(string(bk.Status()), string(target))
	}

	// Permission is checked only for an otherwise-valid transition.
	switch target {
	case bookingDomain.StatusCancelled:
		if err := auth.Authorize(actor, bk.CustomerID()); err != nil {
			return nil, err
		}
		err = bk.Cancel()
	case bookingDomain.StatusReturned:
		if err := auth.RequireAdmin(actor); err != nil {
			return nil, err
		}
		err = bk.Return()
	}
	if err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.uow.TransitionWithRelease(ctx, bk); err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, bk, actor.ID)

	result := toBookingDTO(bk)
	return &result, nil
}

// SweepExpired closes out every active booking whose rental period ended
// before today, releasing each vehicle. Every booking/vehicle pair is its own
// atomic unit: a failure on one never blocks the others. Re-running right
// after a successful sweep finds nothing and returns a zero count.
func (s *BookingService) SweepExpired(ctx context.Context) (*SweepResultDTO, error) {
	today := s.clock.Today()
	expired, err := s.bookings.FindExpiredActive(ctx, today)
	if err != nil {
		return nil, err
	}

	result := &SweepResultDTO{
		Bookings:  make([]BookingDTO, 0, len(expired)),
		FailedIDs: make([]uuid.UUID, 0),
	}

	for _, bk := range expired {
		if err := bk.Return(); err != nil {
			s.logger.Warn("sweep skipped booking in unexpected state",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
			result.FailedIDs = append(result.FailedIDs, bk.ID())
			continue
		}

		bk.IncrementVersion()
		if err := s.uow.TransitionWithRelease(ctx, bk); err != nil {
			s.logger.Error("sweep failed to close booking",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
			result.FailedIDs = append(result.FailedIDs, bk.ID())
			continue
		}

		result.Bookings = append(result.Bookings, toBookingDTO(bk))
	}
	result.UpdatedCount = len(result.Bookings)

	if result.UpdatedCount > 0 || len(result.FailedIDs) > 0 {
		s.publishSweepCompleted(ctx, result)
	}
	return result, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:         bk.ID(),
		CustomerID: bk.CustomerID(),
		VehicleID:  bk.VehicleID(),
		StartDate:  bk.StartDate(),
		EndDate:    bk.EndDate(),
		TotalPrice: bk.TotalPrice(),
		Status:     string(bk.Status()),
		CreatedAt:  bk.CreatedAt(),
		UpdatedAt:  bk.UpdatedAt(),
	}
}

func (s *BookingService) publishBookingCreated(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingCreatedEvent{
		BookingID:  bk.ID(),
		CustomerID: bk.CustomerID(),
		VehicleID:  bk.VehicleID(),
		StartDate:  bk.StartDate(),
		EndDate:    bk.EndDate(),
		TotalPrice: bk.TotalPrice(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCreated, evt)
}

func (s *BookingService) publishStatusChanged(ctx context.Context, bk *bookingDomain.Booking, changedBy uuid.UUID) {
	eventType := events.BookingCancelled
	if bk.Status() == bookingDomain.StatusReturned {
		eventType = events.BookingReturned
	}
	evt := events.BookingStatusChangedEvent{
		BookingID:  bk.ID(),
		CustomerID: bk.CustomerID(),
		VehicleID:  bk.VehicleID(),
		Status:     string(bk.Status()),
		ChangedBy:  changedBy,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, eventType, evt)
}

func (s *BookingService) publishSweepCompleted(ctx context.Context, result *SweepResultDTO) {
	evt := events.SweepCompletedEvent{
		UpdatedCount: result.UpdatedCount,
		FailedIDs:    result.FailedIDs,
		OccurredAt:   time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingsSwept, evt)
}

func (s *BookingService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	cloudEvent, err := events.NewCloudEvent("vehicle-rental", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.publisher.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
