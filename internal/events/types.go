package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
)

// TopicBookingEvents carries every booking lifecycle event.
const TopicBookingEvents = "rental.booking.events"

// Booking event types.
const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	BookingReturned  = "booking.returned"
	BookingsSwept    = "booking.sweep.completed"
)

// BookingCreatedEvent is published when a booking reserves a vehicle.
type BookingCreatedEvent struct {
	BookingID  uuid.UUID       `json:"booking_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	VehicleID  uuid.UUID       `json:"vehicle_id"`
	StartDate  domain.Date     `json:"start_date"`
	EndDate    domain.Date     `json:"end_date"`
	TotalPrice decimal.Decimal `json:"total_price"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// BookingStatusChangedEvent is published on cancel and return transitions.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	VehicleID  uuid.UUID `json:"vehicle_id"`
	Status     string    `json:"status"`
	ChangedBy  uuid.UUID `json:"changed_by,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SweepCompletedEvent is published after an expiration sweep.
type SweepCompletedEvent struct {
	UpdatedCount int         `json:"updated_count"`
	FailedIDs    []uuid.UUID `json:"failed_ids,omitempty"`
	OccurredAt   time.Time   `json:"occurred_at"`
}
