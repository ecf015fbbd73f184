//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abnahid/Vehicle-Rental-System/internal/application"
	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	userDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/user"
)

func TestBookingLifecycleEndToEnd(t *testing.T) {
	infra := setupPostgres(t)
	defer infra.Cleanup()
	stack := setupRentalStack(t, infra.DB)
	ctx := context.Background()

	vh, err := stack.Vehicles.CreateVehicle(ctx, application.VehicleRequest{
		Name:               "Toyota HiAce",
		Type:               "van",
		RegistrationNumber: "DHA-1234",
		DailyRate:          decimal.RequireFromString("48.00"),
	})
	require.NoError(t, err)

	customer := createActor(t, infra.DB, "Alice", "alice@example.com", userDomain.RoleCustomer)
	admin := createActor(t, infra.DB, "Root", "root@example.com", userDomain.RoleAdmin)

	start := stack.Clock.Today().AddDays(1)
	booking, err := stack.Bookings.CreateBooking(ctx, customer, application.CreateBookingRequest{
		VehicleID: vh.ID,
		StartDate: start.String(),
		EndDate:   start.AddDays(5).String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "active", booking.Status)
	assert.True(t, booking.TotalPrice.Equal(decimal.RequireFromString("240.00")), "got %s", booking.TotalPrice)

	// The vehicle is now held.
	held, err := stack.Vehicles.GetVehicle(ctx, vh.ID)
	require.NoError(t, err)
	assert.Equal(t, "booked", held.AvailabilityStatus)

	_, err = stack.Bookings.CreateBooking(ctx, customer, application.CreateBookingRequest{
		VehicleID: vh.ID,
		StartDate: start.String(),
		EndDate:   start.AddDays(2).String(),
	})
	assert.True(t, domain.IsCode(err, domain.CodeConflict), "got %v", err)

	// Admin marks it returned; the vehicle comes back.
	returned, err := stack.Bookings.UpdateBookingStatus(ctx, admin, booking.ID, application.UpdateBookingStatusRequest{Status: "returned"})
	require.NoError(t, err)
	assert.Equal(t, "returned", returned.Status)

	released, err := stack.Vehicles.GetVehicle(ctx, vh.ID)
	require.NoError(t, err)
	assert.Equal(t, "available", released.AvailabilityStatus)
}

func TestConcurrentReservationExactlyOneWins(t *testing.T) {
	infra := setupPostgres(t)
	defer infra.Cleanup()
	stack := setupRentalStack(t, infra.DB)
	ctx := context.Background()

	vh, err := stack.Vehicles.CreateVehicle(ctx, application.VehicleRequest{
		Name:               "Honda CB350",
		Type:               "bike",
		RegistrationNumber: "DHA-5678",
		DailyRate:          decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	customer := createActor(t, infra.DB, "Alice", "alice@example.com", userDomain.RoleCustomer)

	start := stack.Clock.Today().AddDays(1)
	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := stack.Bookings.CreateBooking(ctx, customer, application.CreateBookingRequest{
				VehicleID: vh.ID,
				StartDate: start.String(),
				EndDate:   start.AddDays(3).String(),
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else {
			require.True(t, domain.IsCode(err, domain.CodeConflict), "got %v", err)
		}
	}
	assert.Equal(t, 1, wins)

	admin := createActor(t, infra.DB, "Root", "root@example.com", userDomain.RoleAdmin)
	all, err := stack.Bookings.ListBookings(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSweepClosesExpiredBookings(t *testing.T) {
	infra := setupPostgres(t)
	defer infra.Cleanup()
	stack := setupRentalStack(t, infra.DB)
	ctx := context.Background()

	vh, err := stack.Vehicles.CreateVehicle(ctx, application.VehicleRequest{
		Name:               "Toyota HiAce",
		Type:               "van",
		RegistrationNumber: "DHA-9012",
		DailyRate:          decimal.NewFromInt(40),
	})
	require.NoError(t, err)

	customer := createActor(t, infra.DB, "Alice", "alice@example.com", userDomain.RoleCustomer)
	start := stack.Clock.Today().AddDays(1)
	booking, err := stack.Bookings.CreateBooking(ctx, customer, application.CreateBookingRequest{
		VehicleID: vh.ID,
		StartDate: start.String(),
		EndDate:   start.AddDays(4).String(),
	})
	require.NoError(t, err)

	// Before the end date the sweep finds nothing.
	result, err := stack.Bookings.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.UpdatedCount)

	// Move past the rental period.
	stack.Clock.Set(start.AddDays(10))

	result, err = stack.Bookings.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.UpdatedCount)
	assert.Equal(t, booking.ID, result.Bookings[0].ID)
	assert.Equal(t, "returned", result.Bookings[0].Status)

	released, err := stack.Vehicles.GetVehicle(ctx, vh.ID)
	require.NoError(t, err)
	assert.Equal(t, "available", released.AvailabilityStatus)

	// Re-running immediately is a no-op.
	result, err = stack.Bookings.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.UpdatedCount)
}
