//go:build integration

package main_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/abnahid/Vehicle-Rental-System/internal/application"
	"github.com/abnahid/Vehicle-Rental-System/internal/auth"
	"github.com/abnahid/Vehicle-Rental-System/internal/database"
	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	userDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/user"
	"github.com/abnahid/Vehicle-Rental-System/internal/events"
	"github.com/abnahid/Vehicle-Rental-System/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB      *gorm.DB
	Cleanup func()
}

// rentalStack holds wired-up services backed by the test database.
type rentalStack struct {
	Bookings *application.BookingService
	Vehicles *application.VehicleService
	Users    *application.UserService
	Clock    *manualClock
}

// manualClock lets tests move "today" around the bookings they create.
type manualClock struct {
	today domain.Date
}

func (c *manualClock) Today() domain.Date { return c.today }

func (c *manualClock) Set(d domain.Date) { c.today = d }

// setupPostgres starts a PostgreSQL testcontainer and returns a connected
// GORM DB with the schema migrated.
func setupPostgres(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rental",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_rental sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	// Apply the real SQL migrations rather than auto-migrating the models, so
	// these tests run against the exact schema every non-dev deployment gets.
	databaseURL := fmt.Sprintf("postgres://test:test@%s:%s/test_rental?sslmode=disable", pgHost, pgPort.Port())
	require.NoError(t, database.RunMigrations(databaseURL, "migrations", zap.NewNop()))

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{DB: db, Cleanup: cleanup}
}

// createActor persists a user row and returns the matching actor, so bookings
// created in tests satisfy the customer foreign key.
func createActor(t *testing.T, db *gorm.DB, name, email string, role userDomain.Role) auth.Actor {
	t.Helper()

	u, err := userDomain.NewUser(name, email, "integration-test-hash", "", role)
	require.NoError(t, err)
	require.NoError(t, repository.NewGormUserRepository(db).Save(context.Background(), u))
	return auth.Actor{ID: u.ID(), Role: role}
}

// setupRentalStack wires the full service stack against the test database.
// Events go to a no-op publisher; the broker is not under test here.
func setupRentalStack(t *testing.T, db *gorm.DB) *rentalStack {
	t.Helper()
	logger := zap.NewNop()

	userRepo := repository.NewGormUserRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	uow := repository.NewGormUnitOfWork(db)

	clock := &manualClock{today: domain.DateOf(time.Now())}

	return &rentalStack{
		Bookings: application.NewBookingService(bookingRepo, vehicleRepo, uow, clock, events.NopPublisher{}, logger),
		Vehicles: application.NewVehicleService(vehicleRepo, bookingRepo, logger),
		Users:    application.NewUserService(userRepo, bookingRepo, logger),
		Clock:    clock,
	}
}
