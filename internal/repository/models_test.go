package repository

import (
	"os"
	"reflect"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

// The schema exists twice: GORM models drive dev auto-migrate, the SQL in
// migrations/ drives every other environment. These tests pin the two
// together so a column rename in one place fails fast instead of surfacing
// as broken INSERTs in production.

const migrationFile = "../../migrations/000001_init.up.sql"

func parseModel(t *testing.T, model interface{}) *schema.Schema {
	t.Helper()
	s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	return s
}

func migrationTable(t *testing.T, sql, table string) string {
	t.Helper()
	re := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS ` + table + ` \((.*?)\);`)
	m := re.FindStringSubmatch(sql)
	require.NotNil(t, m, "table %s not found in migration", table)
	return m[1]
}

func TestModelsMatchMigrationColumns(t *testing.T) {
	raw, err := os.ReadFile(migrationFile)
	require.NoError(t, err)
	sql := string(raw)

	models := []interface{}{&UserModel{}, &VehicleModel{}, &BookingModel{}}
	for _, model := range models {
		s := parseModel(t, model)
		t.Run(s.Table, func(t *testing.T) {
			body := migrationTable(t, sql, s.Table)
			for _, column := range s.DBNames {
				colRe := regexp.MustCompile(`(?m)^\s*` + column + `\s`)
				assert.True(t, colRe.MatchString(body),
					"model column %q missing from migrated table %q", column, s.Table)
			}
		})
	}
}

func TestVehicleTypeColumnName(t *testing.T) {
	s := parseModel(t, &VehicleModel{})

	field, ok := s.FieldsByName["Type"]
	require.True(t, ok)
	assert.Equal(t, "vehicle_type", field.DBName)
}

func TestActiveBookingIndexDeclaredOnBothPaths(t *testing.T) {
	raw, err := os.ReadFile(migrationFile)
	require.NoError(t, err)
	sql := string(raw)

	// Migrated schema: partial unique index rejects a second active booking.
	assert.Contains(t, sql, "CREATE UNIQUE INDEX IF NOT EXISTS uq_bookings_active_vehicle ON bookings (vehicle_id) WHERE status = 'active'")

	// Auto-migrated schema: same index via the model tag.
	field, ok := reflect.TypeOf(BookingModel{}).FieldByName("VehicleID")
	require.True(t, ok)
	tag := field.Tag.Get("gorm")
	assert.Contains(t, tag, "uq_bookings_active_vehicle")
	assert.Contains(t, tag, "unique")
	assert.Contains(t, tag, "where:status = 'active'")
}
