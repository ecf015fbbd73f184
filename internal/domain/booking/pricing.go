package booking

import (
	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	"github.com/shopspring/decimal"
)

// RentalDays returns the number of billable days between two calendar dates.
// A period of at least one day is always billed.
func RentalDays(start, end domain.Date) int {
	days := start.DaysUntil(end)
	if days < 1 {
		return 1
	}
	return days
}

// Quote computes the total price for renting at the given daily rate over
// [start, end). The result is snapshotted onto the booking at creation and
// never recomputed.
func Quote(dailyRate decimal.Decimal, start, end domain.Date) (decimal.Decimal, error) {
	if dailyRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.NewValidationError("daily rate must be positive")
	}
	if !end.After(start) {
		return decimal.Zero, domain.NewValidationError("end date must be after start date")
	}
	days := decimal.NewFromInt(int64(RentalDays(start, end)))
	return dailyRate.Mul(days), nil
}
