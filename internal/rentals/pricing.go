package rentals

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/borrowhub/borrowhub-backend/pkg/db/models"
	pkgerrors "github.com/borrowhub/borrowhub-backend/pkg/errors"
)

// ComputePricing builds the immutable pricing snapshot for a rental request.
// Pure: no clock, no store access. The snapshot is computed exactly once at
// request time and never recomputed afterwards.
func ComputePricing(item *models.Item, start, end time.Time, feePercent int) (models.RentalPricing, error) {
	if item == nil {
		return models.RentalPricing{}, pkgerrors.New(pkgerrors.CodeInternal, "item is required")
	}
	days := RentalDays(start, end)
	if days <= 0 {
		return models.RentalPricing{}, pkgerrors.New(pkgerrors.CodeValidation, "rental must span at least one day")
	}
	if item.DailyRateCents <= 0 {
		return models.RentalPricing{}, pkgerrors.New(pkgerrors.CodeValidation, "item has no daily rate")
	}
	if feePercent < 0 || feePercent > 100 {
		return models.RentalPricing{}, pkgerrors.New(pkgerrors.CodeInternal, "platform fee percent out of range")
	}

	subtotal := item.DailyRateCents * int64(days)

	// Fee percentage math on decimals, rounded half up to whole cents.
	fee := decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromInt(int64(feePercent))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()

	currency := item.Currency
	if currency == "" {
		currency = "USD"
	}

	return models.RentalPricing{
		DailyRateCents:       item.DailyRateCents,
		TotalDays:            days,
		SubtotalCents:        subtotal,
		PlatformFeeCents:     fee,
		SecurityDepositCents: item.SecurityDepositCents,
		DeliveryFeeCents:     item.DeliveryFeeCents,
		TotalCents:           subtotal + fee + item.SecurityDepositCents + item.DeliveryFeeCents,
		Currency:             currency,
	}, nil
}

// RentalDays counts billable days over the half-open range [start, end).
// Partial days round up so a 36-hour rental bills two days.
func RentalDays(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	hours := end.Sub(start).Hours()
	return int(math.Ceil(hours / 24))
}
