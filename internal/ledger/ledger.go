package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/models"
)

// All monetary math in this package works on integer cents so that slices
// and totals agree exactly; float64 only appears at the boundaries, rounded
// to 2 decimals half away from zero.

var hundred = decimal.NewFromInt(100)

// Round2 rounds a monetary value to 2 decimals, half away from zero.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func toCents(v float64) int64 {
	return decimal.NewFromFloat(v).Mul(hundred).Round(0).IntPart()
}

func fromCents(c int64) float64 {
	f, _ := decimal.New(c, -2).Float64()
	return f
}

// AmountDue returns the row's obligation: amount_due when positive,
// otherwise the legacy amount column.
func AmountDue(row models.Schedule) float64 {
	if row.AmountDue > 0 {
		return Round2(row.AmountDue)
	}
	if row.Amount > 0 {
		return Round2(row.Amount)
	}
	return 0
}

// AmountPaid returns the explicitly recorded paid amount when positive;
// a row flagged paid without one counts as fully paid.
func AmountPaid(row models.Schedule) float64 {
	if row.AmountPaid > 0 {
		return Round2(row.AmountPaid)
	}
	if row.IsPaid {
		return AmountDue(row)
	}
	return 0
}

// Remaining returns the unpaid portion of a row, never negative.
func Remaining(row models.Schedule) float64 {
	c := toCents(AmountDue(row)) - toCents(AmountPaid(row))
	if c < 0 {
		c = 0
	}
	return fromCents(c)
}

// SplitEvenly splits total into count slices that sum exactly to the
// 2-decimal rounding of total. Remainder cents go to the leading slices,
// so no two slices differ by more than one cent.
func SplitEvenly(total float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	cents := toCents(total)
	if cents < 0 {
		cents = 0
	}
	base := cents / int64(count)
	rem := cents % int64(count)
	out := make([]float64, count)
	for i := range out {
		c := base
		if int64(i) < rem {
			c++
		}
		out[i] = fromCents(c)
	}
	return out
}
