package ledger_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/ledger"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/models"
)

func TestAmountDue(t *testing.T) {
	tests := []struct {
		name string
		row  models.Schedule
		want float64
	}{
		{"amount_due wins", models.Schedule{AmountDue: 150, Amount: 100}, 150},
		{"falls back to amount", models.Schedule{Amount: 100}, 100},
		{"zero amount_due ignored", models.Schedule{AmountDue: 0, Amount: 75.5}, 75.5},
		{"negative amounts coerce to zero", models.Schedule{AmountDue: -10, Amount: -5}, 0},
		{"empty row", models.Schedule{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.AmountDue(tt.row))
		})
	}
}

func TestAmountPaid(t *testing.T) {
	tests := []struct {
		name string
		row  models.Schedule
		want float64
	}{
		{"explicit paid wins", models.Schedule{AmountDue: 100, AmountPaid: 40, IsPaid: true}, 40},
		{"is_paid implies full", models.Schedule{AmountDue: 100, IsPaid: true}, 100},
		{"unpaid", models.Schedule{AmountDue: 100}, 0},
		{"is_paid with fallback amount", models.Schedule{Amount: 80, IsPaid: true}, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.AmountPaid(tt.row))
		})
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	rows := []models.Schedule{
		{AmountDue: 100, AmountPaid: 40},
		{AmountDue: 100, AmountPaid: 150},
		{AmountDue: -50, AmountPaid: 10},
		{Amount: 99.99, AmountPaid: 99.98},
		{},
		{AmountDue: 0.01, IsPaid: true},
	}
	for _, row := range rows {
		assert.GreaterOrEqual(t, ledger.Remaining(row), 0.0, "row %+v", row)
	}
	assert.Equal(t, 60.0, ledger.Remaining(models.Schedule{AmountDue: 100, AmountPaid: 40}))
	assert.InDelta(t, 0.01, ledger.Remaining(models.Schedule{Amount: 99.99, AmountPaid: 99.98}), 1e-9)
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 2.68, ledger.Round2(2.675))
	assert.Equal(t, -2.68, ledger.Round2(-2.675))
	assert.Equal(t, 0.13, ledger.Round2(0.125))
	assert.Equal(t, 1234.57, ledger.Round2(1234.565))
}

func TestSplitEvenly(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		count int
		want  []float64
	}{
		{"100 into 3, extra cent first", 100, 3, []float64{33.34, 33.33, 33.33}},
		{"exact split", 99.99, 3, []float64{33.33, 33.33, 33.33}},
		{"two remainder cents", 100.01, 3, []float64{33.34, 33.34, 33.33}},
		{"single slice", 250.5, 1, []float64{250.5}},
		{"zero count", 100, 0, nil},
		{"negative total clamps to zero", -5, 2, []float64{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.SplitEvenly(tt.total, tt.count))
		})
	}
}

func TestSplitEvenlyProperties(t *testing.T) {
	totals := []float64{100, 99.99, 0.01, 1234.56, 7, 0.05}
	for _, total := range totals {
		for count := 1; count <= 7; count++ {
			got := ledger.SplitEvenly(total, count)
			assert.Len(t, got, count)

			sum := 0.0
			min, max := math.Inf(1), math.Inf(-1)
			for _, v := range got {
				sum += v
				min = math.Min(min, v)
				max = math.Max(max, v)
			}
			assert.InDelta(t, ledger.Round2(total), sum, 1e-9, "total=%v count=%d", total, count)
			assert.LessOrEqual(t, max-min, 0.01+1e-9, "total=%v count=%d", total, count)
		}
	}
}
