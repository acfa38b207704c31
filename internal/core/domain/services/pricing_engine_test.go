package services_test

import (
	"testing"
	"time"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/core/domain/services"
	"rental/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), append([]any{"expected %s, got %s", expected, actual}, msgAndArgs...)...)
}

func defaultEngine(t *testing.T) services.PricingEngine {
	t.Helper()
	engine, err := services.NewPricingEngine(services.DefaultPricingPolicy())
	require.NoError(t, err)
	return engine
}

func TestPricingEngine_Adjust_Scenarios(t *testing.T) {
	engine := defaultEngine(t)

	t.Run("scenario A: early return adjusted for usage", func(t *testing.T) {
		adj, err := engine.Adjust(services.AdjustmentInput{
			OriginalAmount: dec("10000"), PlannedDays: 5, ActualDays: 4, IsEarlyReturn: true,
		})

		require.NoError(t, err)
		assertDecimal(t, "2000", adj.DailyRate)
		assertDecimal(t, "8000", adj.AdjustedAmount)
		assertDecimal(t, "2000", adj.RefundAmount)
		assertDecimal(t, "0", adj.PenaltyAmount)
		assert.Contains(t, adj.Reason, "adjusted for usage")
	})

	t.Run("scenario B: late return with penalty", func(t *testing.T) {
		adj, err := engine.Adjust(services.AdjustmentInput{
			OriginalAmount: dec("10000"), PlannedDays: 5, ActualDays: 7, IsLateReturn: true, ExtraDays: 1,
		})

		require.NoError(t, err)
		assertDecimal(t, "13000", adj.AdjustedAmount)
		assertDecimal(t, "3000", adj.PenaltyAmount)
		assertDecimal(t, "0", adj.RefundAmount)
		assert.Contains(t, adj.Reason, "Late return")
	})

	t.Run("on time keeps amount", func(t *testing.T) {
		adj, err := engine.Adjust(services.AdjustmentInput{
			OriginalAmount: dec("10000"), PlannedDays: 5, ActualDays: 5,
		})

		require.NoError(t, err)
		assertDecimal(t, "10000", adj.AdjustedAmount)
		assert.Equal(t, services.ReasonOnTime, adj.Reason)
	})

	t.Run("early return hits minimum charge", func(t *testing.T) {
		adj, err := engine.Adjust(services.AdjustmentInput{
			OriginalAmount: dec("10000"), PlannedDays: 5, ActualDays: 1, IsEarlyReturn: true,
		})

		require.NoError(t, err)
		assertDecimal(t, "5000", adj.AdjustedAmount)
		assertDecimal(t, "5000", adj.RefundAmount)
		assert.Equal(t, "Early return: minimum 50% charge applied", adj.Reason)
	})
}

func TestPricingEngine_Adjust_Rounding(t *testing.T) {
	engine := defaultEngine(t)

	adj, err := engine.Adjust(services.AdjustmentInput{
		OriginalAmount: dec("10000"), PlannedDays: 6, ActualDays: 4, IsEarlyReturn: true,
	})

	require.NoError(t, err)
	assertDecimal(t, "1666.67", adj.DailyRate)
	assertDecimal(t, "6666.67", adj.AdjustedAmount)
	assertDecimal(t, "3333.33", adj.RefundAmount)
	assertDecimal(t, "10000", adj.AdjustedAmount.Add(adj.RefundAmount))

	late, err := engine.Adjust(services.AdjustmentInput{
		OriginalAmount: dec("100"), PlannedDays: 3, ActualDays: 6, IsLateReturn: true, ExtraDays: 2,
	})

	require.NoError(t, err)
	assertDecimal(t, "100", late.PenaltyAmount)
	assertDecimal(t, "200", late.AdjustedAmount)
}

func TestPricingEngine_Adjust_Properties(t *testing.T) {
	engine := defaultEngine(t)
	amounts := []string{"0", "0.01", "99.99", "1000", "10000", "12345.67"}

	for _, amount := range amounts {
		original := dec(amount)

		for planned := 1; planned <= 10; planned++ {
			for actual := 0; actual <= planned; actual++ {
				adj, err := engine.Adjust(services.AdjustmentInput{
					OriginalAmount: original, PlannedDays: planned, ActualDays: actual, IsEarlyReturn: true,
				})
				require.NoError(t, err)

				assert.False(t, adj.AdjustedAmount.IsNegative())
				assert.True(t, adj.AdjustedAmount.LessThanOrEqual(original), "%s/%d/%d", amount, planned, actual)
				assert.True(t, adj.AdjustedAmount.GreaterThanOrEqual(kernel.RoundMoney(original.Mul(dec("0.5")))))
				assert.True(t, adj.AdjustedAmount.Add(adj.RefundAmount).Equal(kernel.RoundMoney(original)))
			}

			for extra := 1; extra <= 5; extra++ {
				adj, err := engine.Adjust(services.AdjustmentInput{
					OriginalAmount: original, PlannedDays: planned, ActualDays: planned + extra + 1,
					IsLateReturn: true, ExtraDays: extra,
				})
				require.NoError(t, err)

				assert.True(t, adj.AdjustedAmount.GreaterThanOrEqual(original))
				assert.True(t, adj.AdjustedAmount.Sub(adj.PenaltyAmount).Equal(kernel.RoundMoney(original)))
			}
		}
	}
}

func TestPricingEngine_Adjust_InvalidInput(t *testing.T) {
	engine := defaultEngine(t)

	testCases := []struct {
		name     string
		in       services.AdjustmentInput
		expected error
	}{
		{"negative amount", services.AdjustmentInput{OriginalAmount: dec("-1"), PlannedDays: 1}, errs.ErrInvalidAmount},
		{"zero planned days", services.AdjustmentInput{OriginalAmount: dec("1"), PlannedDays: 0}, errs.ErrValueIsOutOfRange},
		{"negative actual days", services.AdjustmentInput{OriginalAmount: dec("1"), PlannedDays: 1, ActualDays: -1}, errs.ErrValueIsOutOfRange},
		{"late without extra days", services.AdjustmentInput{OriginalAmount: dec("1"), PlannedDays: 1, IsLateReturn: true}, errs.ErrValueIsOutOfRange},
		{"early and late", services.AdjustmentInput{
			OriginalAmount: dec("1"), PlannedDays: 2, ActualDays: 1, IsEarlyReturn: true, IsLateReturn: true, ExtraDays: 1,
		}, errs.ErrValueIsInvalid},
		{"early with more days than planned", services.AdjustmentInput{
			OriginalAmount: dec("1"), PlannedDays: 2, ActualDays: 3, IsEarlyReturn: true,
		}, errs.ErrValueIsOutOfRange},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Adjust(tc.in)

			require.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestPricingPolicy(t *testing.T) {
	t.Run("custom policy changes reason and penalty", func(t *testing.T) {
		engine, err := services.NewPricingEngine(services.PricingPolicy{
			MinChargeRatio: dec("0.25"), PenaltyMultiplier: dec("2"),
		})
		require.NoError(t, err)

		early, err := engine.Adjust(services.AdjustmentInput{
			OriginalAmount: dec("1000"), PlannedDays: 10, ActualDays: 1, IsEarlyReturn: true,
		})
		require.NoError(t, err)
		assertDecimal(t, "250", early.AdjustedAmount)
		assert.Equal(t, "Early return: minimum 25% charge applied", early.Reason)

		late, err := engine.Adjust(services.AdjustmentInput{
			OriginalAmount: dec("1000"), PlannedDays: 10, ActualDays: 12, IsLateReturn: true, ExtraDays: 1,
		})
		require.NoError(t, err)
		assertDecimal(t, "200", late.PenaltyAmount)
	})

	t.Run("invalid policy is rejected", func(t *testing.T) {
		_, err := services.NewPricingEngine(services.PricingPolicy{
			MinChargeRatio: dec("1.5"), PenaltyMultiplier: dec("-1"),
		})

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		require.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestPricingEngine_ComputeOrderTotals(t *testing.T) {
	engine := defaultEngine(t)
	start := kernel.NewDateYMD(2024, time.January, 1)
	end := kernel.NewDateYMD(2024, time.January, 3)

	item, err := order.NewItem("speaker", 2, dec("1000"), nil)
	require.NoError(t, err)

	t.Run("scenario D", func(t *testing.T) {
		totals, err := engine.ComputeOrderTotals([]order.Item{item}, start, end, dec("10"), dec("16"), nil)

		require.NoError(t, err)
		assert.Equal(t, 3, totals.ChargeableDays)
		assertDecimal(t, "6000", totals.Subtotal)
		assertDecimal(t, "600", totals.DiscountAmount)
		assertDecimal(t, "864", totals.TaxAmount)
		assertDecimal(t, "6264", totals.TotalAmount)
	})

	t.Run("same-day rental bills one day", func(t *testing.T) {
		totals, err := engine.ComputeOrderTotals([]order.Item{item}, start, start, decimal.Zero, decimal.Zero, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, totals.ChargeableDays)
		assertDecimal(t, "2000", totals.TotalAmount)
	})

	t.Run("override and per-item days", func(t *testing.T) {
		oneDay := 1
		setup, err := order.NewItem("stage", 1, dec("500"), &oneDay)
		require.NoError(t, err)
		override := 2

		totals, err := engine.ComputeOrderTotals([]order.Item{item, setup}, start, end, decimal.Zero, decimal.Zero, &override)

		require.NoError(t, err)
		assert.Equal(t, 2, totals.ChargeableDays)
		assertDecimal(t, "4500", totals.Subtotal)
	})

	t.Run("components are rounded and add up", func(t *testing.T) {
		cheap, err := order.NewItem("cable", 3, dec("0.333"), nil)
		require.NoError(t, err)

		totals, err := engine.ComputeOrderTotals([]order.Item{cheap}, start, start, dec("12.5"), dec("7.5"), nil)

		require.NoError(t, err)
		assertDecimal(t, "1", totals.Subtotal)
		assertDecimal(t, "0.12", totals.DiscountAmount)
		assertDecimal(t, "0.07", totals.TaxAmount)
		assert.True(t, totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.TaxAmount).Equal(totals.TotalAmount))
	})

	t.Run("invalid input", func(t *testing.T) {
		zero := 0
		_, err := engine.ComputeOrderTotals([]order.Item{item}, start, end, decimal.Zero, decimal.Zero, &zero)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

		_, err = engine.ComputeOrderTotals([]order.Item{item}, end, start, decimal.Zero, decimal.Zero, nil)
		require.ErrorIs(t, err, errs.ErrInvalidDate)

		_, err = engine.ComputeOrderTotals([]order.Item{item}, start, end, dec("101"), dec("-1"), nil)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		require.ErrorIs(t, err, errs.ErrInvalidAmount)

		_, err = engine.ComputeOrderTotals(nil, start, end, decimal.Zero, decimal.Zero, nil)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
