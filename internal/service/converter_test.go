package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/service"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/testutil"
)

func TestConvert(t *testing.T) {
	rate := decimal.NewFromInt(15000)

	t.Run("localizes closes and classifies moves", func(t *testing.T) {
		bars := testutil.NewBars(testutil.SeriesStart, 100, 110, 99)

		series := service.Convert(bars, rate, service.GramsPerTroyOunce)
		require.Len(t, series, 3)

		want0 := decimal.NewFromInt(100).Div(service.GramsPerTroyOunce).Mul(rate)
		assert.True(t, series[0].LocalizedPrice.Equal(want0), "got %s want %s", series[0].LocalizedPrice, want0)

		assert.False(t, series[0].Change.Valid)
		assert.False(t, series[0].PercentChange.Valid)
		assert.Equal(t, model.StatusNone, series[0].Status)

		assert.True(t, series[1].Change.Decimal.IsPositive())
		assert.Equal(t, model.StatusUp, series[1].Status)
		assert.Equal(t, "10", series[1].PercentChange.Decimal.Round(6).String())

		assert.True(t, series[2].Change.Decimal.IsNegative())
		assert.Equal(t, model.StatusDown, series[2].Status)
		assert.Equal(t, "-10", series[2].PercentChange.Decimal.Round(6).String())
	})

	t.Run("preserves length and order", func(t *testing.T) {
		bars := testutil.NewBars(testutil.SeriesStart, 2300, 2310.5, 2310.5, 2290, 2401.75, 2399)

		series := service.Convert(bars, rate, service.GramsPerTroyOunce)
		require.Len(t, series, len(bars))
		for i := range series {
			assert.True(t, series[i].Date.Equal(bars[i].Date))
			if i > 0 {
				assert.True(t, series[i].Date.After(series[i-1].Date))
			}
		}
	})

	t.Run("status follows the sign of change", func(t *testing.T) {
		series := testutil.NewSeries(5, 5, 7, 6, 6, 8, 1).Build()

		for i, row := range series[1:] {
			require.True(t, row.Change.Valid, "row %d", i+1)
			switch row.Change.Decimal.Sign() {
			case 1:
				assert.Equal(t, model.StatusUp, row.Status)
			case -1:
				assert.Equal(t, model.StatusDown, row.Status)
			default:
				assert.Equal(t, model.StatusFlat, row.Status)
			}
		}
		assert.Equal(t, model.StatusFlat, series[1].Status)
	})

	t.Run("change is the unrounded difference of localized prices", func(t *testing.T) {
		bars := testutil.NewBars(testutil.SeriesStart, 2300.11, 2300.12)

		series := service.Convert(bars, decimal.RequireFromString("16250.37"), service.GramsPerTroyOunce)
		want := series[1].LocalizedPrice.Sub(series[0].LocalizedPrice)
		assert.True(t, series[1].Change.Decimal.Equal(want))
		assert.False(t, series[1].Change.Decimal.Equal(series[1].Change.Decimal.Round(2)),
			"derivation must not round")
	})

	t.Run("zero prior price is indeterminate", func(t *testing.T) {
		bars := testutil.NewBars(testutil.SeriesStart, 0, 10, 11)

		series := service.Convert(bars, decimal.NewFromInt(1), decimal.NewFromInt(1))
		require.Len(t, series, 3)

		assert.True(t, series[1].Change.Valid)
		assert.Equal(t, "10", series[1].Change.Decimal.String())
		assert.False(t, series[1].PercentChange.Valid)
		assert.Equal(t, model.StatusIndeterminate, series[1].Status)

		assert.True(t, series[2].PercentChange.Valid)
		assert.Equal(t, model.StatusUp, series[2].Status)
	})

	t.Run("empty and single-row input", func(t *testing.T) {
		assert.Empty(t, service.Convert(nil, rate, service.GramsPerTroyOunce))

		series := service.Convert(testutil.NewBars(testutil.SeriesStart, 2300), rate, service.GramsPerTroyOunce)
		require.Len(t, series, 1)
		assert.False(t, series[0].Change.Valid)
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		change string
		want   model.Status
	}{
		{name: "positive", change: "0.01", want: model.StatusUp},
		{name: "negative", change: "-0.01", want: model.StatusDown},
		{name: "zero", change: "0", want: model.StatusFlat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.StatusOf(decimal.RequireFromString(tt.change)))
		})
	}
}

func TestPricePerGram(t *testing.T) {
	perGram := service.PricePerGram(service.GramsPerTroyOunce, service.GramsPerTroyOunce)
	assert.Equal(t, "1", perGram.String())

	local := service.LocalizePrice(decimal.RequireFromString("31.1034768"), decimal.NewFromInt(16000), service.GramsPerTroyOunce)
	assert.Equal(t, "16000", local.String())
}
