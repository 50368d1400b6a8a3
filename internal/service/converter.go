package service

import (
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
)

// GramsPerTroyOunce is the number of grams in one troy ounce.
var GramsPerTroyOunce = decimal.RequireFromString("31.1034768")

var hundred = decimal.NewFromInt(100)

// Convert derives the localized per-gram series from raw closes quoted per
// troy ounce in the source currency.
//
// For every row i:
//
//	localized[i] = close[i] / gramsPerOunce * rate
//	change[i]    = localized[i] - localized[i-1]          (null for i = 0)
//	percent[i]   = change[i] / localized[i-1] * 100        (null for i = 0)
//
// A zero prior price leaves percent null and marks the row Indeterminate.
// No rounding is applied here; callers round at presentation time.
// bars must already be ascending by date with unique dates.
func Convert(bars []model.PriceBar, rate, gramsPerOunce decimal.Decimal) model.Series {
	series := make(model.Series, len(bars))
	for i, bar := range bars {
		row := model.DerivedRow{
			Date:           bar.Date,
			LocalizedPrice: LocalizePrice(bar.Close, rate, gramsPerOunce),
		}
		if i > 0 {
			prev := series[i-1].LocalizedPrice
			change := row.LocalizedPrice.Sub(prev)
			row.Change = decimal.NewNullDecimal(change)
			if prev.IsZero() {
				row.Status = model.StatusIndeterminate
			} else {
				row.PercentChange = decimal.NewNullDecimal(change.Div(prev).Mul(hundred))
				row.Status = StatusOf(change)
			}
		}
		series[i] = row
	}
	return series
}

// LocalizePrice converts a per-ounce price into a per-gram price in the target currency.
func LocalizePrice(perOunce, rate, gramsPerOunce decimal.Decimal) decimal.Decimal {
	return PricePerGram(perOunce, gramsPerOunce).Mul(rate)
}

// PricePerGram converts a per-ounce price into a per-gram price in the same currency.
func PricePerGram(perOunce, gramsPerOunce decimal.Decimal) decimal.Decimal {
	return perOunce.Div(gramsPerOunce)
}

// StatusOf classifies a day-over-day change.
func StatusOf(change decimal.Decimal) model.Status {
	switch change.Sign() {
	case 1:
		return model.StatusUp
	case -1:
		return model.StatusDown
	default:
		return model.StatusFlat
	}
}
