package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/service"
)

// SeriesStart is the first date produced by the builders unless overridden.
var SeriesStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewBars creates one bar per close on consecutive days starting at start.
func NewBars(start time.Time, closes ...float64) []model.PriceBar {
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{
			Date:  start.AddDate(0, 0, i),
			Close: decimal.NewFromFloat(c),
		}
	}
	return bars
}

// SeriesBuilder provides a fluent interface for creating derived series.
//
// Example usage:
//
//	// Localized prices equal to the given closes
//	series := testutil.NewSeries(100, 110, 99).Build()
//
//	// Converted with a rate
//	series := testutil.NewSeries(2300, 2310).WithRate("16250").Build()
type SeriesBuilder struct {
	start  time.Time
	closes []float64
	rate   decimal.Decimal
	grams  decimal.Decimal
}

// NewSeries creates a SeriesBuilder whose localized prices equal the closes.
func NewSeries(closes ...float64) *SeriesBuilder {
	return &SeriesBuilder{
		start:  SeriesStart,
		closes: closes,
		rate:   decimal.NewFromInt(1),
		grams:  decimal.NewFromInt(1),
	}
}

// NewRisingSeries creates a SeriesBuilder of n strictly rising closes.
func NewRisingSeries(n int) *SeriesBuilder {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 1000 + float64(i)
	}
	return NewSeries(closes...)
}

// WithRate converts closes with the given exchange rate per troy ounce.
func (b *SeriesBuilder) WithRate(rate string) *SeriesBuilder {
	b.rate = decimal.RequireFromString(rate)
	b.grams = service.GramsPerTroyOunce
	return b
}

// Build derives the series.
func (b *SeriesBuilder) Build() model.Series {
	return service.Convert(NewBars(b.start, b.closes...), b.rate, b.grams)
}

// NewCacheRecord creates a record around series written at lastUpdate.
func NewCacheRecord(series model.Series, lastUpdate time.Time) model.CacheRecord {
	rec := model.CacheRecord{
		RefreshID:    uuid.New().String(),
		LastUpdate:   lastUpdate,
		ExchangeRate: decimal.RequireFromString("16250.5"),
		LatestClose:  decimal.RequireFromString("2345.6"),
		Series:       series,
	}
	if last, ok := series.Last(); ok {
		rec.LatestLocalizedPrice = last.LocalizedPrice
	}
	return rec
}
