package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/yahoo"
)

// Window selects the history requested from the source: either a Yahoo
// lookback range such as "2y", or an explicit [Start, End) date range.
type Window struct {
	Range string
	Start time.Time
	End   time.Time
}

// LookbackWindow returns a window covering the given Yahoo range.
func LookbackWindow(rng string) Window {
	return Window{Range: rng}
}

// DateRangeWindow returns a window covering [start, end).
func DateRangeWindow(start, end time.Time) Window {
	return Window{Start: start, End: end}
}

// SourceSnapshot is the raw input of one refresh: the commodity series plus
// the most recent exchange rate.
type SourceSnapshot struct {
	Bars         []model.PriceBar
	ExchangeRate decimal.Decimal
}

// SourceAdapter wraps the Yahoo client and translates its failures into
// ErrSourceUnavailable and ErrEmptySeries. It holds no state.
type SourceAdapter struct {
	client  yahoo.Client
	timeout time.Duration
}

// NewSourceAdapter creates a SourceAdapter. A zero timeout disables the
// per-call deadline.
func NewSourceAdapter(client yahoo.Client, timeout time.Duration) *SourceAdapter {
	return &SourceAdapter{
		client:  client,
		timeout: timeout,
	}
}

// FetchSeries returns the daily closes for symbol over window in ascending date
// order. Missing trading days are simply absent.
func (a *SourceAdapter) FetchSeries(ctx context.Context, symbol string, window Window) ([]model.PriceBar, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var (
		raw yahoo.Response
		err error
	)
	if window.Range != "" {
		raw, err = a.client.QueryYahooRange(ctx, symbol, window.Range)
	} else {
		raw, err = a.client.QueryYahooSymbolByDateRange(ctx, symbol, window.Start, window.End)
	}
	if err != nil {
		return nil, classifySourceError(symbol, err)
	}

	chart, err := a.client.ParseChart(raw)
	if err != nil {
		return nil, classifySourceError(symbol, err)
	}

	bars := make([]model.PriceBar, 0, len(chart.Indicators))
	for _, ind := range chart.Indicators {
		if !window.End.IsZero() && !ind.Date.Before(window.End) {
			continue
		}
		bars = append(bars, model.PriceBar{
			Date:  ind.Date,
			Close: decimal.NewFromFloat(ind.PriceClose),
		})
	}
	bars = normalizeBars(bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, apperrors.ErrEmptySeries)
	}
	return bars, nil
}

// LatestRate returns the most recent valid close of an exchange-rate symbol
// over a short lookback range.
func (a *SourceAdapter) LatestRate(ctx context.Context, symbol, rng string) (decimal.Decimal, error) {
	bars, err := a.FetchSeries(ctx, symbol, LookbackWindow(rng))
	if err != nil {
		return decimal.Decimal{}, err
	}
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Close.IsPositive() {
			return bars[i].Close, nil
		}
	}
	return decimal.Decimal{}, fmt.Errorf("%s: %w", symbol, apperrors.ErrEmptySeries)
}

// Fetch retrieves the commodity series and the exchange rate concurrently.
// If either request fails the snapshot is discarded.
func (a *SourceAdapter) Fetch(ctx context.Context, symbol string, window Window, rateSymbol, rateRange string) (SourceSnapshot, error) {
	var snap SourceSnapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bars, err := a.FetchSeries(gctx, symbol, window)
		if err != nil {
			return err
		}
		snap.Bars = bars
		return nil
	})
	g.Go(func() error {
		rate, err := a.LatestRate(gctx, rateSymbol, rateRange)
		if err != nil {
			return err
		}
		snap.ExchangeRate = rate
		return nil
	})
	if err := g.Wait(); err != nil {
		return SourceSnapshot{}, err
	}
	return snap, nil
}

func (a *SourceAdapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// normalizeBars drops non-positive closes, sorts ascending by date and keeps
// the last observation for any repeated date.
func normalizeBars(bars []model.PriceBar) []model.PriceBar {
	out := make([]model.PriceBar, 0, len(bars))
	for _, b := range bars {
		if !b.Close.IsPositive() {
			continue
		}
		out = append(out, b)
	}
	slices.SortStableFunc(out, func(x, y model.PriceBar) int {
		return x.Date.Compare(y.Date)
	})

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Date.Equal(b.Date) {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}

func classifySourceError(symbol string, err error) error {
	switch {
	case errors.Is(err, yahoo.ErrNoResults), errors.Is(err, yahoo.ErrNoPriceData):
		return fmt.Errorf("%s: %w: %v", symbol, apperrors.ErrEmptySeries, err)
	default:
		return fmt.Errorf("%s: %w: %v", symbol, apperrors.ErrSourceUnavailable, err)
	}
}
