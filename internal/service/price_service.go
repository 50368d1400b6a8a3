package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/repository"
)

// displayPlaces is the number of decimals used when presenting amounts.
const displayPlaces = 2

// PriceConfig holds the tunables of the price pipeline.
type PriceConfig struct {
	Symbol        string          // commodity quoted per troy ounce, e.g. GC=F
	RateSymbol    string          // exchange rate into the local currency, e.g. USDIDR=X
	LookbackRange string          // history requested for the series, e.g. 2y
	RateRange     string          // history requested for the exchange rate, e.g. 5d
	TTL           time.Duration   // maximum age of a cached record
	WindowDays    int             // trailing rows used for extrema and pagination
	PageSize      int             // rows per table page
	GramsPerOunce decimal.Decimal // troy ounce to gram factor
}

// PriceService is the request-driven pipeline: it serves the cached record
// while fresh, refreshes it from the source when stale, and composes the
// dashboard view from the trailing window.
//
// Concurrent requests that find the record stale share one refresh through a
// singleflight group. Separate processes sharing a durable store may still
// refresh redundantly; writes replace the whole record, so the last writer
// wins and no reader sees a partial record.
type PriceService struct {
	cache  repository.CacheStore
	source *SourceAdapter
	cfg    PriceConfig
	now    func() time.Time
	group  singleflight.Group
}

// NewPriceService creates a PriceService with the provided dependencies.
func NewPriceService(cache repository.CacheStore, source *SourceAdapter, cfg PriceConfig) *PriceService {
	if cfg.GramsPerOunce.IsZero() {
		cfg.GramsPerOunce = GramsPerTroyOunce
	}
	return &PriceService{
		cache:  cache,
		source: source,
		cfg:    cfg,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *PriceService) WithClock(now func() time.Time) *PriceService {
	s.now = now
	return s
}

// GetOrRefresh returns the cached record when it is fresh and otherwise
// rebuilds it from the source.
//
// When the rebuild fails with ErrSourceUnavailable or ErrEmptySeries and a
// stale record exists, the stale record is returned with stale set to true.
// Without a stale record the failure is returned. A failure to persist a
// freshly built record is logged and the new record is still returned.
func (s *PriceService) GetOrRefresh(ctx context.Context) (record model.CacheRecord, stale bool, err error) {
	cached, readErr := s.cache.Read(ctx)
	hasCached := readErr == nil
	if readErr != nil && !errors.Is(readErr, apperrors.ErrCacheMiss) {
		log.Warn().Err(readErr).Msg("cache read failed, treating as miss")
	}

	if hasCached && repository.IsFresh(cached, s.cfg.TTL, s.now()) {
		log.Debug().
			Str("refresh_id", cached.RefreshID).
			Time("last_update", cached.LastUpdate).
			Msg("cache hit")
		return cached, false, nil
	}

	v, err, shared := s.group.Do("refresh", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	if err == nil {
		fresh := v.(model.CacheRecord)
		log.Info().
			Str("refresh_id", fresh.RefreshID).
			Bool("shared", shared).
			Int("rows", len(fresh.Series)).
			Msg("price cache refreshed")
		return fresh, false, nil
	}

	if hasCached && isRecoverable(err) {
		log.Warn().
			Err(err).
			Str("kind", errorKind(err)).
			Str("refresh_id", cached.RefreshID).
			Time("last_update", cached.LastUpdate).
			Msg("refresh failed, serving stale cache")
		return cached, true, nil
	}

	log.Error().Err(err).Str("kind", errorKind(err)).Msg("refresh failed with no cached record")
	return model.CacheRecord{}, false, err
}

// refresh fetches, converts and stores a new record.
func (s *PriceService) refresh(ctx context.Context) (model.CacheRecord, error) {
	snap, err := s.source.Fetch(ctx, s.cfg.Symbol, LookbackWindow(s.cfg.LookbackRange), s.cfg.RateSymbol, s.cfg.RateRange)
	if err != nil {
		return model.CacheRecord{}, err
	}
	if !snap.ExchangeRate.IsPositive() {
		return model.CacheRecord{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidRate, snap.ExchangeRate)
	}

	series := Convert(snap.Bars, snap.ExchangeRate, s.cfg.GramsPerOunce)
	latest, ok := series.Last()
	if !ok {
		return model.CacheRecord{}, apperrors.ErrEmptySeries
	}

	record := model.CacheRecord{
		RefreshID:            uuid.New().String(),
		LastUpdate:           s.now().UTC(),
		ExchangeRate:         snap.ExchangeRate,
		LatestClose:          snap.Bars[len(snap.Bars)-1].Close,
		LatestLocalizedPrice: latest.LocalizedPrice,
		Series:               series,
	}

	if err := s.cache.Write(ctx, record); err != nil {
		log.Error().Err(err).Str("refresh_id", record.RefreshID).Msg("failed to write price cache")
	}
	return record, nil
}

// Dashboard composes the view for the given table page.
// It fails with ErrInsufficientData when the trailing window cannot be analyzed.
func (s *PriceService) Dashboard(ctx context.Context, page int) (model.Dashboard, error) {
	record, stale, err := s.GetOrRefresh(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}

	window := record.Series.Tail(s.cfg.WindowDays)

	extrema, err := AnalyzeExtrema(window)
	if err != nil {
		return model.Dashboard{}, err
	}

	pg, err := Paginate(window, page, s.cfg.PageSize)
	if err != nil {
		return model.Dashboard{}, err
	}

	status := MarketStatus(record.Series)
	localPerGram := record.LatestLocalizedPrice.Round(displayPlaces)

	return model.Dashboard{
		LatestPricePerOunce:       record.LatestClose.Round(displayPlaces),
		LatestPricePerGramForeign: PricePerGram(record.LatestClose, s.cfg.GramsPerOunce).Round(displayPlaces),
		LatestPricePerGramLocal:   localPerGram,
		LatestPricePerGramDisplay: FormatRupiah(record.LatestLocalizedPrice),
		ExchangeRate:              record.ExchangeRate,
		UpdateTime:                record.LastUpdate,
		Stale:                     stale,
		Chart:                     BuildChart(record.Series),
		Extrema:                   RoundExtrema(extrema, displayPlaces),
		MarketStatus:              status,
		MarketStatusColor:         StatusColor(status),
		MarketTrend:               MarketTrend(status),
		Page:                      RoundPage(pg, displayPlaces),
	}, nil
}

// ChartData returns the dates and localized prices of the trailing window,
// independent of any table page.
func (s *PriceService) ChartData(ctx context.Context) (model.ChartData, error) {
	record, _, err := s.GetOrRefresh(ctx)
	if err != nil {
		return model.ChartData{}, err
	}

	chart := BuildChart(record.Series.Tail(s.cfg.WindowDays))
	return model.ChartData{
		Dates:  chart.Labels,
		Values: chart.Values,
	}, nil
}

// CacheHealth reports whether the cache backend is reachable.
func (s *PriceService) CacheHealth(ctx context.Context) error {
	return s.cache.Health(ctx)
}

// BuildChart projects series into plot labels and values rounded for display.
func BuildChart(series model.Series) model.Chart {
	chart := model.Chart{
		Labels: make([]string, len(series)),
		Values: make([]float64, len(series)),
	}
	for i, row := range series {
		chart.Labels[i] = row.Date.UTC().Format(model.DateLayout)
		chart.Values[i] = row.LocalizedPrice.Round(displayPlaces).InexactFloat64()
	}
	return chart
}

// MarketStatus is the status of the most recent row, one of Up, Down or Flat.
// An empty series, a single row, or an indeterminate last move is reported Flat.
func MarketStatus(series model.Series) model.Status {
	last, ok := series.Last()
	if !ok {
		return model.StatusFlat
	}
	switch last.Status {
	case model.StatusUp, model.StatusDown:
		return last.Status
	default:
		return model.StatusFlat
	}
}

// StatusColor maps a status to the color used by the dashboard.
func StatusColor(status model.Status) string {
	switch status {
	case model.StatusUp:
		return "green"
	case model.StatusDown:
		return "red"
	default:
		return "gray"
	}
}

// MarketTrend maps a status to a trend label.
func MarketTrend(status model.Status) string {
	switch status {
	case model.StatusUp:
		return "Bullish"
	case model.StatusDown:
		return "Bearish"
	default:
		return "Sideways"
	}
}

func isRecoverable(err error) bool {
	return errors.Is(err, apperrors.ErrSourceUnavailable) || errors.Is(err, apperrors.ErrEmptySeries)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, apperrors.ErrEmptySeries):
		return "empty_series"
	case errors.Is(err, apperrors.ErrInvalidRate):
		return "invalid_rate"
	default:
		return "unknown"
	}
}
