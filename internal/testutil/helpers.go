package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/repository"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/service"
)

const (
	// GoldSymbol is the commodity symbol used throughout the tests.
	GoldSymbol = "GC=F"
	// RateSymbol is the exchange-rate symbol used throughout the tests.
	RateSymbol = "USDIDR=X"
)

// DefaultPriceConfig returns the production defaults with the test symbols.
func DefaultPriceConfig() service.PriceConfig {
	return service.PriceConfig{
		Symbol:        GoldSymbol,
		RateSymbol:    RateSymbol,
		LookbackRange: "2y",
		RateRange:     "5d",
		TTL:           6 * time.Hour,
		WindowDays:    60,
		PageSize:      10,
		GramsPerOunce: service.GramsPerTroyOunce,
	}
}

// Clock is a settable time source for services under test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a Clock reading t.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewTestPriceService wires a PriceService to store and the mock Yahoo client.
//
// Example usage:
//
//	mock := testutil.NewMockYahooClient()
//	clock := testutil.NewClock(time.Now())
//	svc := testutil.NewTestPriceService(t, repository.NewMemoryCache(), mock, clock)
func NewTestPriceService(t *testing.T, store repository.CacheStore, mock *MockYahooClient, clock *Clock) *service.PriceService {
	t.Helper()
	return NewTestPriceServiceWithConfig(t, store, mock, clock, DefaultPriceConfig())
}

// NewTestPriceServiceWithConfig is NewTestPriceService with a custom configuration.
func NewTestPriceServiceWithConfig(t *testing.T, store repository.CacheStore, mock *MockYahooClient, clock *Clock, cfg service.PriceConfig) *service.PriceService {
	t.Helper()

	adapter := service.NewSourceAdapter(mock, 2*time.Second)
	svc := service.NewPriceService(store, adapter, cfg)
	if clock != nil {
		svc.WithClock(clock.Now)
	}
	return svc
}

// NewRequestWithQueryParams creates an HTTP request with query parameters.
// This helper simplifies testing handlers that use r.URL.Query() to extract query string parameters.
//
// Example:
//
//	req := testutil.NewRequestWithQueryParams(
//	    http.MethodGet,
//	    "/api/gold",
//	    map[string]string{"page": "2"},
//	)
func NewRequestWithQueryParams(method, path string, queryParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, nil)

	if len(queryParams) > 0 {
		q := req.URL.Query()
		for key, value := range queryParams {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	return req
}
