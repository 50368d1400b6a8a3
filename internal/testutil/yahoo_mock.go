package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined responses per symbol instead of making API calls.
// It is safe for concurrent use because the source adapter queries the
// commodity and the exchange rate in parallel.
type MockYahooClient struct {
	mu sync.Mutex
	// Responses maps a symbol to the response returned for it
	Responses map[string]yahoo.Response
	// Errors maps a symbol to the error returned for it
	Errors map[string]error
	// Delay is applied before answering; cancellation of ctx ends it early
	Delay time.Duration
	// queries counts calls per symbol
	queries map[string]int
}

// NewMockYahooClient creates a mock serving a gold series and an exchange rate
// with the default symbols GC=F and USDIDR=X.
func NewMockYahooClient() *MockYahooClient {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	return &MockYahooClient{
		Responses: map[string]yahoo.Response{
			GoldSymbol: CreateMockYahooResponse(GoldSymbol, start, 2300, 2310, 2295.5, 2320.25, 2318),
			RateSymbol: CreateMockYahooResponse(RateSymbol, start, 16250, 16300),
		},
		Errors:  map[string]error{},
		queries: map[string]int{},
	}
}

// QueryYahooRange returns the configured response for symbol.
func (m *MockYahooClient) QueryYahooRange(ctx context.Context, symbol, _ string) (yahoo.Response, error) {
	return m.answer(ctx, symbol)
}

// QueryYahooSymbolByDateRange returns the configured response for symbol.
func (m *MockYahooClient) QueryYahooSymbolByDateRange(ctx context.Context, symbol string, _, _ time.Time) (yahoo.Response, error) {
	return m.answer(ctx, symbol)
}

// ParseChart delegates to the real ParseChart method since it's pure logic with no side effects.
func (m *MockYahooClient) ParseChart(yahooResult yahoo.Response) (yahoo.PriceChart, error) {
	return yahoo.NewFinanceClient("", 0).ParseChart(yahooResult)
}

func (m *MockYahooClient) answer(ctx context.Context, symbol string) (yahoo.Response, error) {
	m.mu.Lock()
	m.queries[symbol]++
	delay := m.Delay
	resp, hasResp := m.Responses[symbol]
	err := m.Errors[symbol]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return yahoo.Response{}, ctx.Err()
		}
	}
	if err != nil {
		return yahoo.Response{}, err
	}
	if !hasResp {
		return yahoo.Response{}, yahoo.ErrNoResults
	}
	return resp, nil
}

// QueryCount returns how many times symbol was queried.
func (m *MockYahooClient) QueryCount(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries[symbol]
}

// TotalQueries returns the number of queries across all symbols.
func (m *MockYahooClient) TotalQueries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.queries {
		total += n
	}
	return total
}

// WithError configures the mock to fail every query for symbol.
func (m *MockYahooClient) WithError(symbol string, err error) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[symbol] = err
	return m
}

// ClearErrors removes all configured errors.
func (m *MockYahooClient) ClearErrors() *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = map[string]error{}
	return m
}

// WithResponse configures the response returned for symbol.
func (m *MockYahooClient) WithResponse(symbol string, resp yahoo.Response) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[symbol] = resp
	return m
}

// WithEmptyResponse configures symbol to return a result whose closes are all null.
func (m *MockYahooClient) WithEmptyResponse(symbol string) *MockYahooClient {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	resp := CreateMockYahooResponse(symbol, start, 1, 1)
	resp.Chart.Result[0].Indicators.Quote[0].Close = []*float64{nil, nil}
	return m.WithResponse(symbol, resp)
}

// WithDelay makes every query wait d before answering.
func (m *MockYahooClient) WithDelay(d time.Duration) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Delay = d
	return m
}

// CreateMockYahooResponse creates a chart response with one daily close per
// value, on consecutive days starting at start.
func CreateMockYahooResponse(symbol string, start time.Time, closes ...float64) yahoo.Response {
	timestamps := make([]int64, len(closes))
	closePtrs := make([]*float64, len(closes))
	volumes := make([]*int64, len(closes))

	for i := range closes {
		timestamps[i] = start.AddDate(0, 0, i).Unix()
		c := closes[i]
		closePtrs[i] = &c
		v := int64(1000 + i)
		volumes[i] = &v
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:       symbol,
						Currency:     "USD",
						ExchangeName: "CMX",
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{
							{
								Open:   closePtrs,
								High:   closePtrs,
								Low:    closePtrs,
								Close:  closePtrs,
								Volume: volumes,
							},
						},
					},
				},
			},
		},
	}
}
