package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/service"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/testutil"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/yahoo"
)

func TestSourceAdapter_FetchSeries(t *testing.T) {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	t.Run("returns ascending bars", func(t *testing.T) {
		mock := testutil.NewMockYahooClient()
		adapter := service.NewSourceAdapter(mock, time.Second)

		bars, err := adapter.FetchSeries(context.Background(), testutil.GoldSymbol, service.LookbackWindow("2y"))
		require.NoError(t, err)

		require.Len(t, bars, 5)
		assert.True(t, bars[0].Date.Equal(start))
		assert.Equal(t, "2300", bars[0].Close.String())
		assert.Equal(t, "2295.5", bars[2].Close.String())
		for i := 1; i < len(bars); i++ {
			assert.True(t, bars[i].Date.After(bars[i-1].Date))
		}
		assert.Equal(t, 1, mock.QueryCount(testutil.GoldSymbol))
	})

	t.Run("leaves gaps for null closes", func(t *testing.T) {
		resp := testutil.CreateMockYahooResponse(testutil.GoldSymbol, start, 2300, 2310, 2320)
		resp.Chart.Result[0].Indicators.Quote[0].Close[1] = nil
		mock := testutil.NewMockYahooClient().WithResponse(testutil.GoldSymbol, resp)
		adapter := service.NewSourceAdapter(mock, time.Second)

		bars, err := adapter.FetchSeries(context.Background(), testutil.GoldSymbol, service.LookbackWindow("5d"))
		require.NoError(t, err)

		require.Len(t, bars, 2)
		assert.True(t, bars[1].Date.Equal(start.AddDate(0, 0, 2)))
	})

	t.Run("sorts and deduplicates provider output", func(t *testing.T) {
		resp := testutil.CreateMockYahooResponse(testutil.GoldSymbol, start, 1, 2, 3)
		ts := resp.Chart.Result[0].Timestamp
		// Out of order, with an intraday duplicate of the first day.
		resp.Chart.Result[0].Timestamp = []int64{ts[2], ts[0], ts[0] + 3600}
		mock := testutil.NewMockYahooClient().WithResponse(testutil.GoldSymbol, resp)
		adapter := service.NewSourceAdapter(mock, time.Second)

		bars, err := adapter.FetchSeries(context.Background(), testutil.GoldSymbol, service.LookbackWindow("5d"))
		require.NoError(t, err)

		require.Len(t, bars, 2)
		assert.True(t, bars[0].Date.Equal(start))
		assert.Equal(t, "3", bars[0].Close.String(), "last observation of a day wins")
		assert.Equal(t, "1", bars[1].Close.String())
	})

	t.Run("date range excludes the end date", func(t *testing.T) {
		mock := testutil.NewMockYahooClient()
		adapter := service.NewSourceAdapter(mock, time.Second)

		window := service.DateRangeWindow(start, start.AddDate(0, 0, 3))
		bars, err := adapter.FetchSeries(context.Background(), testutil.GoldSymbol, window)
		require.NoError(t, err)

		require.Len(t, bars, 3)
		assert.True(t, bars[2].Date.Equal(start.AddDate(0, 0, 2)))
	})

	t.Run("all-null closes are an empty series", func(t *testing.T) {
		mock := testutil.NewMockYahooClient().WithEmptyResponse(testutil.GoldSymbol)
		adapter := service.NewSourceAdapter(mock, time.Second)

		_, err := adapter.FetchSeries(context.Background(), testutil.GoldSymbol, service.LookbackWindow("2y"))
		assert.ErrorIs(t, err, apperrors.ErrEmptySeries)
		assert.NotErrorIs(t, err, apperrors.ErrSourceUnavailable)
	})

	t.Run("missing result is an empty series", func(t *testing.T) {
		mock := testutil.NewMockYahooClient().WithError(testutil.GoldSymbol, yahoo.ErrNoResults)
		adapter := service.NewSourceAdapter(mock, time.Second)

		_, err := adapter.FetchSeries(context.Background(), testutil.GoldSymbol, service.LookbackWindow("2y"))
		assert.ErrorIs(t, err, apperrors.ErrEmptySeries)
	})

	t.Run("transport failure is source unavailable", func(t *testing.T) {
		mock := testutil.NewMockYahooClient().WithError(testutil.GoldSymbol, errors.New("connection refused"))
		adapter := service.NewSourceAdapter(mock, time.Second)

		_, err := adapter.FetchSeries(context.Background(), testutil.GoldSymbol, service.LookbackWindow("2y"))
		assert.ErrorIs(t, err, apperrors.ErrSourceUnavailable)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("timeout is source unavailable", func(t *testing.T) {
		mock := testutil.NewMockYahooClient().WithDelay(time.Second)
		adapter := service.NewSourceAdapter(mock, 20*time.Millisecond)

		began := time.Now()
		_, err := adapter.FetchSeries(context.Background(), testutil.GoldSymbol, service.LookbackWindow("2y"))
		assert.ErrorIs(t, err, apperrors.ErrSourceUnavailable)
		assert.Less(t, time.Since(began), 500*time.Millisecond)
	})
}

func TestSourceAdapter_LatestRate(t *testing.T) {
	t.Run("uses the most recent observation", func(t *testing.T) {
		mock := testutil.NewMockYahooClient()
		adapter := service.NewSourceAdapter(mock, time.Second)

		rate, err := adapter.LatestRate(context.Background(), testutil.RateSymbol, "5d")
		require.NoError(t, err)
		assert.Equal(t, "16300", rate.String())
	})

	t.Run("skips a trailing null", func(t *testing.T) {
		start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
		resp := testutil.CreateMockYahooResponse(testutil.RateSymbol, start, 16100, 16200, 0)
		resp.Chart.Result[0].Indicators.Quote[0].Close[2] = nil
		mock := testutil.NewMockYahooClient().WithResponse(testutil.RateSymbol, resp)
		adapter := service.NewSourceAdapter(mock, time.Second)

		rate, err := adapter.LatestRate(context.Background(), testutil.RateSymbol, "5d")
		require.NoError(t, err)
		assert.Equal(t, "16200", rate.String())
	})
}

func TestSourceAdapter_Fetch(t *testing.T) {
	t.Run("returns series and rate", func(t *testing.T) {
		mock := testutil.NewMockYahooClient()
		adapter := service.NewSourceAdapter(mock, time.Second)

		snap, err := adapter.Fetch(context.Background(), testutil.GoldSymbol, service.LookbackWindow("2y"), testutil.RateSymbol, "5d")
		require.NoError(t, err)

		assert.Len(t, snap.Bars, 5)
		assert.Equal(t, "16300", snap.ExchangeRate.String())
		assert.Equal(t, 1, mock.QueryCount(testutil.GoldSymbol))
		assert.Equal(t, 1, mock.QueryCount(testutil.RateSymbol))
	})

	t.Run("fails when the rate is unavailable", func(t *testing.T) {
		mock := testutil.NewMockYahooClient().WithError(testutil.RateSymbol, errors.New("boom"))
		adapter := service.NewSourceAdapter(mock, time.Second)

		_, err := adapter.Fetch(context.Background(), testutil.GoldSymbol, service.LookbackWindow("2y"), testutil.RateSymbol, "5d")
		assert.ErrorIs(t, err, apperrors.ErrSourceUnavailable)
	})
}
