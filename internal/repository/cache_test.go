package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/repository"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/testutil"
)

var lastUpdate = time.Date(2024, 6, 10, 9, 30, 15, 123456789, time.UTC)

// stores returns one empty instance of every cache backend.
func stores(t *testing.T) map[string]repository.CacheStore {
	t.Helper()

	mr := miniredis.RunT(t)
	redisCache, err := repository.NewRedisCache(context.Background(), mr.Addr(), "", 0, "gold:price_cache")
	require.NoError(t, err)
	t.Cleanup(func() { redisCache.Close() })

	return map[string]repository.CacheStore{
		"memory": repository.NewMemoryCache(),
		"file":   repository.NewFileCache(filepath.Join(t.TempDir(), "cache", "gold.json")),
		"sqlite": repository.NewSQLiteCache(testutil.SetupTestDB(t)),
		"redis":  redisCache,
	}
}

func assertRecordEqual(t *testing.T, want, got model.CacheRecord) {
	t.Helper()

	assert.Equal(t, want.RefreshID, got.RefreshID)
	assert.True(t, want.LastUpdate.Equal(got.LastUpdate), "last update %s != %s", want.LastUpdate, got.LastUpdate)
	assert.True(t, want.ExchangeRate.Equal(got.ExchangeRate))
	assert.True(t, want.LatestClose.Equal(got.LatestClose))
	assert.True(t, want.LatestLocalizedPrice.Equal(got.LatestLocalizedPrice))

	require.Len(t, got.Series, len(want.Series))
	for i := range want.Series {
		w, g := want.Series[i], got.Series[i]
		assert.True(t, w.Date.Equal(g.Date), "row %d date", i)
		assert.True(t, w.LocalizedPrice.Equal(g.LocalizedPrice), "row %d price", i)
		assert.Equal(t, w.Change.Valid, g.Change.Valid, "row %d change validity", i)
		assert.True(t, w.Change.Decimal.Equal(g.Change.Decimal), "row %d change", i)
		assert.Equal(t, w.PercentChange.Valid, g.PercentChange.Valid, "row %d percent validity", i)
		assert.True(t, w.PercentChange.Decimal.Equal(g.PercentChange.Decimal), "row %d percent", i)
		assert.Equal(t, w.Status, g.Status, "row %d status", i)
	}
}

func TestCacheStores(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("read before write is a miss", func(t *testing.T) {
				_, err := store.Read(ctx)
				assert.ErrorIs(t, err, apperrors.ErrCacheMiss)
			})

			t.Run("round trips a record", func(t *testing.T) {
				series := testutil.NewSeries(0, 2300.5, 2310.25, 2310.25, 2290).WithRate("16250.37").Build()
				want := testutil.NewCacheRecord(series, lastUpdate)

				require.NoError(t, store.Write(ctx, want))

				got, err := store.Read(ctx)
				require.NoError(t, err)
				assertRecordEqual(t, want, got)
				assert.Equal(t, model.StatusIndeterminate, got.Series[1].Status)
				assert.Equal(t, model.StatusNone, got.Series[0].Status)
			})

			t.Run("write replaces the whole record", func(t *testing.T) {
				first := testutil.NewCacheRecord(testutil.NewRisingSeries(8).Build(), lastUpdate)
				require.NoError(t, store.Write(ctx, first))

				second := testutil.NewCacheRecord(testutil.NewRisingSeries(3).Build(), lastUpdate.Add(time.Hour))
				require.NoError(t, store.Write(ctx, second))

				got, err := store.Read(ctx)
				require.NoError(t, err)
				assertRecordEqual(t, second, got)
			})

			t.Run("empty series", func(t *testing.T) {
				want := testutil.NewCacheRecord(model.Series{}, lastUpdate)
				require.NoError(t, store.Write(ctx, want))

				got, err := store.Read(ctx)
				require.NoError(t, err)
				assert.Empty(t, got.Series)
			})

			t.Run("health", func(t *testing.T) {
				assert.NoError(t, store.Health(ctx))
			})
		})
	}
}

func TestCacheStores_ConcurrentReadWrite(t *testing.T) {
	ctx := context.Background()
	records := []model.CacheRecord{
		testutil.NewCacheRecord(testutil.NewRisingSeries(5).Build(), lastUpdate),
		testutil.NewCacheRecord(testutil.NewRisingSeries(9).Build(), lastUpdate),
	}
	lengths := map[string]int{records[0].RefreshID: 5, records[1].RefreshID: 9}

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Write(ctx, records[0]))

			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				for i := range 20 {
					assert.NoError(t, store.Write(ctx, records[i%2]))
				}
			}()
			go func() {
				defer wg.Done()
				for range 20 {
					got, err := store.Read(ctx)
					if !assert.NoError(t, err) {
						return
					}
					assert.Len(t, got.Series, lengths[got.RefreshID], "reader saw a mixed record")
				}
			}()
			wg.Wait()
		})
	}
}

func TestMemoryCache_IsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryCache()

	rec := testutil.NewCacheRecord(testutil.NewRisingSeries(3).Build(), lastUpdate)
	require.NoError(t, store.Write(ctx, rec))

	rec.Series[0].Status = model.StatusDown

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNone, got.Series[0].Status)

	got.Series[1].Status = model.StatusDown
	again, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUp, again.Series[1].Status)
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		store := repository.NewFileCache(filepath.Join(dir, "gold.json"))

		for range 3 {
			require.NoError(t, store.Write(ctx, testutil.NewCacheRecord(testutil.NewRisingSeries(4).Build(), lastUpdate)))
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "gold.json", entries[0].Name())
	})

	t.Run("corrupt document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gold.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := repository.NewFileCache(path).Read(ctx)
		assert.ErrorIs(t, err, apperrors.ErrCorruptCacheRecord)
	})

	t.Run("well-formed document breaking the series invariants", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gold.json")
		store := repository.NewFileCache(path)

		rec := testutil.NewCacheRecord(testutil.NewRisingSeries(3).Build(), lastUpdate)
		rec.Series[2].Date = rec.Series[0].Date
		require.NoError(t, store.Write(ctx, rec))

		_, err := store.Read(ctx)
		assert.ErrorIs(t, err, apperrors.ErrCorruptCacheRecord)
	})
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	t.Run("stored without expiry", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, err := repository.NewRedisCache(ctx, mr.Addr(), "", 0, "gold")
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.Write(ctx, testutil.NewCacheRecord(testutil.NewRisingSeries(2).Build(), lastUpdate)))
		assert.True(t, mr.Exists("gold"))
		assert.Zero(t, mr.TTL("gold"))
	})

	t.Run("corrupt value", func(t *testing.T) {
		mr := miniredis.RunT(t)
		require.NoError(t, mr.Set("gold", "garbage"))
		store, err := repository.NewRedisCache(ctx, mr.Addr(), "", 0, "gold")
		require.NoError(t, err)
		defer store.Close()

		_, err = store.Read(ctx)
		assert.ErrorIs(t, err, apperrors.ErrCorruptCacheRecord)
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := repository.NewRedisCache(ctx, addr, "", 0, "gold")
		assert.Error(t, err)
	})

	t.Run("health fails after the server stops", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, err := repository.NewRedisCache(ctx, mr.Addr(), "", 0, "gold")
		require.NoError(t, err)
		defer store.Close()

		mr.Close()
		assert.Error(t, store.Health(ctx))
	})
}

func TestIsFresh(t *testing.T) {
	rec := model.CacheRecord{LastUpdate: lastUpdate}
	ttl := 6 * time.Hour

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"just written", 0, true},
		{"five hours", 5 * time.Hour, true},
		{"exactly at ttl", 6 * time.Hour, false},
		{"seven hours", 7 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repository.IsFresh(rec, ttl, lastUpdate.Add(tt.age)))
		})
	}
}
