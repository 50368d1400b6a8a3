package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/database"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
)

// SQLiteCache stores the record in the price_cache and price_cache_row tables.
// The header row and the series are replaced together in one transaction.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache creates a SQLiteCache on a migrated database.
func NewSQLiteCache(db *sql.DB) *SQLiteCache {
	return &SQLiteCache{db: db}
}

// Read loads the header and the series inside one read transaction so a
// concurrent Write is never observed halfway.
func (r *SQLiteCache) Read(ctx context.Context) (model.CacheRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.CacheRecord{}, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // nothing to commit

	var (
		rec                                        model.CacheRecord
		lastUpdate, rate, latestClose, latestLocal string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT refresh_id, last_update, exchange_rate, latest_close, latest_localized_price
		FROM price_cache
		WHERE id = 1
	`).Scan(&rec.RefreshID, &lastUpdate, &rate, &latestClose, &latestLocal)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CacheRecord{}, apperrors.ErrCacheMiss
	}
	if err != nil {
		return model.CacheRecord{}, fmt.Errorf("failed to query price_cache table: %w", err)
	}

	if rec.LastUpdate, err = time.Parse(time.RFC3339Nano, lastUpdate); err != nil {
		return model.CacheRecord{}, fmt.Errorf("%w: last_update: %v", apperrors.ErrCorruptCacheRecord, err)
	}
	if rec.ExchangeRate, err = decimal.NewFromString(rate); err != nil {
		return model.CacheRecord{}, fmt.Errorf("%w: exchange_rate: %v", apperrors.ErrCorruptCacheRecord, err)
	}
	if rec.LatestClose, err = decimal.NewFromString(latestClose); err != nil {
		return model.CacheRecord{}, fmt.Errorf("%w: latest_close: %v", apperrors.ErrCorruptCacheRecord, err)
	}
	if rec.LatestLocalizedPrice, err = decimal.NewFromString(latestLocal); err != nil {
		return model.CacheRecord{}, fmt.Errorf("%w: latest_localized_price: %v", apperrors.ErrCorruptCacheRecord, err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT date, localized_price, change, percent_change, status
		FROM price_cache_row
		ORDER BY date ASC
	`)
	if err != nil {
		return model.CacheRecord{}, fmt.Errorf("failed to query price_cache_row table: %w", err)
	}
	defer rows.Close()

	rec.Series = model.Series{}
	for rows.Next() {
		var (
			date, price     string
			change, percent sql.NullString
			status          string
		)
		if err := rows.Scan(&date, &price, &change, &percent, &status); err != nil {
			return model.CacheRecord{}, fmt.Errorf("failed to scan price_cache_row: %w", err)
		}

		row, err := parseCacheRow(date, price, change, percent, status)
		if err != nil {
			return model.CacheRecord{}, err
		}
		rec.Series = append(rec.Series, row)
	}
	if err := rows.Err(); err != nil {
		return model.CacheRecord{}, fmt.Errorf("error iterating price_cache_row: %w", err)
	}

	return checkRecord(rec)
}

// Write replaces the stored record.
func (r *SQLiteCache) Write(ctx context.Context, record model.CacheRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO price_cache (id, refresh_id, last_update, exchange_rate, latest_close, latest_localized_price)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			refresh_id = excluded.refresh_id,
			last_update = excluded.last_update,
			exchange_rate = excluded.exchange_rate,
			latest_close = excluded.latest_close,
			latest_localized_price = excluded.latest_localized_price
	`,
		record.RefreshID,
		record.LastUpdate.UTC().Format(time.RFC3339Nano),
		record.ExchangeRate.String(),
		record.LatestClose.String(),
		record.LatestLocalizedPrice.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price_cache: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM price_cache_row`); err != nil {
		return fmt.Errorf("failed to clear price_cache_row: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_cache_row (date, localized_price, change, percent_change, status)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range record.Series {
		_, err := stmt.ExecContext(ctx,
			row.Date.UTC().Format(model.DateLayout),
			row.LocalizedPrice.String(),
			nullDecimalArg(row.Change),
			nullDecimalArg(row.PercentChange),
			string(row.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to insert price_cache_row %s: %w", row.Date.Format(model.DateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteCache) Health(ctx context.Context) error {
	return database.HealthCheck(ctx, r.db)
}

func nullDecimalArg(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func parseCacheRow(date, price string, change, percent sql.NullString, status string) (model.DerivedRow, error) {
	var (
		row model.DerivedRow
		err error
	)
	if row.Date, err = time.Parse(model.DateLayout, date); err != nil {
		return row, fmt.Errorf("%w: date %q: %v", apperrors.ErrCorruptCacheRecord, date, err)
	}
	if row.LocalizedPrice, err = decimal.NewFromString(price); err != nil {
		return row, fmt.Errorf("%w: localized_price: %v", apperrors.ErrCorruptCacheRecord, err)
	}
	if change.Valid {
		d, err := decimal.NewFromString(change.String)
		if err != nil {
			return row, fmt.Errorf("%w: change: %v", apperrors.ErrCorruptCacheRecord, err)
		}
		row.Change = decimal.NewNullDecimal(d)
	}
	if percent.Valid {
		d, err := decimal.NewFromString(percent.String)
		if err != nil {
			return row, fmt.Errorf("%w: percent_change: %v", apperrors.ErrCorruptCacheRecord, err)
		}
		row.PercentChange = decimal.NewNullDecimal(d)
	}
	row.Status = model.Status(status)
	return row, nil
}
