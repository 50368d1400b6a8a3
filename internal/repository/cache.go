package repository

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/validation"
)

// CacheStore persists the single computed price record of a deployment.
//
// Implementations must make Write atomic: a concurrent Read observes either
// the previous record or the new one, never a mix. Read returns
// apperrors.ErrCacheMiss when nothing has been written yet.
type CacheStore interface {
	Read(ctx context.Context) (model.CacheRecord, error)
	Write(ctx context.Context, record model.CacheRecord) error
	Health(ctx context.Context) error
}

// IsFresh reports whether record is younger than ttl at now.
func IsFresh(record model.CacheRecord, ttl time.Duration, now time.Time) bool {
	return now.Sub(record.LastUpdate) < ttl
}

// cloneRecord returns a record that shares no backing arrays with r.
func cloneRecord(r model.CacheRecord) model.CacheRecord {
	out := r
	out.Series = make(model.Series, len(r.Series))
	copy(out.Series, r.Series)
	return out
}

func encodeRecord(r model.CacheRecord) ([]byte, error) {
	r.LastUpdate = r.LastUpdate.UTC()
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache record: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (model.CacheRecord, error) {
	var r model.CacheRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return model.CacheRecord{}, fmt.Errorf("%w: %v", apperrors.ErrCorruptCacheRecord, err)
	}
	if r.Series == nil {
		r.Series = model.Series{}
	}
	return checkRecord(r)
}

// checkRecord rejects a loaded record that violates the series invariants.
func checkRecord(r model.CacheRecord) (model.CacheRecord, error) {
	if err := validation.ValidateRecord(r); err != nil {
		return model.CacheRecord{}, fmt.Errorf("%w: %v", apperrors.ErrCorruptCacheRecord, err)
	}
	return r, nil
}
