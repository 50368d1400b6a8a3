package repository

import (
	"context"
	"sync"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
)

// MemoryCache keeps the record in process memory. It is lost on restart.
type MemoryCache struct {
	mu     sync.RWMutex
	record *model.CacheRecord
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Read(_ context.Context) (model.CacheRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.record == nil {
		return model.CacheRecord{}, apperrors.ErrCacheMiss
	}
	return cloneRecord(*c.record), nil
}

func (c *MemoryCache) Write(_ context.Context, record model.CacheRecord) error {
	stored := cloneRecord(record)

	c.mu.Lock()
	c.record = &stored
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Health(_ context.Context) error {
	return nil
}
