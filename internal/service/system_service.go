package service

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/database"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	price   *PriceService
	backend string
	db      *sql.DB // nil unless the SQLite backend is in use
}

// NewSystemService creates a new SystemService. db may be nil.
func NewSystemService(price *PriceService, backend string, db *sql.DB) *SystemService {
	return &SystemService{
		price:   price,
		backend: backend,
		db:      db,
	}
}

// CheckHealth checks that the cache backend is reachable.
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return s.price.CacheHealth(ctx)
}

// CheckVersion reports the build version, the cache backend and, for SQLite,
// the schema version.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	info := model.VersionInfo{
		AppVersion:   version.Version,
		CacheBackend: s.backend,
		Features: map[string]bool{
			"durable_cache":  s.backend != "memory",
			"stale_fallback": true,
			"chart_data":     true,
		},
	}

	if s.db != nil {
		v, err := database.SchemaVersion(ctx, s.db)
		if err != nil {
			return model.VersionInfo{}, err
		}
		info.DbVersion = strconv.FormatInt(v, 10)
	}
	return info, nil
}
