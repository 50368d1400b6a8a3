// Package validation checks the integrity of price records loaded from a
// cache backend.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
)

// Error collects every failed check of a record, keyed by field.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, field := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid UUID format: %s", id)
	}
	return nil
}

// ValidateRecord checks the invariants a stored record must satisfy:
// a UUID refresh id, a set update time, a positive exchange rate, and a
// series in strictly ascending date order whose first row carries no change.
// It returns nil or an *Error.
func ValidateRecord(rec model.CacheRecord) error {
	e := &Error{Fields: map[string]string{}}

	if err := ValidateUUID(rec.RefreshID); err != nil {
		e.Fields["refreshId"] = err.Error()
	}
	if rec.LastUpdate.IsZero() {
		e.Fields["lastUpdate"] = "must be set"
	}
	if !rec.ExchangeRate.IsPositive() {
		e.Fields["exchangeRate"] = "must be positive"
	}

	for i, row := range rec.Series {
		field := fmt.Sprintf("series[%d]", i)
		if row.LocalizedPrice.IsNegative() {
			e.Fields[field] = "negative price"
			break
		}
		if i == 0 {
			if row.Change.Valid || row.PercentChange.Valid {
				e.Fields[field] = "first row must not carry a change"
				break
			}
			continue
		}
		if !row.Date.After(rec.Series[i-1].Date) {
			e.Fields[field] = "dates must be strictly ascending"
			break
		}
		if !row.Change.Valid {
			e.Fields[field] = "missing change"
			break
		}
	}

	if len(e.Fields) > 0 {
		return e
	}
	return nil
}
