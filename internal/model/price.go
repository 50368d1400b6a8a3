package model

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date format used for series dates.
const DateLayout = "2006-01-02"

// Status describes the direction of a day-over-day price change.
type Status string

const (
	StatusUp   Status = "Up"
	StatusDown Status = "Down"
	StatusFlat Status = "Flat"
	// StatusIndeterminate marks a row whose prior price was zero, so no
	// percentage change can be derived.
	StatusIndeterminate Status = "Indeterminate"
	// StatusNone is carried by the first row of a series, which has no prior day.
	StatusNone Status = ""
)

// PriceBar is one trading day's raw closing price as returned by the data source.
type PriceBar struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// DerivedRow is one trading day of the derived series.
// Change and PercentChange are null only on the first row of a series, and
// PercentChange is also null when the prior price was zero.
type DerivedRow struct {
	Date           time.Time           `json:"date"`
	LocalizedPrice decimal.Decimal     `json:"localizedPrice"`
	Change         decimal.NullDecimal `json:"change"`
	PercentChange  decimal.NullDecimal `json:"percentChange"`
	Status         Status              `json:"status,omitempty"`
}

type derivedRowJSON struct {
	Date           string              `json:"date"`
	LocalizedPrice decimal.Decimal     `json:"localizedPrice"`
	Change         decimal.NullDecimal `json:"change"`
	PercentChange  decimal.NullDecimal `json:"percentChange"`
	Status         Status              `json:"status,omitempty"`
}

// MarshalJSON renders the row date as an ISO calendar date.
func (r DerivedRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(derivedRowJSON{
		Date:           r.Date.UTC().Format(DateLayout),
		LocalizedPrice: r.LocalizedPrice,
		Change:         r.Change,
		PercentChange:  r.PercentChange,
		Status:         r.Status,
	})
}

// UnmarshalJSON parses a row whose date is an ISO calendar date.
func (r *DerivedRow) UnmarshalJSON(data []byte) error {
	var raw derivedRowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return err
	}
	*r = DerivedRow{
		Date:           date,
		LocalizedPrice: raw.LocalizedPrice,
		Change:         raw.Change,
		PercentChange:  raw.PercentChange,
		Status:         raw.Status,
	}
	return nil
}

// Series is a derived series ordered ascending by date with unique dates.
type Series []DerivedRow

// Tail returns the trailing window of at most n rows.
func (s Series) Tail(n int) Series {
	if n <= 0 {
		return Series{}
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Last returns the most recent row, or false for an empty series.
func (s Series) Last() (DerivedRow, bool) {
	if len(s) == 0 {
		return DerivedRow{}, false
	}
	return s[len(s)-1], true
}

// CacheRecord is the unit persisted by a cache store. It is replaced whole on
// every refresh and never mutated in place.
type CacheRecord struct {
	RefreshID            string          `json:"refreshId"`
	LastUpdate           time.Time       `json:"lastUpdate"`
	ExchangeRate         decimal.Decimal `json:"exchangeRate"`
	LatestClose          decimal.Decimal `json:"latestClose"`
	LatestLocalizedPrice decimal.Decimal `json:"latestLocalizedPrice"`
	Series               Series          `json:"series"`
}

// ExtremaSet holds the notable rows of an analyzed window.
type ExtremaSet struct {
	MaxIncrease        DerivedRow `json:"maxIncrease"`
	MaxDecrease        DerivedRow `json:"maxDecrease"`
	MaxPercentIncrease DerivedRow `json:"maxPercentIncrease"`
	MaxPercentDecrease DerivedRow `json:"maxPercentDecrease"`
}

// Page is one slice of a window sorted descending by date.
type Page struct {
	Rows       []DerivedRow `json:"rows"`
	PageNumber int          `json:"pageNumber"`
	PageSize   int          `json:"pageSize"`
	TotalPages int          `json:"totalPages"`
	TotalRows  int          `json:"totalRows"`
}
