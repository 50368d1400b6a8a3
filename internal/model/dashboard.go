package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Chart is the full derived series projected for plotting.
type Chart struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// ChartData is the machine-readable projection of the analyzed window.
type ChartData struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

// Dashboard is the view consumed by the rendering layer.
// Monetary values are rounded to two decimals; the *Display fields carry the
// same amounts formatted for the local currency.
type Dashboard struct {
	LatestPricePerOunce       decimal.Decimal `json:"latestPricePerOunce"`
	LatestPricePerGramForeign decimal.Decimal `json:"latestPricePerGramForeign"`
	LatestPricePerGramLocal   decimal.Decimal `json:"latestPricePerGramLocal"`
	LatestPricePerGramDisplay string          `json:"latestPricePerGramDisplay"`
	ExchangeRate              decimal.Decimal `json:"exchangeRate"`
	UpdateTime                time.Time       `json:"updateTime"`
	Stale                     bool            `json:"stale"`
	Chart                     Chart           `json:"chart"`
	Extrema                   ExtremaSet      `json:"extrema"`
	MarketStatus              Status          `json:"marketStatus"`
	MarketStatusColor         string          `json:"marketStatusColor"`
	MarketTrend               string          `json:"marketTrend"`
	Page                      Page            `json:"page"`
}
