package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
)

// AnalyzeExtrema finds the largest nominal and percentage gains and losses in
// window. Rows without a change are ignored, and rows without a percent change
// are ignored for the percentage extrema. Ties resolve to the earliest row.
//
// It fails with ErrInsufficientData when fewer than two rows carry a change.
func AnalyzeExtrema(window model.Series) (model.ExtremaSet, error) {
	var (
		set               model.ExtremaSet
		changes, percents int
	)

	for _, row := range window {
		if row.Change.Valid {
			if changes == 0 {
				set.MaxIncrease, set.MaxDecrease = row, row
			} else {
				// Strict comparisons keep the first occurrence on ties.
				if row.Change.Decimal.GreaterThan(set.MaxIncrease.Change.Decimal) {
					set.MaxIncrease = row
				}
				if row.Change.Decimal.LessThan(set.MaxDecrease.Change.Decimal) {
					set.MaxDecrease = row
				}
			}
			changes++
		}
		if row.PercentChange.Valid {
			if percents == 0 {
				set.MaxPercentIncrease, set.MaxPercentDecrease = row, row
			} else {
				if row.PercentChange.Decimal.GreaterThan(set.MaxPercentIncrease.PercentChange.Decimal) {
					set.MaxPercentIncrease = row
				}
				if row.PercentChange.Decimal.LessThan(set.MaxPercentDecrease.PercentChange.Decimal) {
					set.MaxPercentDecrease = row
				}
			}
			percents++
		}
	}

	if changes < 2 {
		return model.ExtremaSet{}, fmt.Errorf("%w: %d rows with a change", apperrors.ErrInsufficientData, changes)
	}
	if percents == 0 {
		return model.ExtremaSet{}, fmt.Errorf("%w: no rows with a percent change", apperrors.ErrInsufficientData)
	}
	return set, nil
}

// RoundExtrema rounds every row of set for presentation.
func RoundExtrema(set model.ExtremaSet, places int32) model.ExtremaSet {
	return model.ExtremaSet{
		MaxIncrease:        RoundRow(set.MaxIncrease, places),
		MaxDecrease:        RoundRow(set.MaxDecrease, places),
		MaxPercentIncrease: RoundRow(set.MaxPercentIncrease, places),
		MaxPercentDecrease: RoundRow(set.MaxPercentDecrease, places),
	}
}

// RoundRow returns a copy of row with monetary and percent fields rounded.
func RoundRow(row model.DerivedRow, places int32) model.DerivedRow {
	row.LocalizedPrice = row.LocalizedPrice.Round(places)
	if row.Change.Valid {
		row.Change = decimal.NewNullDecimal(row.Change.Decimal.Round(places))
	}
	if row.PercentChange.Valid {
		row.PercentChange = decimal.NewNullDecimal(row.PercentChange.Decimal.Round(places))
	}
	return row
}
