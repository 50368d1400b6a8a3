package service

import (
	"fmt"
	"slices"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
)

// Paginate sorts window newest first and returns the requested page.
//
// TotalPages is ceil(len(window) / pageSize) and zero for an empty window. A
// page past the end yields an empty Rows slice rather than an error. Page
// numbers and sizes below one are rejected with ErrInvalidPage and
// ErrInvalidPageSize. Rows are returned unrounded; see RoundPage.
func Paginate(window model.Series, pageNumber, pageSize int) (model.Page, error) {
	if pageSize < 1 {
		return model.Page{}, fmt.Errorf("%w: %d", apperrors.ErrInvalidPageSize, pageSize)
	}
	if pageNumber < 1 {
		return model.Page{}, fmt.Errorf("%w: %d", apperrors.ErrInvalidPage, pageNumber)
	}

	sorted := slices.Clone(window)
	slices.SortStableFunc(sorted, func(a, b model.DerivedRow) int {
		return b.Date.Compare(a.Date)
	})

	total := len(sorted)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	rows := []model.DerivedRow{}
	if pageNumber <= totalPages {
		start := (pageNumber - 1) * pageSize
		end := min(start+pageSize, total)
		rows = append(rows, sorted[start:end]...)
	}

	return model.Page{
		Rows:       rows,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalRows:  total,
	}, nil
}

// RoundPage returns a copy of page with every row rounded for presentation.
func RoundPage(page model.Page, places int32) model.Page {
	rows := make([]model.DerivedRow, len(page.Rows))
	for i, row := range page.Rows {
		rows[i] = RoundRow(row, places)
	}
	page.Rows = rows
	return page
}
