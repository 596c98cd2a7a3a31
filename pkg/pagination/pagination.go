// Package pagination implements deterministic offset-based windowing over an
// ordered result set. Ordering of the input is the caller's responsibility
// and must be stable across calls within one logical request.
package pagination

import (
	"fmt"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
)

// Page is one window of an ordered collection.
type Page[T any] struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
	Results  []T `json:"results"`
}

// Paginate returns the window [start, start+pageSize) of items, truncated at
// the end of the collection. A start at or past the end is
// apperrors.ErrPageOutOfRange, including page 1 over an empty collection.
func Paginate[T any](items []T, page, pageSize int) (*Page[T], error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", apperrors.ErrValidation)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size must be positive", apperrors.ErrValidation)
	}

	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil, apperrors.ErrPageOutOfRange
	}

	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	return &Page[T]{
		Page:     page,
		PageSize: pageSize,
		Total:    len(items),
		Results:  items[start:end],
	}, nil
}
