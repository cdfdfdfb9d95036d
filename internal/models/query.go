package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// QueryFilter is built per request. Nil fields are not applied.
type QueryFilter struct {
	Type      *string          `json:"type,omitempty"`
	Date      *time.Time       `json:"date,omitempty"`
	StartDate *time.Time       `json:"startDate,omitempty"`
	EndDate   *time.Time       `json:"endDate,omitempty"`
	MinAmount *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount *decimal.Decimal `json:"maxAmount,omitempty"`
	FreeText  *string          `json:"q,omitempty"`
}

// Page is a clamped page/limit pair.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps page to [1, MaxInt/limit] and limit to [1, MaxPageLimit].
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	// Offset must stay representable.
	if number > math.MaxInt/limit {
		number = math.MaxInt / limit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int { return (p.Number - 1) * p.Limit }

type PageResult struct {
	Data          []StoredTransaction `json:"data"`
	TotalRecords  int64               `json:"totalRecords"`
	CurrentPage   int                 `json:"currentPage"`
	TotalPages    int                 `json:"totalPages"`
	HasNextPage   bool                `json:"hasNextPage"`
	HasPrevPage   bool                `json:"hasPrevPage"`
	Incomplete    bool                `json:"incomplete,omitempty"`
	SkippedTables []string            `json:"skippedTables,omitempty"`
}

// NewPageResult fills the pagination block from the total record count.
func NewPageResult(data []StoredTransaction, total int64, p Page) PageResult {
	if data == nil {
		data = []StoredTransaction{}
	}
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return PageResult{
		Data:         data,
		TotalRecords: total,
		CurrentPage:  p.Number,
		TotalPages:   totalPages,
		HasNextPage:  p.Number < totalPages,
		HasPrevPage:  p.Number > 1,
	}
}
