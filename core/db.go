package core

import (
	"math"
	"strings"
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// AllowedOrderings keeps the orderings whose field is in `fields`; anything else is dropped so
// that client input never reaches an ORDER BY clause unchecked.
func AllowedOrderings(ordering []DBOrdering, fields ...string) []DBOrdering {
	allowed := make([]DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		for _, f := range fields {
			if strings.EqualFold(ord.Field, f) {
				allowed = append(allowed, DBOrdering{Field: f, Ascending: ord.Ascending})
				break
			}
		}
	}
	return allowed
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-based pagination window.
type Page struct {
	Number int `query:"page"`
	Size   int `query:"limit"`
}

// Clean clamps the page to sane values.
func (p *Page) Clean() {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	} else if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	// Offset() must not overflow
	if maxNumber := math.MaxInt / p.Size; p.Number > maxNumber {
		p.Number = maxNumber
	}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Pagination describes a page of results returned to clients.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(p Page, total int) Pagination {
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return Pagination{Page: p.Number, Limit: p.Size, Total: total, TotalPages: pages}
}
