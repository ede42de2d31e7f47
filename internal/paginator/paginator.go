// Package paginator splits ordered record sets into numbered pages.
//
// Page numbers are 1-based. Requests outside the valid range are clamped to
// the nearest valid page instead of failing, and an empty set still has one
// (empty) page.
package paginator

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// DefaultPerPage is used when a caller passes a non-positive page size.
const DefaultPerPage = 10

type Page[T any] struct {
	Items    []T
	Number   int
	PerPage  int
	Count    int64
	NumPages int
}

func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page[T]) NextPageNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p *Page[T]) PreviousPageNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// PageRange lists every page number, for rendering page links.
func (p *Page[T]) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

// StartIndex is the 1-based position of the first item on the page, 0 if empty.
func (p *Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return offset(p.Number, p.PerPage) + 1
}

// EndIndex is the 1-based position of the last item on the page.
func (p *Page[T]) EndIndex() int {
	return offset(p.Number, p.PerPage) + len(p.Items)
}

func (p *Page[T]) Len() int {
	return len(p.Items)
}

// ParseNumber reads a page query parameter. Anything that is not an integer
// means the first page.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}

func NumPages(count int64, perPage int) int {
	perPage = normalize(perPage)
	if count <= 0 {
		return 1
	}
	return int((count + int64(perPage) - 1) / int64(perPage))
}

func Clamp(number, numPages int) int {
	if number < 1 {
		return 1
	}
	if number > numPages {
		return numPages
	}
	return number
}

// Slice paginates an already ordered in-memory sequence.
func Slice[T any](items []T, perPage, number int) *Page[T] {
	perPage = normalize(perPage)
	count := int64(len(items))
	numPages := NumPages(count, perPage)
	number = Clamp(number, numPages)

	start := offset(number, perPage)
	end := start + perPage
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return &Page[T]{
		Items:    items[start:end],
		Number:   number,
		PerPage:  perPage,
		Count:    count,
		NumPages: numPages,
	}
}

// Query counts q, clamps number against the result and loads that page.
// q must carry the model and filters; ordering and preloads go in scopes so
// they do not reach the COUNT statement.
func Query[T any](ctx context.Context, q *gorm.DB, perPage, number int, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	perPage = normalize(perPage)
	base := q.WithContext(ctx).Session(&gorm.Session{})

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return nil, err
	}

	numPages := NumPages(count, perPage)
	number = Clamp(number, numPages)

	items := make([]T, 0, perPage)
	if count > 0 {
		err := base.Scopes(scopes...).
			Offset(offset(number, perPage)).
			Limit(perPage).
			Find(&items).Error
		if err != nil {
			return nil, err
		}
	}

	return &Page[T]{
		Items:    items,
		Number:   number,
		PerPage:  perPage,
		Count:    count,
		NumPages: numPages,
	}, nil
}

func offset(number, perPage int) int {
	return (number - 1) * perPage
}

func normalize(perPage int) int {
	if perPage < 1 {
		return DefaultPerPage
	}
	return perPage
}
