package pagination

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPage is returned for a page number below 1 or a non-positive page size.
var ErrInvalidPage = errors.New("invalid page request")

// Page describes a normalised page-number request.
type Page struct {
	Number int
	Size   int
}

// Normalize validates number and size and clamps size to maxSize.
// A maxSize of zero or less disables clamping.
func Normalize(number, size, maxSize int) (Page, error) {
	if number < 1 {
		return Page{}, fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidPage, number)
	}
	if size <= 0 {
		return Page{}, fmt.Errorf("%w: page size must be > 0, got %d", ErrInvalidPage, size)
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return Page{Number: number, Size: size}, nil
}

// Offset is the number of records skipped before this page. It saturates at
// math.MaxInt instead of overflowing, which every store treats as past the end.
func (p Page) Offset() int {
	if p.Size <= 0 || p.Number <= 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// TotalPages is ceiling(total / size); zero when there is nothing to page.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
