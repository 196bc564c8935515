// Package page translates offset/limit requests into page-index/page-size requests.
//
// The page index is From / Size with integer division, and the store skips
// Index*Size rows. An offset that is not a multiple of the size is rounded down
// to the start of its page: from=5,size=10 returns rows 0..9, not 5..14.
package page

import (
	"fmt"

	"github.com/shareit/service-rental/internal/platform/domain"
)

const (
	DefaultFrom = 0
	DefaultSize = 10
)

// Request is a validated offset/limit pair.
type Request struct {
	From int
	Size int
}

// NewRequest validates from >= 0 and size >= 1.
func NewRequest(from, size int) (Request, error) {
	if from < 0 {
		return Request{}, domain.NewValidationError(fmt.Sprintf("from must not be negative, got %d", from))
	}
	if size < 1 {
		return Request{}, domain.NewValidationError(fmt.Sprintf("size must be positive, got %d", size))
	}
	return Request{From: from, Size: size}, nil
}

// Default returns the first page of DefaultSize rows.
func Default() Request {
	return Request{From: DefaultFrom, Size: DefaultSize}
}

// Index returns the zero-based page index.
func (r Request) Index() int {
	if r.Size <= 0 {
		return 0
	}
	return r.From / r.Size
}

// Offset returns the number of rows the store skips.
func (r Request) Offset() int {
	return r.Index() * r.Size
}

// Limit returns the page size.
func (r Request) Limit() int {
	return r.Size
}
