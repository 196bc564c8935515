package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-rental/internal/domain/page"
	"github.com/shareit/service-rental/internal/platform/domain"
)

// FilterState selects which of a user's bookings to list.
type FilterState string

const (
	FilterAll      FilterState = "ALL"
	FilterCurrent  FilterState = "CURRENT"
	FilterPast     FilterState = "PAST"
	FilterFuture   FilterState = "FUTURE"
	FilterWaiting  FilterState = "WAITING"
	FilterRejected FilterState = "REJECTED"
)

var filterStates = map[FilterState]struct{}{
	FilterAll: {}, FilterCurrent: {}, FilterPast: {},
	FilterFuture: {}, FilterWaiting: {}, FilterRejected: {},
}

// ParseFilterState accepts the six state names. An empty string means ALL.
func ParseFilterState(s string) (FilterState, error) {
	if s == "" {
		return FilterAll, nil
	}
	state := FilterState(s)
	if _, ok := filterStates[state]; !ok {
		return "", domain.NewIllegalArgumentError("Unknown state: " + s)
	}
	return state, nil
}

// Perspective says whose bookings are listed.
type Perspective int

const (
	// AsBooker lists bookings the user placed.
	AsBooker Perspective = iota
	// AsOwner lists bookings of items the user owns.
	AsOwner
)

func (p Perspective) String() string {
	if p == AsOwner {
		return "owner"
	}
	return "booker"
}

// Window is the time predicate of a query relative to Query.Now.
type Window int

const (
	WindowAny     Window = iota
	WindowCurrent        // start < now AND end > now
	WindowPast           // end <= now
	WindowFuture         // start > now
)

// SortOrder is the ordering on the booking start instant.
type SortOrder int

const (
	StartDesc SortOrder = iota
	StartAsc
)

// Query is a fully planned booking listing. It holds no store-specific types.
type Query struct {
	Perspective Perspective
	UserID      uuid.UUID
	Window      Window
	Now         time.Time
	Statuses    []BookingStatus
	Order       SortOrder
	Page        page.Request
}

// Plan maps a filter state to the one query shape that answers it.
func Plan(perspective Perspective, state FilterState, userID uuid.UUID, now time.Time, pg page.Request) Query {
	q := Query{
		Perspective: perspective,
		UserID:      userID,
		Now:         now.UTC(),
		Order:       StartDesc,
		Page:        pg,
	}

	switch state {
	case FilterCurrent:
		q.Window = WindowCurrent
		q.Order = StartAsc
	case FilterPast:
		q.Window = WindowPast
	case FilterFuture:
		q.Window = WindowFuture
	case FilterWaiting:
		q.Statuses = []BookingStatus{StatusWaiting}
	case FilterRejected:
		q.Statuses = []BookingStatus{StatusRejected, StatusCancelled}
	}
	return q
}

// Matches evaluates the query predicate against a single booking in memory.
func (q Query) Matches(b *Booking, itemOwnerID uuid.UUID) bool {
	switch q.Perspective {
	case AsBooker:
		if b.BookerID() != q.UserID {
			return false
		}
	case AsOwner:
		if itemOwnerID != q.UserID {
			return false
		}
	}

	switch q.Window {
	case WindowCurrent:
		if !(b.Start().Before(q.Now) && b.End().After(q.Now)) {
			return false
		}
	case WindowPast:
		if b.End().After(q.Now) {
			return false
		}
	case WindowFuture:
		if !b.Start().After(q.Now) {
			return false
		}
	}

	if len(q.Statuses) == 0 {
		return true
	}
	for _, s := range q.Statuses {
		if b.Status() == s {
			return true
		}
	}
	return false
}

// StatusStrings returns the status filter as plain strings for a store query.
func (q Query) StatusStrings() []string {
	out := make([]string, len(q.Statuses))
	for i, s := range q.Statuses {
		out[i] = string(s)
	}
	return out
}
