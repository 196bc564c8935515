package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func at(item uuid.UUID, startOffset time.Duration, status BookingStatus) *Booking {
	start := now.Add(startOffset)
	return ReconstructBooking(uuid.New(), item, uuid.New(), start, start.Add(time.Hour), status, 1, now, now)
}

func TestLastPerItem(t *testing.T) {
	itemA, itemB, itemC := uuid.New(), uuid.New(), uuid.New()

	older := at(itemA, -5*time.Hour, StatusApproved)
	latest := at(itemA, -3*time.Hour, StatusApproved)
	rejected := at(itemA, -time.Hour, StatusRejected)
	futureA := at(itemA, time.Hour, StatusApproved)
	cancelledB := at(itemB, -2*time.Hour, StatusCancelled)
	onlyFutureC := at(itemC, 3*time.Hour, StatusWaiting)

	got := LastPerItem([]*Booking{older, rejected, latest, futureA, cancelledB, onlyFutureC}, now)

	assert.Len(t, got, 2)
	assert.Same(t, latest, got[itemA], "rejected bookings never count")
	assert.Same(t, cancelledB, got[itemB])
	_, ok := got[itemC]
	assert.False(t, ok)
}

func TestNextPerItem(t *testing.T) {
	itemA, itemB := uuid.New(), uuid.New()

	soon := at(itemA, time.Hour, StatusWaiting)
	later := at(itemA, 4*time.Hour, StatusApproved)
	rejectedSooner := at(itemA, 30*time.Minute, StatusRejected)
	startsNow := at(itemB, 0, StatusApproved)
	pastB := at(itemB, -time.Hour, StatusApproved)

	got := NextPerItem([]*Booking{later, rejectedSooner, soon, startsNow, pastB}, now)

	assert.Len(t, got, 1)
	assert.Same(t, soon, got[itemA])
}

func TestPerItem_TiesAreDeterministic(t *testing.T) {
	item := uuid.New()
	a := at(item, -time.Hour, StatusApproved)
	b := ReconstructBooking(uuid.New(), item, uuid.New(), a.Start(), a.End(), StatusApproved, 1, now, now)

	first := LastPerItem([]*Booking{a, b}, now)[item]
	second := LastPerItem([]*Booking{b, a}, now)[item]
	assert.Same(t, first, second)
}

func TestLastPerItem_EndedApprovedBooking(t *testing.T) {
	item := uuid.New()
	b := ReconstructBooking(uuid.New(), item, uuid.New(), now.Add(-3*time.Hour), now.Add(-time.Hour), StatusApproved, 1, now, now)

	assert.Equal(t, b.ID(), LastPerItem([]*Booking{b}, now)[item].ID())
	assert.Empty(t, NextPerItem([]*Booking{b}, now))
}
