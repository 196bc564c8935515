package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-rental/internal/platform/domain"
)

// ErrAlreadyDecided is the message for any transition attempted on a decided booking.
const ErrAlreadyDecided = "Status was already considered"

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id       uuid.UUID
	itemID   uuid.UUID
	bookerID uuid.UUID
	start    time.Time
	end      time.Time
	status   BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a waiting booking of itemID by bookerID for [start, end).
// Instants are normalised to UTC at the microsecond precision the store keeps.
func NewBooking(itemID, bookerID uuid.UUID, start, end, now time.Time) (*Booking, error) {
	if start.IsZero() || end.IsZero() {
		return nil, domain.NewValidationError("start and end time are required")
	}
	start = start.UTC().Truncate(time.Microsecond)
	end = end.UTC().Truncate(time.Microsecond)
	if !end.After(start) {
		return nil, domain.NewValidationError("end time must be after start time")
	}

	now = now.UTC()
	return &Booking{
		id:        uuid.New(),
		itemID:    itemID,
		bookerID:  bookerID,
		start:     start,
		end:       end,
		status:    StatusWaiting,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, itemID, bookerID uuid.UUID,
	start, end time.Time,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		itemID:    itemID,
		bookerID:  bookerID,
		start:     start,
		end:       end,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID         { return b.id }
func (b *Booking) ItemID() uuid.UUID     { return b.itemID }
func (b *Booking) BookerID() uuid.UUID   { return b.bookerID }
func (b *Booking) Start() time.Time      { return b.start }
func (b *Booking) End() time.Time        { return b.end }
func (b *Booking) Status() BookingStatus { return b.status }
func (b *Booking) Version() int64        { return b.version }
func (b *Booking) CreatedAt() time.Time  { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time  { return b.updatedAt }

// --- Behavior ---

// Decide applies the owner's decision: approve moves to APPROVED, otherwise REJECTED.
// It returns the status the booking was in before the call.
func (b *Booking) Decide(approve bool, now time.Time) (BookingStatus, error) {
	target := StatusRejected
	if approve {
		target = StatusApproved
	}
	return b.transition(target, now)
}

// Cancel withdraws a waiting booking on the booker's behalf.
func (b *Booking) Cancel(now time.Time) (BookingStatus, error) {
	return b.transition(StatusCancelled, now)
}

func (b *Booking) transition(target BookingStatus, now time.Time) (BookingStatus, error) {
	from := b.status
	if !from.CanTransitionTo(target) {
		return from, domain.NewIllegalStateError(ErrAlreadyDecided)
	}
	b.status = target
	b.version++
	b.updatedAt = now.UTC()
	return from, nil
}

// HasEnded reports whether the booking finished strictly before now.
func (b *Booking) HasEnded(now time.Time) bool {
	return b.end.Before(now)
}
