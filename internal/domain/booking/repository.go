package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Find executes a planned listing query.
	Find(ctx context.Context, q Query) ([]*Booking, error)

	// FindLastBookings returns, per item, the candidates for the last booking
	// before now (one row per item unless starts tie).
	FindLastBookings(ctx context.Context, itemIDs []uuid.UUID, now time.Time) ([]*Booking, error)

	// FindNextBookings returns, per item, the candidates for the next booking after now.
	FindNextBookings(ctx context.Context, itemIDs []uuid.UUID, now time.Time) ([]*Booking, error)

	// ExistsFinished reports whether booker has an approved booking of item that ended before now.
	ExistsFinished(ctx context.Context, bookerID, itemID uuid.UUID, now time.Time) (bool, error)

	// CountByStatus returns the number of bookings per status, optionally for one owner's items.
	CountByStatus(ctx context.Context, ownerID *uuid.UUID) (map[BookingStatus]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// UpdateStatus persists a status change only if the stored status is still from.
	// A lost race returns an ILLEGAL_STATE error.
	UpdateStatus(ctx context.Context, booking *Booking, from BookingStatus) error
}
