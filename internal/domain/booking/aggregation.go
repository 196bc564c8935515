package booking

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// LastPerItem picks, for each item, the non-rejected booking with the greatest
// start strictly before now. Ties on start go to the larger id.
func LastPerItem(bookings []*Booking, now time.Time) map[uuid.UUID]*Booking {
	out := make(map[uuid.UUID]*Booking)
	for _, b := range bookings {
		if b.Status() == StatusRejected || !b.Start().Before(now) {
			continue
		}
		cur, ok := out[b.ItemID()]
		if !ok || b.Start().After(cur.Start()) || (b.Start().Equal(cur.Start()) && idLess(cur.ID(), b.ID())) {
			out[b.ItemID()] = b
		}
	}
	return out
}

// NextPerItem picks, for each item, the non-rejected booking with the smallest
// start strictly after now. Ties on start go to the smaller id.
func NextPerItem(bookings []*Booking, now time.Time) map[uuid.UUID]*Booking {
	out := make(map[uuid.UUID]*Booking)
	for _, b := range bookings {
		if b.Status() == StatusRejected || !b.Start().After(now) {
			continue
		}
		cur, ok := out[b.ItemID()]
		if !ok || b.Start().Before(cur.Start()) || (b.Start().Equal(cur.Start()) && idLess(b.ID(), cur.ID())) {
			out[b.ItemID()] = b
		}
	}
	return out
}

func idLess(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
