package booking

import "github.com/google/uuid"

// Access rules. Callers turn a false result into NOT_FOUND so that unauthorised
// actors cannot tell a hidden booking from a missing one.

// IsOwner reports whether actor owns the booked item.
func IsOwner(actorID, itemOwnerID uuid.UUID) bool {
	return actorID == itemOwnerID
}

// CanBook reports whether actor may book an item owned by itemOwnerID.
// Owners cannot book their own items.
func CanBook(actorID, itemOwnerID uuid.UUID) bool {
	return actorID != itemOwnerID
}

// CanView reports whether actor may read a booking: only its booker and the item's owner can.
func CanView(actorID, bookerID, itemOwnerID uuid.UUID) bool {
	return actorID == bookerID || actorID == itemOwnerID
}

// CanDecide reports whether actor may approve or reject a booking.
func CanDecide(actorID, itemOwnerID uuid.UUID) bool {
	return IsOwner(actorID, itemOwnerID)
}

// CanCancel reports whether actor may withdraw a booking.
func CanCancel(actorID, bookerID uuid.UUID) bool {
	return actorID == bookerID
}
