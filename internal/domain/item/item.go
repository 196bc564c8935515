package item

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-rental/internal/platform/domain"
)

// Item is the aggregate root for a listed rentable thing.
type Item struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	requestID   *uuid.UUID
	name        string
	description string
	available   bool
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewItem creates an item owned by ownerID, optionally fulfilling requestID.
func NewItem(ownerID uuid.UUID, name, description string, available bool, requestID *uuid.UUID, now time.Time) (*Item, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name must not be blank")
	}
	if strings.TrimSpace(description) == "" {
		return nil, domain.NewValidationError("description must not be blank")
	}

	now = now.UTC()
	return &Item{
		id:          uuid.New(),
		ownerID:     ownerID,
		requestID:   requestID,
		name:        name,
		description: description,
		available:   available,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an Item from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	requestID *uuid.UUID,
	name, description string,
	available bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Item {
	return &Item{
		id:          id,
		ownerID:     ownerID,
		requestID:   requestID,
		name:        name,
		description: description,
		available:   available,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (i *Item) ID() uuid.UUID         { return i.id }
func (i *Item) OwnerID() uuid.UUID    { return i.ownerID }
func (i *Item) RequestID() *uuid.UUID { return i.requestID }
func (i *Item) Name() string          { return i.name }
func (i *Item) Description() string   { return i.description }
func (i *Item) Available() bool       { return i.available }
func (i *Item) Version() int64        { return i.version }
func (i *Item) CreatedAt() time.Time  { return i.createdAt }
func (i *Item) UpdatedAt() time.Time  { return i.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the item belongs to the given user.
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.ownerID == userID
}

// Patch is a partial update. Nil fields leave the stored value unchanged.
type Patch struct {
	Name        *string
	Description *string
	Available   *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Available == nil
}

// Apply returns a copy of i with the patch merged in and the version bumped.
// i itself is not modified.
func (i *Item) Apply(p Patch, now time.Time) (*Item, error) {
	next := *i
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, domain.NewValidationError("name must not be blank")
		}
		next.name = *p.Name
	}
	if p.Description != nil {
		if strings.TrimSpace(*p.Description) == "" {
			return nil, domain.NewValidationError("description must not be blank")
		}
		next.description = *p.Description
	}
	if p.Available != nil {
		next.available = *p.Available
	}
	next.version++
	next.updatedAt = now.UTC()
	return &next, nil
}

// GroupByRequest buckets items by the request they fulfil. Items without a
// request are skipped.
func GroupByRequest(items []*Item) map[uuid.UUID][]*Item {
	out := make(map[uuid.UUID][]*Item)
	for _, it := range items {
		if it.requestID == nil {
			continue
		}
		out[*it.requestID] = append(out[*it.requestID], it)
	}
	return out
}

// IDs returns the ids of items in order.
func IDs(items []*Item) []uuid.UUID {
	ids := make([]uuid.UUID, len(items))
	for n, it := range items {
		ids[n] = it.id
	}
	return ids
}
