package request

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-rental/internal/domain/page"
	"github.com/shareit/service-rental/internal/platform/domain"
)

// ItemRequest is a user's description of an item they want someone to list.
type ItemRequest struct {
	id          uuid.UUID
	requestorID uuid.UUID
	description string
	createdAt   time.Time
}

// NewItemRequest creates a request by requestorID.
func NewItemRequest(requestorID uuid.UUID, description string, now time.Time) (*ItemRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, domain.NewValidationError("description must not be blank")
	}
	return &ItemRequest{
		id:          uuid.New(),
		requestorID: requestorID,
		description: description,
		createdAt:   now.UTC(),
	}, nil
}

// Reconstruct rebuilds an ItemRequest from persistence data.
func Reconstruct(id, requestorID uuid.UUID, description string, createdAt time.Time) *ItemRequest {
	return &ItemRequest{id: id, requestorID: requestorID, description: description, createdAt: createdAt}
}

func (r *ItemRequest) ID() uuid.UUID          { return r.id }
func (r *ItemRequest) RequestorID() uuid.UUID { return r.requestorID }
func (r *ItemRequest) Description() string    { return r.description }
func (r *ItemRequest) CreatedAt() time.Time   { return r.createdAt }

// IDs returns the ids of requests in order.
func IDs(requests []*ItemRequest) []uuid.UUID {
	ids := make([]uuid.UUID, len(requests))
	for i, r := range requests {
		ids[i] = r.id
	}
	return ids
}

// RequestRepository defines persistence operations for item requests.
type RequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ItemRequest, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// FindByRequestor lists the user's own requests, newest first.
	FindByRequestor(ctx context.Context, requestorID uuid.UUID) ([]*ItemRequest, error)
	// FindOthers lists everyone else's requests, newest first.
	FindOthers(ctx context.Context, requestorID uuid.UUID, pg page.Request) ([]*ItemRequest, error)
	Save(ctx context.Context, r *ItemRequest) error
}
