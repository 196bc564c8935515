package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	itemDomain "github.com/shareit/service-rental/internal/domain/item"
	"github.com/shareit/service-rental/internal/domain/page"
	requestDomain "github.com/shareit/service-rental/internal/domain/request"
	userDomain "github.com/shareit/service-rental/internal/domain/user"
)

// CreateRequestRequest is the request DTO for asking for an item.
type CreateRequestRequest struct {
	Description string `json:"description"`
}

// RequestItemDTO is an item listed in answer to a request.
type RequestItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	OwnerID     uuid.UUID `json:"owner_id"`
	RequestID   uuid.UUID `json:"request_id"`
}

// ItemRequestDTO is the API response representation of an item request.
type ItemRequestDTO struct {
	ID          uuid.UUID        `json:"id"`
	Description string           `json:"description"`
	Created     time.Time        `json:"created"`
	Items       []RequestItemDTO `json:"items"`
}

// RequestService implements item request use cases.
type RequestService struct {
	requests requestDomain.RequestRepository
	items    itemDomain.ItemRepository
	users    userDomain.UserRepository
	clock    Clock
	logger   *zap.Logger
}

// NewRequestService creates a new RequestService.
func NewRequestService(
	requests requestDomain.RequestRepository,
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	clock Clock,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{requests: requests, items: items, users: users, clock: clock, logger: logger}
}

// AddRequest records that userID is looking for an item.
func (s *RequestService) AddRequest(ctx context.Context, userID uuid.UUID, req CreateRequestRequest) (*ItemRequestDTO, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	r, err := requestDomain.NewItemRequest(userID, req.Description, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("item request created", zap.String("request_id", r.ID().String()))
	return &ItemRequestDTO{ID: r.ID(), Description: r.Description(), Created: r.CreatedAt(), Items: []RequestItemDTO{}}, nil
}

// GetUserRequests lists the user's own requests, newest first.
func (s *RequestService) GetUserRequests(ctx context.Context, userID uuid.UUID) ([]ItemRequestDTO, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	requests, err := s.requests.FindByRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.rollUp(ctx, requests)
}

// GetAllRequests lists one page of other users' requests, newest first.
func (s *RequestService) GetAllRequests(ctx context.Context, userID uuid.UUID, from, size int) ([]ItemRequestDTO, error) {
	pg, err := page.NewRequest(from, size)
	if err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	requests, err := s.requests.FindOthers(ctx, userID, pg)
	if err != nil {
		return nil, err
	}
	return s.rollUp(ctx, requests)
}

// GetRequest returns one request with the items listed for it.
func (s *RequestService) GetRequest(ctx context.Context, userID, requestID uuid.UUID) (*ItemRequestDTO, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	dtos, err := s.rollUp(ctx, []*requestDomain.ItemRequest{r})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// rollUp attaches the items answering each request using a single item query.
func (s *RequestService) rollUp(ctx context.Context, requests []*requestDomain.ItemRequest) ([]ItemRequestDTO, error) {
	dtos := make([]ItemRequestDTO, len(requests))
	if len(requests) == 0 {
		return dtos, nil
	}

	items, err := s.items.FindByRequestIDs(ctx, requestDomain.IDs(requests))
	if err != nil {
		return nil, err
	}
	grouped := itemDomain.GroupByRequest(items)

	for i, r := range requests {
		group := grouped[r.ID()]
		answers := make([]RequestItemDTO, len(group))
		for n, it := range group {
			answers[n] = RequestItemDTO{
				ID:          it.ID(),
				Name:        it.Name(),
				Description: it.Description(),
				Available:   it.Available(),
				OwnerID:     it.OwnerID(),
				RequestID:   r.ID(),
			}
		}
		dtos[i] = ItemRequestDTO{ID: r.ID(), Description: r.Description(), Created: r.CreatedAt(), Items: answers}
	}
	return dtos, nil
}
