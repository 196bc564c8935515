package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-rental/internal/domain/booking"
	itemDomain "github.com/shareit/service-rental/internal/domain/item"
	"github.com/shareit/service-rental/internal/domain/page"
	requestDomain "github.com/shareit/service-rental/internal/domain/request"
	userDomain "github.com/shareit/service-rental/internal/domain/user"
	"github.com/shareit/service-rental/internal/platform/domain"
	"github.com/shareit/service-rental/internal/platform/kafka"
)

// CreateItemRequest is the request DTO for listing an item.
type CreateItemRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Available   *bool      `json:"available"`
	RequestID   *uuid.UUID `json:"request_id"`
}

// UpdateItemRequest is a partial update. Omitted fields keep their value.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// CreateCommentRequest is the request DTO for commenting on an item.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// ItemBookingDTO is the booking summary attached to an item for its owner.
type ItemBookingDTO struct {
	ID       uuid.UUID `json:"id"`
	BookerID uuid.UUID `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// CommentDTO is the API response representation of a comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	Created    time.Time `json:"created"`
}

// ItemDTO is the API response representation of an item.
// Comments is null when the item has none in list responses.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Available   bool            `json:"available"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	RequestID   *uuid.UUID      `json:"request_id,omitempty"`
	LastBooking *ItemBookingDTO `json:"last_booking,omitempty"`
	NextBooking *ItemBookingDTO `json:"next_booking,omitempty"`
	Comments    []CommentDTO    `json:"comments"`
}

// ItemService implements item listing, search and comment use cases.
type ItemService struct {
	items     itemDomain.ItemRepository
	comments  itemDomain.CommentRepository
	bookings  bookingDomain.BookingRepository
	users     userDomain.UserRepository
	requests  requestDomain.RequestRepository
	publisher kafka.Publisher
	clock     Clock
	logger    *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(
	items itemDomain.ItemRepository,
	comments itemDomain.CommentRepository,
	bookings bookingDomain.BookingRepository,
	users userDomain.UserRepository,
	requests requestDomain.RequestRepository,
	publisher kafka.Publisher,
	clock Clock,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		items:     items,
		comments:  comments,
		bookings:  bookings,
		users:     users,
		requests:  requests,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// AddItem lists a new item owned by ownerID.
func (s *ItemService) AddItem(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	if req.Available == nil {
		return nil, domain.NewValidationError("available is required")
	}
	it, err := itemDomain.NewItem(ownerID, req.Name, req.Description, *req.Available, req.RequestID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	if req.RequestID != nil {
		ok, err := s.requests.Exists(ctx, *req.RequestID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.NewNotFoundError("Request", req.RequestID.String())
		}
	}

	if err := s.items.Save(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Info("item listed",
		zap.String("item_id", it.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	dto := toItemDTO(it)
	return &dto, nil
}

// UpdateItem merges the non-nil fields of req into an item the actor owns.
func (s *ItemService) UpdateItem(ctx context.Context, itemID, actorID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	if err := requireUser(ctx, s.users, actorID); err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !it.IsOwnedBy(actorID) {
		return nil, domain.NewForbiddenError("only the owner can edit item " + itemID.String())
	}

	patch := itemDomain.Patch{Name: req.Name, Description: req.Description, Available: req.Available}
	if patch.IsEmpty() {
		dto := toItemDTO(it)
		return &dto, nil
	}

	updated, err := it.Apply(patch, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, updated); err != nil {
		return nil, err
	}

	dto := toItemDTO(updated)
	return &dto, nil
}

// GetItemByID returns an item with its comments. The owner also sees the
// last and next bookings.
func (s *ItemService) GetItemByID(ctx context.Context, itemID, actorID uuid.UUID) (*ItemDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	dto := toItemDTO(it)

	if bookingDomain.IsOwner(actorID, it.OwnerID()) {
		ids := []uuid.UUID{it.ID()}
		if err := s.attachBookings(ctx, ids, map[uuid.UUID]*ItemDTO{it.ID(): &dto}); err != nil {
			return nil, err
		}
	}

	comments, err := s.comments.FindByItemID(ctx, it.ID())
	if err != nil {
		return nil, err
	}
	names, err := s.authorNames(ctx, comments)
	if err != nil {
		return nil, err
	}
	dto.Comments = make([]CommentDTO, 0, len(comments))
	for _, c := range comments {
		dto.Comments = append(dto.Comments, toCommentDTO(c, names))
	}
	return &dto, nil
}

// GetItems returns one page of the owner's items with bookings and comments
// attached through one query per kind.
func (s *ItemService) GetItems(ctx context.Context, ownerID uuid.UUID, from, size int) ([]ItemDTO, error) {
	pg, err := page.NewRequest(from, size)
	if err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}

	items, err := s.items.FindByOwnerID(ctx, ownerID, pg)
	if err != nil {
		return nil, err
	}
	dtos := make([]ItemDTO, len(items))
	if len(items) == 0 {
		return dtos, nil
	}

	byID := make(map[uuid.UUID]*ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
		byID[it.ID()] = &dtos[i]
	}

	ids := itemDomain.IDs(items)
	if err := s.attachBookings(ctx, ids, byID); err != nil {
		return nil, err
	}

	comments, err := s.comments.FindByItemIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names, err := s.authorNames(ctx, comments)
	if err != nil {
		return nil, err
	}
	for itemID, group := range itemDomain.GroupCommentsByItem(comments) {
		dto, ok := byID[itemID]
		if !ok {
			continue
		}
		for _, c := range group {
			dto.Comments = append(dto.Comments, toCommentDTO(c, names))
		}
	}
	return dtos, nil
}

// SearchItems finds available items whose name or description contains text.
func (s *ItemService) SearchItems(ctx context.Context, text string, from, size int) ([]ItemDTO, error) {
	pg, err := page.NewRequest(from, size)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return []ItemDTO{}, nil
	}

	items, err := s.items.Search(ctx, text, pg)
	if err != nil {
		return nil, err
	}
	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
	}
	return dtos, nil
}

// AddComment lets a user who has completed a booking of the item comment on it once.
func (s *ItemService) AddComment(ctx context.Context, itemID, authorID uuid.UUID, req CreateCommentRequest) (*CommentDTO, error) {
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c, err := itemDomain.NewComment(itemID, authorID, req.Text, now)
	if err != nil {
		return nil, err
	}

	finished, err := s.bookings.ExistsFinished(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, domain.NewValidationError(itemDomain.ErrCannotComment)
	}
	commented, err := s.comments.ExistsByAuthorAndItem(ctx, authorID, itemID)
	if err != nil {
		return nil, err
	}
	if commented {
		return nil, domain.NewValidationError(itemDomain.ErrCannotComment)
	}

	if err := s.comments.Save(ctx, c); err != nil {
		return nil, err
	}

	evt := CommentAddedEvent{CommentID: c.ID(), ItemID: itemID, AuthorID: authorID, OccurredAt: now}
	publishEvent(ctx, s.publisher, s.logger, TopicBookingEvents, EventCommentAdded, itemID.String(), evt)

	dto := toCommentDTO(c, map[uuid.UUID]string{authorID: author.Name()})
	return &dto, nil
}

// --- Helpers ---

// attachBookings sets last/next booking on every dto in byID.
func (s *ItemService) attachBookings(ctx context.Context, ids []uuid.UUID, byID map[uuid.UUID]*ItemDTO) error {
	now := s.clock.Now()

	lastCandidates, err := s.bookings.FindLastBookings(ctx, ids, now)
	if err != nil {
		return fmt.Errorf("failed to load last bookings: %w", err)
	}
	nextCandidates, err := s.bookings.FindNextBookings(ctx, ids, now)
	if err != nil {
		return fmt.Errorf("failed to load next bookings: %w", err)
	}

	for itemID, bk := range bookingDomain.LastPerItem(lastCandidates, now) {
		if dto, ok := byID[itemID]; ok {
			dto.LastBooking = toItemBookingDTO(bk)
		}
	}
	for itemID, bk := range bookingDomain.NextPerItem(nextCandidates, now) {
		if dto, ok := byID[itemID]; ok {
			dto.NextBooking = toItemBookingDTO(bk)
		}
	}
	return nil
}

// authorNames resolves the author names of comments with one query.
func (s *ItemService) authorNames(ctx context.Context, comments []*itemDomain.Comment) (map[uuid.UUID]string, error) {
	if len(comments) == 0 {
		return nil, nil
	}

	authorIDs := make([]uuid.UUID, 0, len(comments))
	seen := make(map[uuid.UUID]struct{}, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.AuthorID()]; !ok {
			seen[c.AuthorID()] = struct{}{}
			authorIDs = append(authorIDs, c.AuthorID())
		}
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(authors))
	for _, u := range authors {
		names[u.ID()] = u.Name()
	}
	return names, nil
}

func toCommentDTO(c *itemDomain.Comment, names map[uuid.UUID]string) CommentDTO {
	return CommentDTO{ID: c.ID(), Text: c.Text(), AuthorName: names[c.AuthorID()], Created: c.CreatedAt()}
}

func toItemDTO(it *itemDomain.Item) ItemDTO {
	return ItemDTO{
		ID:          it.ID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		OwnerID:     it.OwnerID(),
		RequestID:   it.RequestID(),
	}
}

func toItemBookingDTO(bk *bookingDomain.Booking) *ItemBookingDTO {
	return &ItemBookingDTO{ID: bk.ID(), BookerID: bk.BookerID(), Start: bk.Start(), End: bk.End()}
}
