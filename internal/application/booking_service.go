package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-rental/internal/domain/booking"
	itemDomain "github.com/shareit/service-rental/internal/domain/item"
	"github.com/shareit/service-rental/internal/domain/page"
	userDomain "github.com/shareit/service-rental/internal/domain/user"
	"github.com/shareit/service-rental/internal/platform/domain"
	"github.com/shareit/service-rental/internal/platform/kafka"
	"github.com/shareit/service-rental/internal/platform/metrics"
)

// CreateBookingRequest holds the data needed to request a booking.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// ItemShortDTO identifies the booked item.
type ItemShortDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID     uuid.UUID    `json:"id"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Status string       `json:"status"`
	Booker UserDTO      `json:"booker"`
	Item   ItemShortDTO `json:"item"`
}

// BookingStatsDTO holds booking counts for the items of one owner.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookings  bookingDomain.BookingRepository
	items     itemDomain.ItemRepository
	users     userDomain.UserRepository
	publisher kafka.Publisher
	recorder  metrics.Recorder
	clock     Clock
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	publisher kafka.Publisher,
	recorder metrics.Recorder,
	clock Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		items:     items,
		users:     users,
		publisher: publisher,
		recorder:  recorder,
		clock:     clock,
		logger:    logger,
	}
}

// AddBooking places a waiting booking of an item by requesterID.
func (s *BookingService) AddBooking(ctx context.Context, requesterID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	now := s.clock.Now()

	bk, err := bookingDomain.NewBooking(req.ItemID, requesterID, req.Start, req.End, now)
	if err != nil {
		return nil, err
	}

	booker, err := s.users.FindByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !it.Available() {
		return nil, domain.NewUnavailableError("Item not available for booking")
	}
	if !bookingDomain.CanBook(requesterID, it.OwnerID()) {
		return nil, domain.NewNotFoundMessage("Owner cannot book own item " + it.ID().String())
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.recorder.BookingTransition(string(bk.Status()))
	s.publishBookingEvent(ctx, EventBookingRequested, bk, it.OwnerID(), now)
	s.logger.Info("booking requested",
		zap.String("booking_id", bk.ID().String()),
		zap.String("item_id", it.ID().String()),
		zap.String("booker_id", requesterID.String()),
	)

	result := toBookingDTO(bk, booker, it)
	return &result, nil
}

// FinalizeBookingStatus applies the item owner's approve/reject decision.
func (s *BookingService) FinalizeBookingStatus(ctx context.Context, bookingID, actorID uuid.UUID, approve bool) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, actorID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	from, err := bk.Decide(approve, now)
	if err != nil {
		return nil, err
	}

	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}
	if !bookingDomain.CanDecide(actorID, it.OwnerID()) {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}

	if err := s.bookings.UpdateStatus(ctx, bk, from); err != nil {
		return nil, err
	}

	eventType := EventBookingRejected
	if approve {
		eventType = EventBookingApproved
	}
	s.recorder.BookingTransition(string(bk.Status()))
	s.publishBookingEvent(ctx, eventType, bk, it.OwnerID(), now)
	s.logger.Info("booking decided",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", string(bk.Status())),
	)

	booker, err := s.users.FindByID(ctx, bk.BookerID())
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk, booker, it)
	return &result, nil
}

// CancelBooking withdraws a waiting booking on behalf of its booker.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, bookerID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bookingDomain.CanCancel(bookerID, bk.BookerID()) {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}

	now := s.clock.Now()
	from, err := bk.Cancel(now)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateStatus(ctx, bk, from); err != nil {
		return nil, err
	}

	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}
	s.recorder.BookingTransition(string(bk.Status()))
	s.publishBookingEvent(ctx, EventBookingCancelled, bk, it.OwnerID(), now)
	s.logger.Info("booking cancelled", zap.String("booking_id", bk.ID().String()))

	booker, err := s.users.FindByID(ctx, bk.BookerID())
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk, booker, it)
	return &result, nil
}

// GetBookingByID returns a booking to its booker or to the item owner.
func (s *BookingService) GetBookingByID(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	if err := requireUser(ctx, s.users, actorID); err != nil {
		return nil, err
	}
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}
	if !bookingDomain.CanView(actorID, bk.BookerID(), it.OwnerID()) {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}

	booker, err := s.users.FindByID(ctx, bk.BookerID())
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk, booker, it)
	return &result, nil
}

// GetBookings lists a user's bookings as booker or as item owner, filtered by state.
func (s *BookingService) GetBookings(
	ctx context.Context,
	userID uuid.UUID,
	perspective bookingDomain.Perspective,
	state string,
	from, size int,
) ([]BookingDTO, error) {
	filter, err := bookingDomain.ParseFilterState(state)
	if err != nil {
		return nil, err
	}
	pg, err := page.NewRequest(from, size)
	if err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	q := bookingDomain.Plan(perspective, filter, userID, s.clock.Now(), pg)
	bookings, err := s.bookings.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.toBookingDTOs(ctx, bookings)
}

// GetOwnerStats counts the bookings of the owner's items by status.
func (s *BookingService) GetOwnerStats(ctx context.Context, ownerID uuid.UUID) (*BookingStatsDTO, error) {
	if err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	counts, err := s.bookings.CountByStatus(ctx, &ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	stats := &BookingStatsDTO{ByStatus: make(map[string]int64, len(counts))}
	for status, c := range counts {
		stats.ByStatus[string(status)] = c
		stats.TotalBookings += c
	}
	return stats, nil
}

// --- Helpers ---

// toBookingDTOs loads the items and bookers of all bookings with one query each.
func (s *BookingService) toBookingDTOs(ctx context.Context, bookings []*bookingDomain.Booking) ([]BookingDTO, error) {
	dtos := make([]BookingDTO, 0, len(bookings))
	if len(bookings) == 0 {
		return dtos, nil
	}

	itemIDs := make([]uuid.UUID, 0, len(bookings))
	bookerIDs := make([]uuid.UUID, 0, len(bookings))
	seen := make(map[uuid.UUID]struct{}, 2*len(bookings))
	for _, bk := range bookings {
		if _, ok := seen[bk.ItemID()]; !ok {
			seen[bk.ItemID()] = struct{}{}
			itemIDs = append(itemIDs, bk.ItemID())
		}
		if _, ok := seen[bk.BookerID()]; !ok {
			seen[bk.BookerID()] = struct{}{}
			bookerIDs = append(bookerIDs, bk.BookerID())
		}
	}

	items, err := s.items.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, bookerIDs)
	if err != nil {
		return nil, err
	}

	itemsByID := make(map[uuid.UUID]*itemDomain.Item, len(items))
	for _, it := range items {
		itemsByID[it.ID()] = it
	}
	usersByID := make(map[uuid.UUID]*userDomain.User, len(users))
	for _, u := range users {
		usersByID[u.ID()] = u
	}

	for _, bk := range bookings {
		it, ok := itemsByID[bk.ItemID()]
		if !ok {
			return nil, domain.NewNotFoundError("Item", bk.ItemID().String())
		}
		booker, ok := usersByID[bk.BookerID()]
		if !ok {
			return nil, domain.NewNotFoundError("User", bk.BookerID().String())
		}
		dtos = append(dtos, toBookingDTO(bk, booker, it))
	}
	return dtos, nil
}

func toBookingDTO(bk *bookingDomain.Booking, booker *userDomain.User, it *itemDomain.Item) BookingDTO {
	return BookingDTO{
		ID:     bk.ID(),
		Start:  bk.Start(),
		End:    bk.End(),
		Status: string(bk.Status()),
		Booker: toUserDTO(booker),
		Item:   ItemShortDTO{ID: it.ID(), Name: it.Name()},
	}
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking, ownerID uuid.UUID, now time.Time) {
	evt := BookingEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.ItemID(),
		BookerID:   bk.BookerID(),
		OwnerID:    ownerID,
		Status:     string(bk.Status()),
		Start:      bk.Start(),
		End:        bk.End(),
		OccurredAt: now,
	}
	publishEvent(ctx, s.publisher, s.logger, TopicBookingEvents, eventType, bk.ID().String(), evt)
}
