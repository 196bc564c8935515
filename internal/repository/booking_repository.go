package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/shareit/service-rental/internal/domain/booking"
	"github.com/shareit/service-rental/internal/platform/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_item_start,priority:1"`
	BookerID  uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_booker_start,priority:1"`
	StartAt   time.Time `gorm:"not null;index:idx_bookings_item_start,priority:2;index:idx_bookings_booker_start,priority:2"`
	EndAt     time.Time `gorm:"not null"`
	Status    string    `gorm:"not null;size:20;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// Find executes a planned listing query: one predicate per window, an optional
// status set, and the perspective's join.
func (r *GormBookingRepository) Find(ctx context.Context, q bookingDomain.Query) ([]*bookingDomain.Booking, error) {
	tx := r.db.WithContext(ctx).Model(&BookingModel{}).Select("bookings.*")

	switch q.Perspective {
	case bookingDomain.AsOwner:
		tx = tx.Joins("JOIN items ON items.id = bookings.item_id").Where("items.owner_id = ?", q.UserID)
	default:
		tx = tx.Where("bookings.booker_id = ?", q.UserID)
	}

	switch q.Window {
	case bookingDomain.WindowCurrent:
		tx = tx.Where("bookings.start_at < ? AND bookings.end_at > ?", q.Now, q.Now)
	case bookingDomain.WindowPast:
		tx = tx.Where("bookings.end_at <= ?", q.Now)
	case bookingDomain.WindowFuture:
		tx = tx.Where("bookings.start_at > ?", q.Now)
	}

	if len(q.Statuses) > 0 {
		tx = tx.Where("bookings.status IN ?", q.StatusStrings())
	}

	if q.Order == bookingDomain.StartAsc {
		tx = tx.Order("bookings.start_at ASC").Order("bookings.id ASC")
	} else {
		tx = tx.Order("bookings.start_at DESC").Order("bookings.id DESC")
	}

	var models []BookingModel
	if err := tx.Offset(q.Page.Offset()).Limit(q.Page.Limit()).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find %s bookings: %w", q.Perspective, err)
	}
	return toDomainBookings(models)
}

// FindLastBookings returns the latest non-rejected booking started before now for each item,
// in a single correlated query.
func (r *GormBookingRepository) FindLastBookings(ctx context.Context, itemIDs []uuid.UUID, now time.Time) ([]*bookingDomain.Booking, error) {
	return r.findEdgeBookings(ctx, itemIDs, now, "MAX", "<")
}

// FindNextBookings returns the earliest non-rejected booking starting after now for each item.
func (r *GormBookingRepository) FindNextBookings(ctx context.Context, itemIDs []uuid.UUID, now time.Time) ([]*bookingDomain.Booking, error) {
	return r.findEdgeBookings(ctx, itemIDs, now, "MIN", ">")
}

func (r *GormBookingRepository) findEdgeBookings(ctx context.Context, itemIDs []uuid.UUID, now time.Time, agg, cmp string) ([]*bookingDomain.Booking, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	rejected := string(bookingDomain.StatusRejected)

	var models []BookingModel
	err := r.db.WithContext(ctx).
		Table("bookings AS b").
		Select("b.*").
		Where("b.item_id IN ?", itemIDs).
		Where("b.status <> ?", rejected).
		Where("b.start_at "+cmp+" ?", now).
		Where("b.start_at = (SELECT "+agg+"(b2.start_at) FROM bookings b2 "+
			"WHERE b2.item_id = b.item_id AND b2.status <> ? AND b2.start_at "+cmp+" ?)", rejected, now).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find %s bookings per item: %w", agg, err)
	}
	return toDomainBookings(models)
}

// ExistsFinished reports whether booker has an approved booking of item that ended before now.
func (r *GormBookingRepository) ExistsFinished(ctx context.Context, bookerID, itemID uuid.UUID, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("booker_id = ? AND item_id = ? AND status = ? AND end_at < ?",
			bookerID, itemID, string(bookingDomain.StatusApproved), now).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return count > 0, nil
}

// CountByStatus returns booking counts grouped by status, for one owner's items when ownerID is set.
func (r *GormBookingRepository) CountByStatus(ctx context.Context, ownerID *uuid.UUID) (map[bookingDomain.BookingStatus]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}

	tx := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("bookings.status AS status, count(*) AS count").
		Group("bookings.status")
	if ownerID != nil {
		tx = tx.Joins("JOIN items ON items.id = bookings.item_id").Where("items.owner_id = ?", *ownerID)
	}

	var results []statusCount
	if err := tx.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[bookingDomain.BookingStatus]int64, len(results))
	for _, sc := range results {
		counts[bookingDomain.BookingStatus(sc.Status)] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// UpdateStatus writes the new status only while the stored row still has status from,
// so of two concurrent decisions exactly one succeeds.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, bk *bookingDomain.Booking, from bookingDomain.BookingStatus) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", bk.ID(), string(from)).
		Updates(map[string]interface{}{
			"status":     string(bk.Status()),
			"version":    bk.Version(),
			"updated_at": bk.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewIllegalStateError(bookingDomain.ErrAlreadyDecided)
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		StartAt:   bk.Start(),
		EndAt:     bk.End(),
		Status:    string(bk.Status()),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.ItemID,
		m.BookerID,
		m.StartAt.UTC(),
		m.EndAt.UTC(),
		status,
		m.Version,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
