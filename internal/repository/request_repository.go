package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shareit/service-rental/internal/domain/page"
	requestDomain "github.com/shareit/service-rental/internal/domain/request"
	"github.com/shareit/service-rental/internal/platform/domain"
)

// RequestModel is the GORM model for the item_requests table.
type RequestModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Description string    `gorm:"size:1000;not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (RequestModel) TableName() string { return "item_requests" }

// GormRequestRepository implements RequestRepository using GORM.
type GormRequestRepository struct {
	db *gorm.DB
}

func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

func (r *GormRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*requestDomain.ItemRequest, error) {
	var model RequestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Request", id.String())
		}
		return nil, fmt.Errorf("failed to find request: %w", err)
	}
	return toRequestDomain(&model), nil
}

func (r *GormRequestRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&RequestModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check request: %w", err)
	}
	return count > 0, nil
}

func (r *GormRequestRepository) FindByRequestor(ctx context.Context, requestorID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	var models []RequestModel
	if err := r.db.WithContext(ctx).
		Where("requestor_id = ?", requestorID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find own requests: %w", err)
	}
	return toRequestDomains(models), nil
}

func (r *GormRequestRepository) FindOthers(ctx context.Context, requestorID uuid.UUID, pg page.Request) ([]*requestDomain.ItemRequest, error) {
	var models []RequestModel
	if err := r.db.WithContext(ctx).
		Where("requestor_id <> ?", requestorID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(pg.Offset()).
		Limit(pg.Limit()).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find other requests: %w", err)
	}
	return toRequestDomains(models), nil
}

func (r *GormRequestRepository) Save(ctx context.Context, req *requestDomain.ItemRequest) error {
	model := &RequestModel{
		ID:          req.ID(),
		RequestorID: req.RequestorID(),
		Description: req.Description(),
		CreatedAt:   req.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

func toRequestDomain(m *RequestModel) *requestDomain.ItemRequest {
	return requestDomain.Reconstruct(m.ID, m.RequestorID, m.Description, m.CreatedAt.UTC())
}

func toRequestDomains(models []RequestModel) []*requestDomain.ItemRequest {
	out := make([]*requestDomain.ItemRequest, len(models))
	for i := range models {
		out[i] = toRequestDomain(&models[i])
	}
	return out
}
