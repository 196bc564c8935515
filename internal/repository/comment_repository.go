package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	itemDomain "github.com/shareit/service-rental/internal/domain/item"
	"github.com/shareit/service-rental/internal/platform/domain"
)

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_comments_author_item,priority:2"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comments_author_item,priority:1"`
	Text      string    `gorm:"size:2000;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (CommentModel) TableName() string { return "comments" }

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Save inserts a comment. A second comment by the same author on the same item
// hits the unique index and is reported as a validation error.
func (r *GormCommentRepository) Save(ctx context.Context, c *itemDomain.Comment) error {
	model := &CommentModel{
		ID:        c.ID(),
		ItemID:    c.ItemID(),
		AuthorID:  c.AuthorID(),
		Text:      c.Text(),
		CreatedAt: c.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewValidationError(itemDomain.ErrCannotComment)
		}
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

func (r *GormCommentRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*itemDomain.Comment, error) {
	var models []CommentModel
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find comments: %w", err)
	}
	return toCommentDomains(models), nil
}

func (r *GormCommentRepository) FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]*itemDomain.Comment, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var models []CommentModel
	if err := r.db.WithContext(ctx).
		Where("item_id IN ?", itemIDs).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find comments by items: %w", err)
	}
	return toCommentDomains(models), nil
}

func (r *GormCommentRepository) ExistsByAuthorAndItem(ctx context.Context, authorID, itemID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&CommentModel{}).
		Where("author_id = ? AND item_id = ?", authorID, itemID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check comment: %w", err)
	}
	return count > 0, nil
}

func toCommentDomains(models []CommentModel) []*itemDomain.Comment {
	comments := make([]*itemDomain.Comment, len(models))
	for i, m := range models {
		comments[i] = itemDomain.ReconstructComment(m.ID, m.ItemID, m.AuthorID, m.Text, m.CreatedAt.UTC())
	}
	return comments
}
