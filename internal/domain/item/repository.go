package item

import (
	"context"

	"github.com/google/uuid"

	"github.com/shareit/service-rental/internal/domain/page"
)

// ItemRepository defines persistence operations for items.
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Item, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, pg page.Request) ([]*Item, error)
	FindByRequestIDs(ctx context.Context, requestIDs []uuid.UUID) ([]*Item, error)
	// Search matches text case-insensitively against name or description of available items.
	Search(ctx context.Context, text string, pg page.Request) ([]*Item, error)
	Save(ctx context.Context, item *Item) error
	// Update persists item if the stored version is item.Version()-1, else CONFLICT.
	Update(ctx context.Context, item *Item) error
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Save(ctx context.Context, comment *Comment) error
	FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*Comment, error)
	FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]*Comment, error)
	ExistsByAuthorAndItem(ctx context.Context, authorID, itemID uuid.UUID) (bool, error)
}
