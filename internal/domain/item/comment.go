package item

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-rental/internal/platform/domain"
)

// ErrCannotComment is returned when the author has no finished booking of the
// item or has already commented on it.
const ErrCannotComment = "User cannot leave comment"

// Comment is feedback left by a renter after a finished booking.
type Comment struct {
	id        uuid.UUID
	itemID    uuid.UUID
	authorID  uuid.UUID
	text      string
	createdAt time.Time
}

// NewComment creates a comment. Eligibility is checked by the caller against the store.
func NewComment(itemID, authorID uuid.UUID, text string, now time.Time) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("text must not be blank")
	}
	return &Comment{
		id:        uuid.New(),
		itemID:    itemID,
		authorID:  authorID,
		text:      text,
		createdAt: now.UTC(),
	}, nil
}

// ReconstructComment rebuilds a Comment from persistence.
func ReconstructComment(id, itemID, authorID uuid.UUID, text string, createdAt time.Time) *Comment {
	return &Comment{
		id:        id,
		itemID:    itemID,
		authorID:  authorID,
		text:      text,
		createdAt: createdAt,
	}
}

// Getters.
func (c *Comment) ID() uuid.UUID        { return c.id }
func (c *Comment) ItemID() uuid.UUID    { return c.itemID }
func (c *Comment) AuthorID() uuid.UUID  { return c.authorID }
func (c *Comment) Text() string         { return c.text }
func (c *Comment) CreatedAt() time.Time { return c.createdAt }

// GroupCommentsByItem buckets comments by item id, keeping their order.
// Items without comments have no key.
func GroupCommentsByItem(comments []*Comment) map[uuid.UUID][]*Comment {
	out := make(map[uuid.UUID][]*Comment)
	for _, c := range comments {
		out[c.itemID] = append(out[c.itemID], c)
	}
	return out
}
