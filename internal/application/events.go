package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit/service-rental/internal/platform/kafka"
)

const eventSource = "service-rental"

// Topics.
const (
	TopicBookingEvents   = "rental.booking.events"
	TopicBookingCommands = "rental.booking.commands"
)

// Event types.
const (
	EventBookingRequested       = "booking.requested"
	EventBookingApproved        = "booking.approved"
	EventBookingRejected        = "booking.rejected"
	EventBookingCancelled       = "booking.cancelled"
	EventCommentAdded           = "item.comment_added"
	EventBookingCancelRequested = "booking.cancel_requested"
)

// BookingEvent is the payload of every booking.* lifecycle event.
type BookingEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ItemID     uuid.UUID `json:"item_id"`
	BookerID   uuid.UUID `json:"booker_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Status     string    `json:"status"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CommentAddedEvent is the payload of item.comment_added.
type CommentAddedEvent struct {
	CommentID  uuid.UUID `json:"comment_id"`
	ItemID     uuid.UUID `json:"item_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CancelRequestedEvent is the payload of the booking.cancel_requested command.
type CancelRequestedEvent struct {
	BookingID uuid.UUID `json:"booking_id"`
	BookerID  uuid.UUID `json:"booker_id"`
}

// publishEvent wraps data in a cloud event and sends it. Failures are logged only.
func publishEvent(ctx context.Context, pub kafka.Publisher, logger *zap.Logger, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := pub.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
