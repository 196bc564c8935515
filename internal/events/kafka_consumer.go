package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shareit/service-rental/internal/application"
	"github.com/shareit/service-rental/internal/platform/domain"
	"github.com/shareit/service-rental/internal/platform/kafka"
)

// BookingCanceller cancels a booking on behalf of its booker.
type BookingCanceller interface {
	CancelBooking(ctx context.Context, bookingID, bookerID uuid.UUID) (*application.BookingDTO, error)
}

// CancellationConsumer listens to booking commands and applies cancellation requests.
type CancellationConsumer struct {
	consumer *kafka.Consumer
	service  BookingCanceller
	logger   *zap.Logger
}

// NewCancellationConsumer creates a new CancellationConsumer.
func NewCancellationConsumer(
	brokers []string,
	groupID string,
	service BookingCanceller,
	logger *zap.Logger,
) *CancellationConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, application.TopicBookingCommands, logger)
	return &CancellationConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming booking commands. This blocks until the context is cancelled.
func (c *CancellationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CancellationConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CancellationConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from booking command topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case application.EventBookingCancelRequested:
		return c.handleCancelRequested(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled booking command type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *CancellationConsumer) handleCancelRequested(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt application.CancelRequestedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse CancelRequestedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing cancellation request",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("booker_id", evt.BookerID.String()),
	)

	if _, err := c.service.CancelBooking(ctx, evt.BookingID, evt.BookerID); err != nil {
		// A rejected command stays rejected on replay.
		if domain.CodeOf(err) != "" {
			c.logger.Warn("cancellation request rejected",
				zap.String("booking_id", evt.BookingID.String()),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to cancel booking",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking cancelled from command",
		zap.String("booking_id", evt.BookingID.String()),
	)
	return nil
}
