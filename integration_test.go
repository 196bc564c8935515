//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit/service-rental/internal/application"
	bookingDomain "github.com/shareit/service-rental/internal/domain/booking"
)

func boolPtr(b bool) *bool { return &b }

// TestCancelRequested_CancelsBooking verifies that a booking.cancel_requested
// command on the booking command topic cancels a waiting booking and that the
// resulting booking.cancelled event reaches the booking event topic.
func TestCancelRequested_CancelsBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx := context.Background()
	owner, err := stack.Users.CreateUser(ctx, application.CreateUserRequest{Name: "owner", Email: "owner@example.com"})
	require.NoError(t, err)
	booker, err := stack.Users.CreateUser(ctx, application.CreateUserRequest{Name: "booker", Email: "booker@example.com"})
	require.NoError(t, err)
	item, err := stack.Items.AddItem(ctx, owner.ID, application.CreateItemRequest{
		Name: "Drill", Description: "cordless drill", Available: boolPtr(true),
	})
	require.NoError(t, err)

	start := time.Now().UTC().Add(time.Hour)
	bk, err := stack.Bookings.AddBooking(ctx, booker.ID, application.CreateBookingRequest{
		ItemID: item.ID, Start: start, End: start.Add(time.Hour),
	})
	require.NoError(t, err)

	// Start the consumer.
	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = stack.Consumer.Start(consumerCtx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	publishTestEvent(t, infra.KafkaBrokers, application.TopicBookingCommands, bk.ID.String(),
		application.EventBookingCancelRequested,
		application.CancelRequestedEvent{BookingID: bk.ID, BookerID: booker.ID})

	waitForBookingStatus(t, infra.DB, bk.ID, string(bookingDomain.StatusCancelled), 15*time.Second)

	ce := consumeOneEvent(t, infra.KafkaBrokers, application.TopicBookingEvents,
		application.EventBookingCancelled, 15*time.Second)

	var cancelled application.BookingEvent
	require.NoError(t, ce.ParseData(&cancelled))
	assert.Equal(t, bk.ID, cancelled.BookingID)
	assert.Equal(t, owner.ID, cancelled.OwnerID)
	assert.Equal(t, "CANCELLED", cancelled.Status)
}

// TestOwnerItemView_OnPostgres checks the aggregation queries against the
// migrated PostgreSQL schema.
func TestOwnerItemView_OnPostgres(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	owner, err := stack.Users.CreateUser(ctx, application.CreateUserRequest{Name: "owner", Email: "owner@example.com"})
	require.NoError(t, err)
	booker, err := stack.Users.CreateUser(ctx, application.CreateUserRequest{Name: "booker", Email: "booker@example.com"})
	require.NoError(t, err)
	item, err := stack.Items.AddItem(ctx, owner.ID, application.CreateItemRequest{
		Name: "Tent", Description: "four person tent", Available: boolPtr(true),
	})
	require.NoError(t, err)

	start := time.Now().UTC().Add(24 * time.Hour)
	next, err := stack.Bookings.AddBooking(ctx, booker.ID, application.CreateBookingRequest{
		ItemID: item.ID, Start: start, End: start.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = stack.Bookings.FinalizeBookingStatus(ctx, next.ID, owner.ID, true)
	require.NoError(t, err)

	view, err := stack.Items.GetItemByID(ctx, item.ID, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, view.LastBooking)
	require.NotNil(t, view.NextBooking)
	assert.Equal(t, next.ID, view.NextBooking.ID)
	assert.NotNil(t, view.Comments)

	found, err := stack.Items.SearchItems(ctx, "TENT", 0, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	future, err := stack.Bookings.GetBookings(ctx, owner.ID, bookingDomain.AsOwner, "FUTURE", 0, 10)
	require.NoError(t, err)
	require.Len(t, future, 1)
	assert.Equal(t, "APPROVED", future[0].Status)
}
