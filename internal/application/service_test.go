package application

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shareit/service-rental/internal/platform/auth"
	"github.com/shareit/service-rental/internal/platform/database"
	"github.com/shareit/service-rental/internal/platform/kafka"
	"github.com/shareit/service-rental/internal/repository"
)

var (
	ctx = context.Background()
	now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error {
	args := m.Called(ctx, topic, key, event)
	return args.Error(0)
}

func (m *mockPublisher) published(eventType string) int {
	n := 0
	for _, call := range m.Calls {
		if call.Arguments.Get(3).(kafka.CloudEvent).Type == eventType {
			n++
		}
	}
	return n
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) BookingTransition(status string) {
	m.Called(status)
}

type testEnv struct {
	db       *gorm.DB
	pub      *mockPublisher
	rec      *mockRecorder
	users    *UserService
	items    *ItemService
	bookings *BookingService
	requests *RequestService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "rental.db"))
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	userRepo := repository.NewGormUserRepository(db)
	itemRepo := repository.NewGormItemRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	requestRepo := repository.NewGormRequestRepository(db)

	pub := &mockPublisher{}
	pub.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	rec := &mockRecorder{}
	rec.On("BookingTransition", mock.Anything).Return()

	clock := FixedClock(now)
	logger := zap.NewNop()
	tokens := auth.NewJWTManager("test-secret", time.Hour)

	return &testEnv{
		db:       db,
		pub:      pub,
		rec:      rec,
		users:    NewUserService(userRepo, tokens, clock, logger),
		items:    NewItemService(itemRepo, commentRepo, bookingRepo, userRepo, requestRepo, pub, clock, logger),
		bookings: NewBookingService(bookingRepo, itemRepo, userRepo, pub, rec, clock, logger),
		requests: NewRequestService(requestRepo, itemRepo, userRepo, clock, logger),
	}
}

func (e *testEnv) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u, err := e.users.CreateUser(ctx, CreateUserRequest{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) item(t *testing.T, ownerID uuid.UUID, name string, available bool) uuid.UUID {
	t.Helper()
	it, err := e.items.AddItem(ctx, ownerID, CreateItemRequest{Name: name, Description: name + " for rent", Available: &available})
	require.NoError(t, err)
	return it.ID
}

func (e *testEnv) booking(t *testing.T, bookerID, itemID uuid.UUID, start, end time.Time) uuid.UUID {
	t.Helper()
	bk, err := e.bookings.AddBooking(ctx, bookerID, CreateBookingRequest{ItemID: itemID, Start: start, End: end})
	require.NoError(t, err)
	return bk.ID
}

func (e *testEnv) decide(t *testing.T, bookingID, ownerID uuid.UUID, approve bool) {
	t.Helper()
	_, err := e.bookings.FinalizeBookingStatus(ctx, bookingID, ownerID, approve)
	require.NoError(t, err)
}
