package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	bookingDomain "github.com/shareit/service-rental/internal/domain/booking"
	itemDomain "github.com/shareit/service-rental/internal/domain/item"
	userDomain "github.com/shareit/service-rental/internal/domain/user"
	"github.com/shareit/service-rental/internal/platform/database"
)

var (
	ctx = context.Background()
	now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "rental.db"))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *userDomain.User {
	t.Helper()
	u, err := userDomain.NewUser(name, name+"@example.com", now)
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Save(ctx, u))
	return u
}

func seedItem(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name string, available bool, created time.Time) *itemDomain.Item {
	t.Helper()
	it, err := itemDomain.NewItem(ownerID, name, name+" description", available, nil, created)
	require.NoError(t, err)
	require.NoError(t, NewGormItemRepository(db).Save(ctx, it))
	return it
}

// seedBooking stores a booking of itemID in the given status, bypassing the state machine.
func seedBooking(t *testing.T, db *gorm.DB, itemID, bookerID uuid.UUID, start, end time.Time, status bookingDomain.BookingStatus) *bookingDomain.Booking {
	t.Helper()
	bk := bookingDomain.ReconstructBooking(uuid.New(), itemID, bookerID, start, end, status, 1, now, now)
	require.NoError(t, NewGormBookingRepository(db).Save(ctx, bk))
	return bk
}
