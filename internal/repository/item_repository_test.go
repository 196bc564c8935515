package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	itemDomain "github.com/shareit/service-rental/internal/domain/item"
	"github.com/shareit/service-rental/internal/domain/page"
	"github.com/shareit/service-rental/internal/platform/domain"
)

func itemNames(items []*itemDomain.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name()
	}
	return out
}

func TestGormItemRepository_FindByOwnerID_OrderedByCreation(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormItemRepository(db)
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")

	seedItem(t, db, owner.ID(), "second", true, now.Add(time.Minute))
	seedItem(t, db, owner.ID(), "first", true, now)
	seedItem(t, db, other.ID(), "foreign", true, now)

	got, err := repo.FindByOwnerID(ctx, owner.ID(), page.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, itemNames(got))

	pg, err := page.NewRequest(1, 1)
	require.NoError(t, err)
	got, err = repo.FindByOwnerID(ctx, owner.ID(), pg)
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, itemNames(got))
}

func TestGormItemRepository_Search(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormItemRepository(db)
	owner := seedUser(t, db, "owner")

	seedItem(t, db, owner.ID(), "Cordless Drill", true, now)
	seedItem(t, db, owner.ID(), "Hammer", true, now.Add(time.Minute))
	seedItem(t, db, owner.ID(), "Broken drill", false, now.Add(2*time.Minute))
	seedItem(t, db, owner.ID(), "100% cotton tent", true, now.Add(3*time.Minute))

	got, err := repo.Search(ctx, "DRILL", page.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"Cordless Drill"}, itemNames(got), "case-insensitive, available only")

	got, err = repo.Search(ctx, "hammer desc", page.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"Hammer"}, itemNames(got), "description is searched too")

	got, err = repo.Search(ctx, "0%", page.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"100% cotton tent"}, itemNames(got))

	got, err = repo.Search(ctx, "_", page.Default())
	require.NoError(t, err)
	assert.Empty(t, got, "underscore is matched literally")
}

func TestGormItemRepository_FindByRequestIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormItemRepository(db)
	owner := seedUser(t, db, "owner")
	requestID := uuid.New()

	it, err := itemDomain.NewItem(owner.ID(), "tent", "two person", true, &requestID, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, it))
	seedItem(t, db, owner.ID(), "unrelated", true, now)

	got, err := repo.FindByRequestIDs(ctx, []uuid.UUID{requestID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].RequestID())
	assert.Equal(t, requestID, *got[0].RequestID())
}

func TestGormItemRepository_Update_VersionCheck(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormItemRepository(db)
	owner := seedUser(t, db, "owner")
	it := seedItem(t, db, owner.ID(), "drill", true, now)

	name := "better drill"
	first, err := it.Apply(itemDomain.Patch{Name: &name}, now)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, first))

	off := false
	stale, err := it.Apply(itemDomain.Patch{Available: &off}, now)
	require.NoError(t, err)
	err = repo.Update(ctx, stale)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))

	stored, err := repo.FindByID(ctx, it.ID())
	require.NoError(t, err)
	assert.Equal(t, "better drill", stored.Name())
	assert.True(t, stored.Available())
	assert.Equal(t, int64(2), stored.Version())
}

func TestGormItemRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormItemRepository(newTestDB(t))

	_, err := repo.FindByID(ctx, uuid.New())
	assert.True(t, domain.IsNotFound(err))
}
