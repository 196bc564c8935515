package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userDomain "github.com/shareit/service-rental/internal/domain/user"
	"github.com/shareit/service-rental/internal/platform/domain"
)

func TestGormUserRepository_SaveAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	u := seedUser(t, db, "alice")

	got, err := repo.FindByID(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email())

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID(), byEmail.ID())

	ok, err := repo.Exists(ctx, u.ID())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGormUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	seedUser(t, db, "alice")

	dup, err := userDomain.NewUser("Alice Two", "ALICE@example.com", now)
	require.NoError(t, err)
	err = repo.Save(ctx, dup)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))

	bob := seedUser(t, db, "bob")
	taken := "alice@example.com"
	patched, err := bob.Apply(userDomain.Patch{Email: &taken}, now)
	require.NoError(t, err)
	err = repo.Update(ctx, patched)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
}

func TestGormUserRepository_ListAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bob")

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	found, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID(), b.ID()})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	require.NoError(t, repo.Delete(ctx, a.ID()))
	_, err = repo.FindByID(ctx, a.ID())
	assert.True(t, domain.IsNotFound(err))

	err = repo.Delete(ctx, a.ID())
	assert.True(t, domain.IsNotFound(err))
}
