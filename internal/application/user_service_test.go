package application

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shareit/service-rental/internal/platform/auth"
	"github.com/shareit/service-rental/internal/platform/domain"
)

func TestUserService_CRUD(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.users.CreateUser(ctx, CreateUserRequest{Name: "Alice", Email: "Alice@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", created.Email)

	_, err = env.users.CreateUser(ctx, CreateUserRequest{Name: "Other", Email: "alice@example.com"})
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))

	_, err = env.users.CreateUser(ctx, CreateUserRequest{Name: "Bad", Email: "not-an-email"})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	name := "Alice Liddell"
	updated, err := env.users.UpdateUser(ctx, created.ID, UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)

	bob := env.user(t, "bob")
	taken := "alice@example.com"
	_, err = env.users.UpdateUser(ctx, bob, UpdateUserRequest{Email: &taken})
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))

	all, err := env.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, env.users.DeleteUser(ctx, bob))
	_, err = env.users.GetUser(ctx, bob)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(env.users.DeleteUser(ctx, uuid.New())))
}

func TestUserService_IssueToken(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	tok, err := env.users.IssueToken(ctx, TokenRequest{Email: " ALICE@example.com "})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)

	verifier := auth.NewJWTManager("test-secret", time.Hour)
	subject, err := verifier.Verify("Bearer " + tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice, subject)

	_, err = env.users.IssueToken(ctx, TokenRequest{Email: "nobody@example.com"})
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))

	disabled := NewUserService(nil, nil, FixedClock(now), zap.NewNop())
	_, err = disabled.IssueToken(ctx, TokenRequest{Email: "alice@example.com"})
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
}
