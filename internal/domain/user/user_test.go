package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit/service-rental/internal/platform/domain"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewUser(t *testing.T) {
	u, err := NewUser("Ann", " Ann@Example.com ", now)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email())
	assert.Equal(t, int64(1), u.Version())

	for _, email := range []string{"", "not-an-email", "Ann <ann@example.com>"} {
		_, err := NewUser("Ann", email, now)
		assert.Equal(t, domain.CodeValidation, domain.CodeOf(err), email)
	}

	_, err = NewUser("", "ann@example.com", now)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestApply(t *testing.T) {
	u, err := NewUser("Ann", "ann@example.com", now)
	require.NoError(t, err)

	name := "Anna"
	next, err := u.Apply(Patch{Name: &name}, now.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, "Ann", u.Name())
	assert.Equal(t, "Anna", next.Name())
	assert.Equal(t, "ann@example.com", next.Email())
	assert.Equal(t, int64(2), next.Version())

	bad := "nope"
	_, err = u.Apply(Patch{Email: &bad}, now)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}
