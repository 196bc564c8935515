package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-rental/internal/platform/domain"
)

// User is a person who lists items, books them, or both.
type User struct {
	id        uuid.UUID
	name      string
	email     string
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewUser validates and creates a user. Email is lower-cased.
func NewUser(name, email string, now time.Time) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name must not be blank")
	}
	normalised, err := normaliseEmail(email)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &User{
		id:        uuid.New(),
		name:      name,
		email:     normalised,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a User from persistence data (no validation).
func Reconstruct(id uuid.UUID, name, email string, version int64, createdAt, updatedAt time.Time) *User {
	return &User{id: id, name: name, email: email, version: version, createdAt: createdAt, updatedAt: updatedAt}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) Version() int64       { return u.version }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// Patch is a partial update. Nil fields leave the stored value unchanged.
type Patch struct {
	Name  *string
	Email *string
}

// Apply returns a copy of u with the patch merged in and the version bumped.
func (u *User) Apply(p Patch, now time.Time) (*User, error) {
	next := *u
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, domain.NewValidationError("name must not be blank")
		}
		next.name = *p.Name
	}
	if p.Email != nil {
		normalised, err := normaliseEmail(*p.Email)
		if err != nil {
			return nil, err
		}
		next.email = normalised
	}
	next.version++
	next.updatedAt = now.UTC()
	return &next, nil
}

func normaliseEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", domain.NewValidationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.NewValidationError("email is not valid: " + email)
	}
	return email, nil
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// Save inserts a new user. A taken email is CONFLICT.
	Save(ctx context.Context, user *User) error
	// Update persists user with an optimistic version check. A taken email is CONFLICT.
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
