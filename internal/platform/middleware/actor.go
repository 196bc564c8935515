package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit/service-rental/internal/platform/auth"
	"github.com/shareit/service-rental/internal/platform/response"
)

// SharerHeader carries the acting user's id in header auth mode.
const SharerHeader = "X-Sharer-User-Id"

const userIDKey = "user_id"

// ActorResolver extracts the acting user id from a request.
type ActorResolver interface {
	Resolve(c *gin.Context) (uuid.UUID, error)
}

// HeaderResolver trusts the X-Sharer-User-Id header, as set by an upstream gateway.
type HeaderResolver struct{}

func (HeaderResolver) Resolve(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(SharerHeader)
	if raw == "" {
		return uuid.Nil, errMissingActor
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errMalformedActor
	}
	return id, nil
}

// JWTResolver reads the user id from a bearer token.
type JWTResolver struct {
	Manager *auth.JWTManager
}

func (r JWTResolver) Resolve(c *gin.Context) (uuid.UUID, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return uuid.Nil, errMissingActor
	}
	return r.Manager.Verify(header)
}

type actorError string

func (e actorError) Error() string { return string(e) }

const (
	errMissingActor   actorError = "missing acting user"
	errMalformedActor actorError = "malformed " + SharerHeader + " header"
)

// ActorMiddleware resolves the acting user and stores it in the context.
// A missing identity is 401; a malformed header is 400.
func ActorMiddleware(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolver.Resolve(c)
		switch {
		case err == errMalformedActor:
			response.BadRequest(c, err.Error())
			return
		case err != nil:
			response.Unauthorized(c, err.Error())
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// GetUserID returns the acting user id set by ActorMiddleware.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
