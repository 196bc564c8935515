package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shareit/service-rental/internal/platform/domain"
)

const unrecognisedError = "Unrecognised error"

// ErrorBody is the error payload of a failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope wraps every JSON response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// NoContent writes a bare 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 for malformed transport input.
func BadRequest(c *gin.Context, msg string) {
	abort(c, http.StatusBadRequest, domain.CodeValidation, msg)
}

// Unauthorized writes a 401.
func Unauthorized(c *gin.Context, msg string) {
	abort(c, http.StatusUnauthorized, "UNAUTHORIZED", msg)
}

// RouteNotFound writes a 404 for paths no route matches.
func RouteNotFound(c *gin.Context) {
	abort(c, http.StatusNotFound, domain.CodeNotFound, "route "+c.Request.Method+" "+c.Request.URL.Path+" not found")
}

// TooManyRequests writes a 429.
func TooManyRequests(c *gin.Context) {
	abort(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
}

// Error maps err to a status code. Domain errors keep their code and message;
// anything else is a 500 carrying its message, or a placeholder when it has none.
func Error(c *gin.Context, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		abort(c, StatusFor(de.Code), de.Code, de.Message)
		return
	}

	msg := unrecognisedError
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	abort(c, http.StatusInternalServerError, "INTERNAL", msg)
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code string) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeValidation, domain.CodeIllegalArgument, domain.CodeIllegalState, domain.CodeObjectUnavailable:
		return http.StatusBadRequest
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: msg},
	})
}
