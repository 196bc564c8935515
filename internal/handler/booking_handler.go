package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit/service-rental/internal/application"
	bookingDomain "github.com/shareit/service-rental/internal/domain/booking"
	"github.com/shareit/service-rental/internal/domain/page"
	"github.com/shareit/service-rental/internal/platform/middleware"
	"github.com/shareit/service-rental/internal/platform/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, actorMW gin.HandlerFunc) {
	bookings := r.Group("/api/v1/bookings")
	bookings.Use(actorMW)
	{
		bookings.POST("", h.AddBooking)
		bookings.GET("", h.ListBookerBookings)
		bookings.GET("/owner", h.ListOwnerBookings)
		bookings.GET("/owner/stats", h.OwnerStats)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.FinalizeStatus)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}
}

// AddBooking handles POST /api/v1/bookings.
func (h *BookingHandler) AddBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// FinalizeStatus handles PATCH /api/v1/bookings/:id?approved=true|false.
func (h *BookingHandler) FinalizeStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}
	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		response.BadRequest(c, "approved must be true or false")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.FinalizeBookingStatus(c.Request.Context(), bookingID, userID, approved)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetBookingByID(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListBookerBookings handles GET /api/v1/bookings.
func (h *BookingHandler) ListBookerBookings(c *gin.Context) {
	h.listBookings(c, bookingDomain.AsBooker)
}

// ListOwnerBookings handles GET /api/v1/bookings/owner.
func (h *BookingHandler) ListOwnerBookings(c *gin.Context) {
	h.listBookings(c, bookingDomain.AsOwner)
}

func (h *BookingHandler) listBookings(c *gin.Context, perspective bookingDomain.Perspective) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	from, size, err := parsePagination(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.GetBookings(c.Request.Context(), userID, perspective, c.DefaultQuery("state", "ALL"), from, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// OwnerStats handles GET /api/v1/bookings/owner/stats.
func (h *BookingHandler) OwnerStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	stats, err := h.service.GetOwnerStats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// parsePagination extracts the from and size query parameters with defaults.
// Range checks are left to the services.
func parsePagination(c *gin.Context) (int, int, error) {
	from, err := strconv.Atoi(c.DefaultQuery("from", strconv.Itoa(page.DefaultFrom)))
	if err != nil {
		return 0, 0, errInvalidQuery("from")
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(page.DefaultSize)))
	if err != nil {
		return 0, 0, errInvalidQuery("size")
	}
	return from, size, nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string { return string(e) + " must be an integer" }
