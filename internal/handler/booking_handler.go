package handler

import (
	"github.com/driveport/service-rental/internal/application"
	"github.com/driveport/service-rental/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	service *application.BookingService
	logger  *zap.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, logger: logger}
}

// RegisterRoutes registers the booking routes on the given group.
func (h *BookingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.GET("/bookings/confirmation/:number", h.GetBookingByConfirmationNumber)
	rg.PUT("/bookings/:id", h.ModifyBooking)
	rg.POST("/bookings/:id/handover", h.Handover)
	rg.POST("/bookings/:id/return", h.Return)
	rg.POST("/bookings/:id/cancel", h.Cancel)
	rg.GET("/customers/:id/bookings", h.ListByCustomer)
	rg.GET("/hubs/:id/bookings", h.ListByHub)
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// GetBooking handles GET /bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, booking)
}

// GetBookingByConfirmationNumber handles GET /bookings/confirmation/:number.
func (h *BookingHandler) GetBookingByConfirmationNumber(c *gin.Context) {
	number := c.Param("number")
	booking, err := h.service.GetBookingByConfirmationNumber(c.Request.Context(), number)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, booking)
}

// ModifyBooking handles PUT /bookings/:id.
func (h *BookingHandler) ModifyBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req application.ModifyBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.service.Modify(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, booking)
}

// Handover handles POST /bookings/:id/handover.
func (h *BookingHandler) Handover(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req application.HandoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.service.Handover(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, booking)
}

// Return handles POST /bookings/:id/return.
func (h *BookingHandler) Return(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req application.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.service.Return(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, booking)
}

// Cancel handles POST /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	booking, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, booking)
}

// ListByCustomer handles GET /customers/:id/bookings.
func (h *BookingHandler) ListByCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	bookings, err := h.service.ListBookingsByCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, bookings)
}

// ListByHub handles GET /hubs/:id/bookings.
func (h *BookingHandler) ListByHub(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	bookings, err := h.service.ListBookingsByHub(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, bookings)
}

// pathID parses the :id path parameter, writing a 400 on failure.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ID in path: "+c.Param("id"))
		return uuid.Nil, false
	}
	return id, true
}
