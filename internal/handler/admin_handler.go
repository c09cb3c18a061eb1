package handler

import (
	"strconv"
	"time"

	"github.com/driveport/service-rental/internal/application"
	bookingDomain "github.com/driveport/service-rental/internal/domain/booking"
	"github.com/driveport/service-rental/internal/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exposes the operator-facing fleet and directory endpoints.
type AdminHandler struct {
	fleet    *application.FleetService
	bookings *application.BookingService
	logger   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(fleet *application.FleetService, bookings *application.BookingService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{fleet: fleet, bookings: bookings, logger: logger}
}

// RegisterRoutes registers the admin routes on the given group.
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/fleet-overview", h.FleetOverview)
	rg.GET("/staff", h.ListStaff)
	rg.GET("/bookings", h.ListBookings)
}

// FleetOverview handles GET /admin/fleet-overview. Without query parameters it
// reports the fleet as of now; with start_date and end_date it reports which
// cars are free for that whole window.
func (h *AdminHandler) FleetOverview(c *gin.Context) {
	startRaw := c.Query("start_date")
	endRaw := c.Query("end_date")

	var window *bookingDomain.Window
	if startRaw != "" || endRaw != "" {
		if startRaw == "" || endRaw == "" {
			response.BadRequest(c, "start_date and end_date must be provided together")
			return
		}
		start, err := time.Parse(time.DateOnly, startRaw)
		if err != nil {
			response.BadRequest(c, "unparsable start_date: "+startRaw)
			return
		}
		end, err := time.Parse(time.DateOnly, endRaw)
		if err != nil {
			response.BadRequest(c, "unparsable end_date: "+endRaw)
			return
		}
		w, err := bookingDomain.NewWindow(start, end)
		if err != nil {
			response.Error(c, err)
			return
		}
		window = &w
	}

	snapshot, err := h.fleet.Snapshot(c.Request.Context(), window)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snapshot)
}

// ListStaff handles GET /admin/staff.
func (h *AdminHandler) ListStaff(c *gin.Context) {
	staff, err := h.fleet.ListStaff(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, staff)
}

// ListBookings handles GET /admin/bookings with page/limit pagination.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	bookings, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, bookings, total, page, limit)
}
