// Package public serves the unauthenticated booking widget: business profile,
// availability and booking creation.
package public

import (
	"github.com/gin-gonic/gin"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/availability"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/booking"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/directory"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/httputil"
)

type Handler struct {
	directory    *directory.Service
	availability *availability.Service
	booking      *booking.Service
}

func NewHandler(dir *directory.Service, avail *availability.Service, book *booking.Service) *Handler {
	return &Handler{
		directory:    dir,
		availability: avail,
		booking:      book,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/public")
	{
		public.GET("/businesses/:slug", h.GetProfile)
		public.GET("/businesses/:slug/availability", h.GetAvailability)
		public.POST("/bookings", h.CreateBooking)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.directory.GetProfile(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, profile)
}

// GetAvailability answers ?staffId=&serviceId=&date=YYYY-MM-DD.
func (h *Handler) GetAvailability(c *gin.Context) {
	staffID, err := handler.UUIDQuery(c, "staffId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	serviceID, err := handler.UUIDQuery(c, "serviceId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	slots, err := h.availability.Slots(c.Request.Context(), c.Param("slug"), staffID, serviceID, c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req model.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	apt, err := h.booking.Book(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}
