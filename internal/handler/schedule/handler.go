package schedule

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/middleware"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/schedule"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/httputil"
)

type Handler struct {
	service *schedule.Service
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects r to be behind Authenticate and RequireOwner.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/working-hours", h.GetBusinessHours)
	r.PUT("/working-hours", h.SaveBusinessHours)

	staff := r.Group("/staff/:staffId")
	{
		staff.GET("/working-hours", h.GetStaffHours)
		staff.PUT("/working-hours", h.SaveStaffHours)
		staff.GET("/blocks", h.ListBlocks)
		staff.POST("/blocks", h.CreateBlock)
	}

	r.DELETE("/blocks/:id", h.DeleteBlock)
}

func (h *Handler) GetBusinessHours(c *gin.Context) {
	h.getHours(c, nil)
}

func (h *Handler) SaveBusinessHours(c *gin.Context) {
	h.saveHours(c, nil)
}

func (h *Handler) GetStaffHours(c *gin.Context) {
	staffID, err := handler.UUIDParam(c, "staffId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.getHours(c, &staffID)
}

func (h *Handler) SaveStaffHours(c *gin.Context) {
	staffID, err := handler.UUIDParam(c, "staffId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.saveHours(c, &staffID)
}

func (h *Handler) getHours(c *gin.Context, staffID *uuid.UUID) {
	week, err := h.service.GetWorkingHours(c.Request.Context(), middleware.BusinessID(c), staffID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, week)
}

func (h *Handler) saveHours(c *gin.Context, staffID *uuid.UUID) {
	var req model.SaveWorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	week, err := h.service.SaveWorkingHours(c.Request.Context(), middleware.BusinessID(c), staffID, req.Days)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, week)
}

// ListBlocks accepts optional RFC 3339 from and to bounds.
func (h *Handler) ListBlocks(c *gin.Context) {
	staffID, err := handler.UUIDParam(c, "staffId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	from, err := handler.TimeQuery(c, "from")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	to, err := handler.TimeQuery(c, "to")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	blocks, err := h.service.ListBlocks(c.Request.Context(), middleware.BusinessID(c), staffID, from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, blocks)
}

func (h *Handler) CreateBlock(c *gin.Context) {
	staffID, err := handler.UUIDParam(c, "staffId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	block, err := h.service.CreateBlock(c.Request.Context(), middleware.BusinessID(c), staffID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, block)
}

func (h *Handler) DeleteBlock(c *gin.Context) {
	id, err := handler.UUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.DeleteBlock(c.Request.Context(), middleware.BusinessID(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
