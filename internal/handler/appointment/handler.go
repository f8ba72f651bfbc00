package appointment

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/middleware"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/appointment"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/auth"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects r to be behind Authenticate. Cancel is the only
// route open to customers.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMw *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("/:id/cancel", h.CancelAppointment)

		owner := appointments.Group("", authMw.RequireOwner())
		owner.GET("", h.ListAppointments)
		owner.GET("/:id", h.GetAppointment)
		owner.POST("/:id/confirm", h.ConfirmAppointment)
		owner.POST("/:id/reject", h.RejectAppointment)
		owner.POST("/:id/complete", h.CompleteAppointment)
		owner.PUT("/:id/reschedule", h.RescheduleAppointment)
	}
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{BusinessID: middleware.BusinessID(c)}

	var err error
	if filters.StaffID, err = handler.OptionalUUIDQuery(c, "staff_id"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if filters.Statuses, err = handler.StatusesQuery(c, "status"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if filters.From, err = handler.TimeQuery(c, "from"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if filters.To, err = handler.TimeQuery(c, "to"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if filters.Pagination, err = handler.PaginationQuery(c); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apts, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if apts == nil {
		apts = []*model.Appointment{}
	}
	httputil.RespondWithPagination(c, apts, filters.Limit, filters.Offset, total)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := handler.UUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.Get(c.Request.Context(), appointment.Owner(middleware.BusinessID(c)), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ConfirmAppointment(c *gin.Context) {
	h.ownerAction(c, func(businessID, id uuid.UUID) (*model.Appointment, error) {
		return h.service.Confirm(c.Request.Context(), businessID, id)
	})
}

func (h *Handler) RejectAppointment(c *gin.Context) {
	var req model.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	h.ownerAction(c, func(businessID, id uuid.UUID) (*model.Appointment, error) {
		return h.service.Reject(c.Request.Context(), businessID, id, req.Reason)
	})
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	h.ownerAction(c, func(businessID, id uuid.UUID) (*model.Appointment, error) {
		return h.service.Complete(c.Request.Context(), businessID, id)
	})
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	var req model.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	h.ownerAction(c, func(businessID, id uuid.UUID) (*model.Appointment, error) {
		return h.service.Reschedule(c.Request.Context(), businessID, id, req.StartTime)
	})
}

// CancelAppointment accepts an empty body; the reason is optional.
func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := handler.UUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.CancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithBindError(c, err)
			return
		}
	}

	actor, err := actorFrom(middleware.ClaimsFrom(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.Cancel(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ownerAction(c *gin.Context, fn func(businessID, id uuid.UUID) (*model.Appointment, error)) {
	id, err := handler.UUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := fn(middleware.BusinessID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func actorFrom(claims *auth.Claims) (appointment.Actor, error) {
	if claims == nil {
		return appointment.Actor{}, apperrors.Unauthorized(nil)
	}
	switch claims.Role {
	case auth.RoleOwner:
		return appointment.Owner(*claims.BusinessID), nil
	case auth.RoleCustomer:
		return appointment.Customer(*claims.CustomerID), nil
	default:
		return appointment.Actor{}, apperrors.Forbidden("unknown role")
	}
}
