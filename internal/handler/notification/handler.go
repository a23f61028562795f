package notification

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atlasclinic/clinic-api/internal/middleware"
	"github.com/atlasclinic/clinic-api/internal/model"
	notifsvc "github.com/atlasclinic/clinic-api/internal/service/notification"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/httputil"
	"github.com/atlasclinic/clinic-api/pkg/validator"
)

type Handler struct {
	service   *notifsvc.Service
	validator *validator.Validator
	authMW    *middleware.AuthMiddleware
}

func NewHandler(service *notifsvc.Service, validator *validator.Validator, authMW *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, validator: validator, authMW: authMW}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifs := r.Group("/arrival-notifs", h.authMW.Authenticate())
	notifs.GET("", h.List)
	notifs.POST("/:id/ack", h.Ack)
	notifs.POST("/:id/read", h.Read)
	notifs.POST("/mark-all-read", h.MarkAllRead)

	r.POST("/whatsapp/send",
		h.authMW.Authenticate(),
		h.authMW.RequireRoles(model.RoleFrontDesk, model.RoleManagement),
		h.SendWhatsApp,
	)
}

// List returns notifications for the notification bell. Physicians see
// only their own; other roles see everything, optionally narrowed by the
// intervention filter.
func (h *Handler) List(c *gin.Context) {
	filters := &model.NotificationFilters{
		Intervention: c.Query("intervention"),
	}
	if role, _ := middleware.RoleFrom(c); role == model.RolePhysician {
		selfID, _ := middleware.UserIDFrom(c)
		filters.DoctorID = &selfID
	}

	notifs, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	lang := middleware.LangFrom(c)
	views := make([]*model.ArrivalNotificationView, 0, len(notifs))
	for _, n := range notifs {
		views = append(views, n.Localize(lang))
	}
	httputil.OK(c, views)
}

func (h *Handler) Ack(c *gin.Context) {
	h.setStatus(c, model.NotificationStatusAck)
}

func (h *Handler) Read(c *gin.Context) {
	h.setStatus(c, model.NotificationStatusRead)
}

func (h *Handler) setStatus(c *gin.Context, status model.NotificationStatus) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid notification id", err))
		return
	}

	n, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	if role, _ := middleware.RoleFrom(c); role == model.RolePhysician {
		selfID, _ := middleware.UserIDFrom(c)
		if n.DoctorID != selfID {
			httputil.Error(c, apperrors.NotFound("notification", nil))
			return
		}
	}

	updated, err := h.service.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, updated.Localize(middleware.LangFrom(c)))
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	filters := &model.NotificationFilters{}
	if role, _ := middleware.RoleFrom(c); role == model.RolePhysician {
		selfID, _ := middleware.UserIDFrom(c)
		filters.DoctorID = &selfID
	}

	count, err := h.service.MarkAllRead(c.Request.Context(), filters)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, gin.H{"updated": count})
}

func (h *Handler) SendWhatsApp(c *gin.Context) {
	var req struct {
		To      string `json:"to" validate:"required"`
		Message string `json:"message" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.Error(c, err)
		return
	}

	if err := h.service.SendWhatsApp(c.Request.Context(), req.To, req.Message); err != nil {
		httputil.Error(c, apperrors.Internal(err))
		return
	}
	httputil.OK(c, gin.H{"sent": true})
}
