package referral

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atlasclinic/clinic-api/internal/middleware"
	"github.com/atlasclinic/clinic-api/internal/model"
	refsvc "github.com/atlasclinic/clinic-api/internal/service/referral"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/httputil"
	"github.com/atlasclinic/clinic-api/pkg/validator"
)

type Handler struct {
	service   *refsvc.Service
	validator *validator.Validator
	authMW    *middleware.AuthMiddleware
	intakeRL  *middleware.RateLimiter
}

func NewHandler(service *refsvc.Service, validator *validator.Validator, authMW *middleware.AuthMiddleware, intakeRL *middleware.RateLimiter) *Handler {
	return &Handler{service: service, validator: validator, authMW: authMW, intakeRL: intakeRL}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	refs := r.Group("/referrals")

	// Create is reachable anonymously (rate limited); a valid physician
	// token makes the caller the referral's doctor.
	refs.POST("", h.intakeRL.RateLimit(), h.authMW.Optional(), h.Create)

	authed := refs.Group("", h.authMW.Authenticate())
	authed.GET("", h.List)
	authed.GET("/stats", h.authMW.RequireRoles(model.RoleManagement), h.Stats)
	authed.GET("/:id", h.Get)
	authed.PATCH("/:id", h.Update)
	authed.DELETE("/:id", h.authMW.RequireRoles(model.RoleManagement, model.RoleFrontDesk), h.Delete)
	authed.POST("/:id/arrive", h.authMW.RequireRoles(model.RoleFrontDesk, model.RoleManagement), h.MarkArrived)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.Error(c, err)
		return
	}

	var doctorID *uuid.UUID
	if role, ok := middleware.RoleFrom(c); ok && role == model.RolePhysician {
		if id, ok := middleware.UserIDFrom(c); ok {
			doctorID = &id
		}
	}

	view, err := h.service.Create(c.Request.Context(), &req, doctorID, middleware.LangFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, view)
}

// List scopes physicians to their own referrals.
func (h *Handler) List(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	if role, _ := middleware.RoleFrom(c); role == model.RolePhysician {
		selfID, _ := middleware.UserIDFrom(c)
		filters.DoctorID = &selfID
	}

	views, err := h.service.List(c.Request.Context(), filters, middleware.LangFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, views)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid referral id", err))
		return
	}

	view, err := h.service.Get(c.Request.Context(), id, middleware.LangFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	if err := h.requireOwn(c, view); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, view)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid referral id", err))
		return
	}

	current, err := h.service.Get(c.Request.Context(), id, middleware.LangFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	if err := h.requireOwn(c, current); err != nil {
		httputil.Error(c, err)
		return
	}

	var req model.UpdateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	view, err := h.service.Update(c.Request.Context(), id, &req, middleware.LangFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, view)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid referral id", err))
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, gin.H{"deleted": id})
}

func (h *Handler) MarkArrived(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid referral id", err))
		return
	}

	var req struct {
		RoomNumber string `json:"room_number"`
	}
	// An empty body falls through to the room_number validation error.
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	view, err := h.service.MarkArrived(c.Request.Context(), id, req.RoomNumber, middleware.LangFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, view)
}

func (h *Handler) Stats(c *gin.Context) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.Error(c, apperrors.Validation(map[string]string{"from": "must be YYYY-MM-DD"}))
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.Error(c, apperrors.Validation(map[string]string{"to": "must be YYYY-MM-DD"}))
			return
		}
		to = &t
	}

	stats, err := h.service.Stats(c.Request.Context(), from, to)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, stats)
}

func (h *Handler) requireOwn(c *gin.Context, view *model.ReferralView) error {
	role, _ := middleware.RoleFrom(c)
	if role != model.RolePhysician {
		return nil
	}
	selfID, _ := middleware.UserIDFrom(c)
	if view.DoctorID == nil || *view.DoctorID != selfID {
		return apperrors.NotFound("referral", nil)
	}
	return nil
}

func parseFilters(c *gin.Context) (*model.ReferralFilters, error) {
	filters := &model.ReferralFilters{
		Status: model.ReferralStatus(c.Query("status")),
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, apperrors.Validation(map[string]string{"from": "must be YYYY-MM-DD"})
		}
		filters.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, apperrors.Validation(map[string]string{"to": "must be YYYY-MM-DD"})
		}
		filters.To = &t
	}
	return filters, nil
}
