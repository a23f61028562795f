package appointment

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atlasclinic/clinic-api/internal/middleware"
	"github.com/atlasclinic/clinic-api/internal/model"
	aptsvc "github.com/atlasclinic/clinic-api/internal/service/appointment"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/httputil"
	"github.com/atlasclinic/clinic-api/pkg/validator"
)

type Handler struct {
	service   *aptsvc.Service
	validator *validator.Validator
	authMW    *middleware.AuthMiddleware
}

func NewHandler(service *aptsvc.Service, validator *validator.Validator, authMW *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, validator: validator, authMW: authMW}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	apts := r.Group("/appointments", h.authMW.Authenticate())
	apts.GET("", h.List)
	apts.POST("", h.Create)
	apts.GET("/:id", h.Get)
	apts.PATCH("/:id", h.Update)
	apts.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.Error(c, err)
		return
	}

	apt, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, serialize(apt))
}

// List scopes physicians to their own schedule; other roles see everything
// matching the filters.
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

	apts, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	out := make([]gin.H, 0, len(apts))
	for _, apt := range apts {
		out = append(out, serialize(apt))
	}
	httputil.OK(c, out)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid appointment id", err))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	if err := h.requireOwn(c, apt); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, serialize(apt))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid appointment id", err))
		return
	}

	current, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	if err := h.requireOwn(c, current); err != nil {
		httputil.Error(c, err)
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	apt, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, serialize(apt))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid appointment id", err))
		return
	}

	current, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	if err := h.requireOwn(c, current); err != nil {
		httputil.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, gin.H{"deleted": id})
}

func (h *Handler) requireOwn(c *gin.Context, apt *model.Appointment) error {
	role, _ := middleware.RoleFrom(c)
	if role != model.RolePhysician {
		return nil
	}
	selfID, _ := middleware.UserIDFrom(c)
	if apt.DoctorID == nil || *apt.DoctorID != selfID {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

// serialize renders the date as a plain ISO day alongside the row.
func serialize(apt *model.Appointment) gin.H {
	return gin.H{
		"id":               apt.ID,
		"patient_id":       apt.PatientID,
		"patient_name":     apt.PatientName,
		"date":             apt.DateString(),
		"time":             apt.Time,
		"duration_minutes": apt.DurationMinutes,
		"status":           apt.Status,
		"room":             apt.RoomID,
		"type":             apt.TypeID,
		"doctor":           apt.DoctorID,
		"phone":            apt.Phone,
		"email":            apt.Email,
		"notes":            apt.Notes,
		"created_at":       apt.CreatedAt,
		"updated_at":       apt.UpdatedAt,
	}
}

func parseFilters(c *gin.Context) (*model.AppointmentFilters, error) {
	filters := &model.AppointmentFilters{
		Status: model.AppointmentStatus(c.Query("status")),
		Type:   c.Query("type"),
	}

	if raw := c.Query("date_from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, apperrors.Validation(map[string]string{"date_from": "must be YYYY-MM-DD"})
		}
		filters.DateFrom = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, apperrors.Validation(map[string]string{"date_to": "must be YYYY-MM-DD"})
		}
		filters.DateTo = &t
	}
	if raw := c.Query("room"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperrors.Validation(map[string]string{"room": "must be numeric"})
		}
		filters.RoomID = &id
	}
	if raw := c.Query("doctor"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.Validation(map[string]string{"doctor": "must be a UUID"})
		}
		filters.DoctorID = &id
	}
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, apperrors.Validation(map[string]string{"status": "unknown status"})
	}
	return filters, nil
}
