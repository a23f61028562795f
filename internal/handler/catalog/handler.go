package catalog

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atlasclinic/clinic-api/internal/middleware"
	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	catalogsvc "github.com/atlasclinic/clinic-api/internal/service/catalog"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/httputil"
)

// Handler serves the reference catalogs plus the patient and insurance
// directories. Interventions, urgencies and insurances are public because
// the anonymous intake form needs them.
type Handler struct {
	service     *catalogsvc.Service
	specialties repository.SpecialtyRepository
	patients    repository.PatientRepository
	insurances  repository.InsuranceRepository
	authMW      *middleware.AuthMiddleware
}

func NewHandler(
	service *catalogsvc.Service,
	specialties repository.SpecialtyRepository,
	patients repository.PatientRepository,
	insurances repository.InsuranceRepository,
	authMW *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		service:     service,
		specialties: specialties,
		patients:    patients,
		insurances:  insurances,
		authMW:      authMW,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/interventions", h.ListInterventions)
	r.GET("/urgencies", h.ListUrgencies)
	r.GET("/insurances", h.ListInsurances)

	writers := h.authMW.RequireRoles(model.RoleManagement, model.RoleFrontDesk)

	rooms := r.Group("/rooms", h.authMW.Authenticate())
	rooms.GET("", h.ListRooms)
	rooms.POST("", writers, h.CreateRoom)
	rooms.PATCH("/:id", writers, h.UpdateRoom)
	rooms.DELETE("/:id", writers, h.DeleteRoom)

	types := r.Group("/appointment-types", h.authMW.Authenticate())
	types.GET("", h.ListAppointmentTypes)
	types.POST("", writers, h.CreateAppointmentType)
	types.PATCH("/:id", writers, h.UpdateAppointmentType)
	types.DELETE("/:id", writers, h.DeleteAppointmentType)

	r.GET("/specialties", h.authMW.Authenticate(), h.ListSpecialties)
	r.GET("/patients", h.authMW.Authenticate(), h.ListPatients)
}

func (h *Handler) ListInterventions(c *gin.Context) {
	types, err := h.service.ListInterventionTypes(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	lang := middleware.LangFrom(c)
	views := make([]*model.InterventionTypeView, 0, len(types))
	for _, t := range types {
		views = append(views, t.Localize(lang))
	}
	httputil.OK(c, views)
}

func (h *Handler) ListUrgencies(c *gin.Context) {
	levels, err := h.service.ListUrgencyLevels(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	lang := middleware.LangFrom(c)
	views := make([]*model.UrgencyLevelView, 0, len(levels))
	for _, u := range levels {
		views = append(views, u.Localize(lang))
	}
	httputil.OK(c, views)
}

func (h *Handler) ListInsurances(c *gin.Context) {
	list, err := h.insurances.List(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, list)
}

func (h *Handler) ListPatients(c *gin.Context) {
	list, err := h.patients.List(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, list)
}

func (h *Handler) ListSpecialties(c *gin.Context) {
	list, err := h.specialties.ListActive(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	lang := middleware.LangFrom(c)
	views := make([]*model.SpecialtyView, 0, len(list))
	for _, s := range list {
		views = append(views, s.Localize(lang))
	}
	httputil.OK(c, views)
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	lang := middleware.LangFrom(c)
	views := make([]*model.RoomView, 0, len(rooms))
	for _, room := range rooms {
		views = append(views, room.Localize(lang))
	}
	httputil.OK(c, views)
}

type roomRequest struct {
	NameFR string `json:"name_fr"`
	NameEN string `json:"name_en"`
	Status string `json:"status"`
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if req.NameFR == "" && req.NameEN == "" {
		httputil.Error(c, apperrors.Validation(map[string]string{"name_fr": "at least one name is required"}))
		return
	}

	room := &model.Room{NameFR: req.NameFR, NameEN: req.NameEN, Status: model.RoomStatusAvailable}
	if req.Status != "" {
		room.Status = model.RoomStatus(req.Status)
	}
	if err := h.service.CreateRoom(c.Request.Context(), room); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, room.Localize(middleware.LangFrom(c)))
}

func (h *Handler) UpdateRoom(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	room, err := h.service.GetRoom(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if req.NameFR != "" {
		room.NameFR = req.NameFR
	}
	if req.NameEN != "" {
		room.NameEN = req.NameEN
	}
	if req.Status != "" {
		room.Status = model.RoomStatus(req.Status)
	}

	if err := h.service.UpdateRoom(c.Request.Context(), room); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, room.Localize(middleware.LangFrom(c)))
}

func (h *Handler) DeleteRoom(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	if err := h.service.DeleteRoom(c.Request.Context(), id); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, gin.H{"deleted": id})
}

func (h *Handler) ListAppointmentTypes(c *gin.Context) {
	types, err := h.service.ListAppointmentTypes(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	lang := middleware.LangFrom(c)
	views := make([]*model.AppointmentTypeView, 0, len(types))
	for _, t := range types {
		views = append(views, t.Localize(lang))
	}
	httputil.OK(c, views)
}

type appointmentTypeRequest struct {
	NameFR string `json:"name_fr"`
	NameEN string `json:"name_en"`
}

func (h *Handler) CreateAppointmentType(c *gin.Context) {
	var req appointmentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if req.NameFR == "" && req.NameEN == "" {
		httputil.Error(c, apperrors.Validation(map[string]string{"name_fr": "at least one name is required"}))
		return
	}

	t := &model.AppointmentType{NameFR: req.NameFR, NameEN: req.NameEN}
	if err := h.service.CreateAppointmentType(c.Request.Context(), t); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, t.Localize(middleware.LangFrom(c)))
}

func (h *Handler) UpdateAppointmentType(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	t, err := h.service.GetAppointmentType(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	var req appointmentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if req.NameFR != "" {
		t.NameFR = req.NameFR
	}
	if req.NameEN != "" {
		t.NameEN = req.NameEN
	}

	if err := h.service.UpdateAppointmentType(c.Request.Context(), t); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, t.Localize(middleware.LangFrom(c)))
}

func (h *Handler) DeleteAppointmentType(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	if err := h.service.DeleteAppointmentType(c.Request.Context(), id); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, gin.H{"deleted": id})
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.BadRequest("invalid id", err)
	}
	return id, nil
}
