package user

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atlasclinic/clinic-api/internal/middleware"
	"github.com/atlasclinic/clinic-api/internal/model"
	usersvc "github.com/atlasclinic/clinic-api/internal/service/user"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/httputil"
	"github.com/atlasclinic/clinic-api/pkg/validator"
)

type Handler struct {
	service   *usersvc.Service
	validator *validator.Validator
	authMW    *middleware.AuthMiddleware
}

func NewHandler(service *usersvc.Service, validator *validator.Validator, authMW *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, validator: validator, authMW: authMW}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users", h.authMW.Authenticate())
	users.GET("", h.List)
	users.POST("", h.authMW.RequireRoles(model.RoleManagement), h.Create)
	users.GET("/:id", h.Get)
	users.PATCH("/:id", h.authMW.RequireRoles(model.RoleManagement, model.RoleFrontDesk), h.Update)
	users.DELETE("/:id", h.authMW.RequireRoles(model.RoleManagement), h.Delete)
	users.POST("/:id/photo", h.UploadPhoto)

	r.GET("/physicians", h.authMW.Authenticate(), h.ListPhysicians)
}

// List returns staff accounts. Physicians only ever see themselves.
func (h *Handler) List(c *gin.Context) {
	lang := middleware.LangFrom(c)

	if role, _ := middleware.RoleFrom(c); role == model.RolePhysician {
		selfID, _ := middleware.UserIDFrom(c)
		view, err := h.service.Get(c.Request.Context(), selfID, lang)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		httputil.OK(c, []*model.UserView{view})
		return
	}

	views, err := h.service.List(c.Request.Context(), c.Query("role"), lang)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, views)
}

// ListPhysicians backs the doctor pickers. Physician callers get only
// their own entry, the same scoping List applies.
func (h *Handler) ListPhysicians(c *gin.Context) {
	lang := middleware.LangFrom(c)

	if role, _ := middleware.RoleFrom(c); role == model.RolePhysician {
		selfID, _ := middleware.UserIDFrom(c)
		view, err := h.service.Get(c.Request.Context(), selfID, lang)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		httputil.OK(c, []*model.UserView{view})
		return
	}

	views, err := h.service.ListPhysicians(c.Request.Context(), lang)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, views)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.Error(c, err)
		return
	}

	view, err := h.service.Create(c.Request.Context(), &req, middleware.LangFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, view)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := h.targetID(c)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	view, err := h.service.Get(c.Request.Context(), id, middleware.LangFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, view)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid user id", err))
		return
	}

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.Error(c, err)
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
		httputil.Error(c, apperrors.BadRequest("invalid user id", err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, gin.H{"deleted": id})
}

func (h *Handler) UploadPhoto(c *gin.Context) {
	id, err := h.targetID(c)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		httputil.Error(c, apperrors.BadRequest("photo file is required", err))
		return
	}
	src, err := file.Open()
	if err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid photo upload", err))
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid photo upload", err))
		return
	}

	view, err := h.service.SavePhoto(c.Request.Context(), id, file.Filename, data)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, view)
}

// targetID parses the :id parameter and confines physicians to their own
// record.
func (h *Handler) targetID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest("invalid user id", err)
	}
	if role, _ := middleware.RoleFrom(c); role == model.RolePhysician {
		selfID, _ := middleware.UserIDFrom(c)
		if id != selfID {
			return uuid.Nil, apperrors.Forbidden(errors.New("physicians may only access their own account"))
		}
	}
	return id, nil
}
