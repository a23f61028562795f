package auth

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atlasclinic/clinic-api/internal/middleware"
	authsvc "github.com/atlasclinic/clinic-api/internal/service/auth"
	usersvc "github.com/atlasclinic/clinic-api/internal/service/user"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/httputil"
	"github.com/atlasclinic/clinic-api/pkg/validator"
)

type Handler struct {
	service   *authsvc.Service
	users     *usersvc.Service
	validator *validator.Validator
	authMW    *middleware.AuthMiddleware
}

func NewHandler(service *authsvc.Service, users *usersvc.Service, validator *validator.Validator, authMW *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, users: users, validator: validator, authMW: authMW}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)

	me := auth.Group("", h.authMW.Authenticate())
	me.GET("/me", h.Me)
	me.PATCH("/me", h.UpdateMe)
}

func (h *Handler) Login(c *gin.Context) {
	var req authsvc.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.Error(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), &req, middleware.LangFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, result)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.Error(c, err)
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, pair)
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		httputil.Error(c, apperrors.Unauthorized(nil))
		return
	}

	view, err := h.service.Me(c.Request.Context(), userID, middleware.LangFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, view)
}

// UpdateMe accepts either a JSON body or a multipart form. The multipart
// variant carries profile fields as form values plus an optional photo.
func (h *Handler) UpdateMe(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		httputil.Error(c, apperrors.Unauthorized(nil))
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		h.updateMeMultipart(c, userID)
		return
	}

	var req authsvc.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.Error(c, err)
		return
	}

	view, err := h.service.UpdateMe(c.Request.Context(), userID, &req, middleware.LangFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, view)
}

func (h *Handler) updateMeMultipart(c *gin.Context, id uuid.UUID) {
	req := authsvc.UpdateProfileRequest{}
	form := func(key string) *string {
		if v, ok := c.GetPostForm(key); ok {
			return &v
		}
		return nil
	}
	req.Email = form("email")
	req.FirstName = form("first_name")
	req.LastName = form("last_name")
	req.Phone = form("phone")
	req.Language = form("language")
	req.Theme = form("theme")

	view, err := h.service.UpdateMe(c.Request.Context(), id, &req, middleware.LangFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}

	if file, err := c.FormFile("photo"); err == nil {
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
		view, err = h.users.SavePhoto(c.Request.Context(), id, file.Filename, data)
		if err != nil {
			httputil.Error(c, err)
			return
		}
	}
	httputil.OK(c, view)
}
