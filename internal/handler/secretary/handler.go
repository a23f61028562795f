package secretary

import (
	"github.com/gin-gonic/gin"

	"github.com/atlasclinic/clinic-api/internal/middleware"
	"github.com/atlasclinic/clinic-api/internal/model"
	secsvc "github.com/atlasclinic/clinic-api/internal/service/secretary"
	"github.com/atlasclinic/clinic-api/pkg/httputil"
)

type Handler struct {
	service *secsvc.Service
	authMW  *middleware.AuthMiddleware
}

func NewHandler(service *secsvc.Service, authMW *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, authMW: authMW}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/secretary-referrals",
		h.authMW.Authenticate(),
		h.authMW.RequireRoles(model.RoleFrontDesk, model.RoleManagement),
		h.List,
	)
}

func (h *Handler) List(c *gin.Context) {
	rows, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, rows)
}
