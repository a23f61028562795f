package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/atlasclinic/clinic-api/internal/handler/health"
	"github.com/atlasclinic/clinic-api/internal/middleware"
	"github.com/atlasclinic/clinic-api/pkg/metrics"
)

// Handler is anything that can mount itself on the API group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	Mode       string
	CORSConfig middleware.CORSConfig
	StaticDir  string
}

type Router struct {
	engine *gin.Engine
}

// New assembles the engine with the middleware chain and mounts every
// handler under /api/v1.
func New(
	cfg Config,
	logger zerolog.Logger,
	m *metrics.Metrics,
	healthH *health.Handler,
	handlers ...Handler,
) *Router {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Metrics(m),
		middleware.CORS(cfg.CORSConfig),
		middleware.Language(),
	)

	healthH.RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.StaticDir != "" {
		engine.Static("/uploads", cfg.StaticDir)
	}

	api := engine.Group("/api/v1")
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
