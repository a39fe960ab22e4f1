package api

import (
	stdhttp "net/http"

	"tracker/internal/auth"
	intconfig "tracker/internal/config"
	"tracker/internal/domain"
	"tracker/internal/http/dispatch"
	h "tracker/internal/http/handlers"
	"tracker/internal/http/middleware"
	"tracker/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the long-lived collaborators the router is built from.
type Deps struct {
	Store    *store.Store
	Logger   hclog.Logger
	Registry *prometheus.Registry
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Warn("failed to set trusted proxies", "error", err)
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, dispatch.ErrorBody{
			Code:    domain.KindNotFound,
			Message: "route not found",
			Extras:  map[string]any{"path": c.Request.URL.Path, "method": c.Request.Method},
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	d := dispatch.New(auth.NewJWTResolver(env.JWTSecret), logger, dispatch.NewMetrics(registry))
	api := h.New(deps.Store, d, auth.NewIssuer(env.JWTSecret, env.TokenTTL), logger)
	api.Mount(r.Group("/api"))

	return r
}
