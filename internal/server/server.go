// internal/server/server.go

// Package server wires the HTTP surface: routing, middleware, and the
// request handlers over the search, application, and auth services.
package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobtrail/internal/applications"
	"jobtrail/internal/auth"
	"jobtrail/internal/common/config"
	"jobtrail/internal/common/errors"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/common/observability"
	"jobtrail/internal/search"
	"jobtrail/internal/tracker"
)

// Server holds the handler dependencies.
type Server struct {
	cfg     *config.Config
	search  *search.Service
	apps    *applications.Service
	auth    *auth.Service
	tracker *tracker.Index
	obs     *observability.Observability
	respond *errors.Responder
	logger  logger.Logger
}

// New builds the server. obs may be nil when tracing is disabled.
func New(
	cfg *config.Config,
	searchSvc *search.Service,
	appsSvc *applications.Service,
	authSvc *auth.Service,
	trackerIdx *tracker.Index,
	obs *observability.Observability,
	log logger.Logger,
) *Server {
	return &Server{
		cfg:     cfg,
		search:  searchSvc,
		apps:    appsSvc,
		auth:    authSvc,
		tracker: trackerIdx,
		obs:     obs,
		respond: errors.NewResponder(log),
		logger:  log,
	}
}

// Router assembles the gin engine with middleware and all routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.logger))
	r.Use(Instrument(s.obs))

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.Server.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = s.cfg.Server.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowCredentials = !corsCfg.AllowAllOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.handleRegister)
			authGroup.POST("/login", s.handleLogin)
			authGroup.GET("/verify/:id", s.handleVerify)
			authGroup.POST("/logout", s.RequireSession(), s.handleLogout)
			authGroup.GET("/me", s.RequireSession(), s.handleCurrentUser)
		}

		api.GET("/jobs/search", s.RequireSession(), s.handleSearch)

		apps := api.Group("/applications", s.RequireSession())
		{
			apps.POST("", s.handleTrackApplication)
			apps.GET("", s.handleListApplications)
			apps.PUT("/:id/stage", s.handleAdvanceApplication)
			apps.PUT("/:id/outcome", s.handleFinalizeApplication)
		}

		analytics := api.Group("/analytics", s.RequireSession())
		{
			analytics.GET("/dashboard", s.handleDashboard)
			analytics.GET("/companies/:company", s.handleCompanyStats)
		}
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
