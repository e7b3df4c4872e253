package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go.ngs.io/geotides/internal/logging"
	"go.ngs.io/geotides/internal/observability"
	"go.ngs.io/geotides/internal/usecase"
)

// RouterConfig wires the router.
type RouterConfig struct {
	Service *usecase.Service
	Metrics *observability.Metrics
	Logger  logging.Logger
	// AllowedOrigins for CORS. Empty allows all origins.
	AllowedOrigins []string
}

// SetupRouter creates and configures the Gin router.
func SetupRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestContext(cfg.Logger, cfg.Metrics))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.ExposeHeaders = append(corsConfig.ExposeHeaders, requestIDHeader)
	router.Use(cors.New(corsConfig))

	handler := NewHandler(cfg.Service)

	v1 := router.Group("/v1")
	v1.GET("/eop", handler.GetEOP)
	v1.GET("/constituents", handler.GetConstituentsList)

	tides := v1.Group("/tides")
	tides.GET("/components", handler.GetComponents)
	tides.GET("/evaluate", handler.GetEvaluate)
	tides.POST("/evaluate", handler.PostEvaluate)
	tides.POST("/deformation", handler.PostDeformation)
	tides.POST("/orbit", handler.PostOrbit)
	tides.GET("/harmonics", handler.GetHarmonics)

	router.GET("/health", handler.HealthCheck)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	return router
}
