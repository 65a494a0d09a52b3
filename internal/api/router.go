package api

import (
	"github.com/gin-gonic/gin"
	"github.com/guanghao479/golden/internal/api/handler"
	"github.com/guanghao479/golden/internal/api/middleware"
	"github.com/guanghao479/golden/internal/logger"
)

// RouterConfig carries the handler set and server options for route setup.
type RouterConfig struct {
	Mode   string
	CORS   middleware.CORSConfig
	Logger *logger.Logger

	Crawl  *handler.CrawlHandler
	Events *handler.EventHandler
	Places *handler.PlaceHandler
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(cfg RouterConfig) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler()
	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Crawl orchestration
		v1.POST("/crawl", cfg.Crawl.SubmitCrawl)
		v1.POST("/crawl/refresh", cfg.Crawl.Refresh)
		v1.GET("/sources", cfg.Crawl.ListSources)

		// Extracted record curation
		v1.GET("/events", cfg.Events.ListEvents)
		v1.PATCH("/events/:id", cfg.Events.UpdateEvent)
		v1.POST("/events/:id/approve", cfg.Events.ApproveEvent)

		v1.GET("/places", cfg.Places.ListPlaces)
		v1.PATCH("/places/:id", cfg.Places.UpdatePlace)
		v1.POST("/places/:id/approve", cfg.Places.ApprovePlace)
	}

	return r
}
