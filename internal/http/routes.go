package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog())
	r.Use(Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	wl := RateLimitWrites(h.Redis, NewRateLimiter(h.RateLimitPerMin, time.Minute), h.RateLimitPerMin)

	ann := r.Group("/announcements")
	{
		ann.GET("/active", h.ListActive)
		ann.GET("/all", h.ListAll)
		ann.POST("/", wl, h.Create)
		ann.PUT("/:id", wl, h.Update)
		ann.DELETE("/:id", wl, h.Delete)
	}
	return r
}
