package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fastcart/fastcart/internal/config"
	"github.com/fastcart/fastcart/pkg/metrics"
)

// NewRouter builds the shared engine: recovery, metrics, CORS, health
// and metrics endpoints. Each service registers its own routes on top.
func NewRouter(cfg *config.Config, m *metrics.Collector) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Metrics(m))
	r.Use(CORS(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	return r
}
