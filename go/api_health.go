package adoptionserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger func(ctx context.Context) error

// HealthAPI serves liveness and the Prometheus scrape endpoint.
type HealthAPI struct {
	storage Pinger
	metrics http.Handler
}

// NewHealthAPI builds the health endpoints. storage and metrics may be nil.
func NewHealthAPI(storage Pinger, metrics http.Handler) HealthAPI {
	return HealthAPI{storage: storage, metrics: metrics}
}

// Get /healthz
func (api *HealthAPI) Healthz(c *gin.Context) {
	body := gin.H{"status": "ok", "storage": "memory"}
	if api.storage != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := api.storage(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "storage": "postgres", "error": err.Error()})
			return
		}
		body["storage"] = "postgres"
	}
	c.JSON(http.StatusOK, body)
}

// Get /metrics
func (api *HealthAPI) Metrics(c *gin.Context) {
	if api.metrics == nil {
		c.Status(http.StatusNotFound)
		return
	}
	api.metrics.ServeHTTP(c.Writer, c.Request)
}
