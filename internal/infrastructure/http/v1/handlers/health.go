package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"fakturo/internal/core/workspace"
)

// HealthHandler provides health check endpoints. Readiness is judged
// against the meta-database; workspace pools are created lazily and do
// not gate traffic.
type HealthHandler struct {
	metaPool *pgxpool.Pool
	manager  *workspace.Manager
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(metaPool *pgxpool.Pool, manager *workspace.Manager) *HealthHandler {
	return &HealthHandler{
		metaPool: metaPool,
		manager:  manager,
	}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe - checks meta-database connection.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.metaPool.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"meta_database": "unhealthy: " + err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"meta_database": "healthy",
		},
	})
}

// Info returns application information with workspace pool stats.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	metaStat := h.metaPool.Stat()
	poolStats := h.manager.Stats()

	c.JSON(http.StatusOK, gin.H{
		"app":     "fakturo",
		"version": "0.1.0",
		"meta_database": map[string]any{
			"total_conns":    metaStat.TotalConns(),
			"acquired_conns": metaStat.AcquiredConns(),
			"idle_conns":     metaStat.IdleConns(),
		},
		"workspaces": map[string]any{
			"active_pools":   poolStats.TotalPools,
			"total_conns":    poolStats.TotalConns,
			"idle_conns":     poolStats.IdleConns,
			"acquired_conns": poolStats.AcquiredConns,
		},
	})
}
