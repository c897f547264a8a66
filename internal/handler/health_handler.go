package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// schemaVersionQuery reads the golang-migrate bookkeeping row.
const schemaVersionQuery = `SELECT version, dirty FROM schema_migrations LIMIT 1`

type schemaVersion struct {
	Version int64 `db:"version"`
	Dirty   bool  `db:"dirty"`
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The loader is ready once the database
// answers and the disclosure and wage tables are at a clean migration.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}

	var v schemaVersion
	if err := h.db.GetContext(ctx, &v, schemaVersionQuery); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "schema not migrated"})
		return
	}
	if v.Dirty {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable", "error": "schema migration is dirty", "schema_version": v.Version,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "schema_version": v.Version})
}
