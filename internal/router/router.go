package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "lcaload/docs"
	"lcaload/internal/handler"
	"lcaload/internal/middleware"
)

// uploadOverheadBytes is the multipart framing allowed on top of the file cap.
const uploadOverheadBytes = 1 << 20

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	ingestH *handler.IngestHandler,
	healthH *handler.HealthHandler,
	maxUploadBytes int64,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	ingest := v1.Group("/ingest")
	ingest.POST("/uploads", middleware.BodyLimit(maxUploadBytes+uploadOverheadBytes), ingestH.Upload)
	ingest.POST("/chunks", ingestH.RunChunk)
	ingest.DELETE("/jobs/:job_id", ingestH.Release)
	ingest.POST("/wage-areas/patch", ingestH.PatchAreas)

	return r
}
