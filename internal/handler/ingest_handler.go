package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lcaload/internal/domain"
	"lcaload/internal/service"
)

// IngestHandler handles source upload, chunk invocation and job release.
type IngestHandler struct {
	ingestService service.IngestService
	patchService  service.AreaPatchService
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(ingestService service.IngestService, patchService service.AreaPatchService) *IngestHandler {
	return &IngestHandler{ingestService: ingestService, patchService: patchService}
}

// Upload handles POST /api/v1/ingest/uploads
// @Summary Upload a source file
// @Description Upload a CSV, ZIP or XLSX source and open a new ingest job
// @Tags ingest
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Source file (csv, txt, zip or xlsx)"
// @Param dataset formData string true "Target dataset (disclosure or wage)"
// @Success 201 {object} APIResponse{data=domain.SourceFile} "Source uploaded"
// @Failure 400 {object} APIResponse "Missing file, unknown dataset or unsupported type"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 500 {object} APIResponse "Upload failed"
// @Router /ingest/uploads [post]
func (h *IngestHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	ds := c.PostForm("dataset")
	if ds == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_DATASET", "dataset field is required")
		return
	}

	src, err := h.ingestService.Upload(c.Request.Context(), service.UploadInput{
		Dataset:  domain.DatasetName(ds),
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, src)
}

// RunChunk handles POST /api/v1/ingest/chunks
// @Summary Process one ingest window
// @Description Import the window after the cursor and return counts plus the cursor to resume from
// @Tags ingest
// @Accept json
// @Produce json
// @Param body body RunChunkRequest true "Chunk request"
// @Success 200 {object} APIResponse{data=domain.ChunkResult} "Window processed"
// @Failure 400 {object} APIResponse "Invalid request or cursor"
// @Failure 404 {object} APIResponse "Source not found"
// @Failure 422 {object} APIResponse "Source cannot be ingested"
// @Router /ingest/chunks [post]
func (h *IngestHandler) RunChunk(c *gin.Context) {
	var req RunChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	res, err := h.ingestService.RunChunk(c.Request.Context(), service.ChunkInput{
		SourceKey:   req.SourceKey,
		Dataset:     req.Dataset,
		DatasetYear: req.DatasetYear,
		Cursor:      req.Cursor,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, res)
}

// Release handles DELETE /api/v1/ingest/jobs/:job_id
// @Summary Release a job
// @Description Delete the uploaded source and every derived object of a job
// @Tags ingest
// @Produce json
// @Param job_id path string true "Job ID"
// @Success 200 {object} APIResponse{data=ReleaseResponse} "Job released"
// @Failure 400 {object} APIResponse "Invalid job ID"
// @Router /ingest/jobs/{job_id} [delete]
func (h *IngestHandler) Release(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job ID")
		return
	}

	n, err := h.ingestService.Release(c.Request.Context(), jobID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ReleaseResponse{JobID: jobID.String(), ObjectsDeleted: n})
}

// PatchAreas handles POST /api/v1/ingest/wage-areas/patch
// @Summary Backfill wage area names
// @Description Download an allow-listed wage archive and set area names from its geography entry
// @Tags ingest
// @Accept json
// @Produce json
// @Param body body PatchAreasRequest true "Patch request"
// @Success 200 {object} APIResponse{data=domain.AreaPatchResult} "Area names patched"
// @Failure 400 {object} APIResponse "Invalid request or host not allow-listed"
// @Failure 422 {object} APIResponse "Archive has no geography entry"
// @Failure 502 {object} APIResponse "Archive download failed"
// @Router /ingest/wage-areas/patch [post]
func (h *IngestHandler) PatchAreas(c *gin.Context) {
	var req PatchAreasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	res, err := h.patchService.PatchAreas(c.Request.Context(), service.AreaPatchInput{
		ArchiveURL:  req.ArchiveURL,
		DatasetYear: req.DatasetYear,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, res)
}
