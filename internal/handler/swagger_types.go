package handler

import "lcaload/internal/domain"

// Request and response bodies of the ingest API. Request types are bound by
// gin; response types document the envelope payloads.

// RunChunkRequest represents one ingest invocation.
type RunChunkRequest struct {
	SourceKey   string               `json:"source_key" binding:"required" example:"jobs/5b1e.../source/LCA_Disclosure_Data_FY2024_Q4.csv"`
	Dataset     domain.DatasetName   `json:"dataset" binding:"required" example:"disclosure"`
	DatasetYear int                  `json:"dataset_year" binding:"required,gt=0" example:"2024"`
	Cursor      *domain.IngestCursor `json:"cursor"`
}

// PatchAreasRequest represents an area-name backfill request.
type PatchAreasRequest struct {
	ArchiveURL  string `json:"archive_url" binding:"required" example:"https://flag.dol.gov/sites/default/files/wages/OFLC_Wages_2024-25.zip"`
	DatasetYear int    `json:"dataset_year" binding:"required,gt=0" example:"2024"`
}

// ReleaseResponse is the payload of a job release.
type ReleaseResponse struct {
	JobID          string `json:"job_id" example:"5b1e0c36-7d0e-4c55-9d8e-0f3f9d3b2a11"`
	ObjectsDeleted int    `json:"objects_deleted" example:"3"`
}
