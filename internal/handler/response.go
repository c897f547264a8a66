package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"lcaload/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Source errors keep their wrapped detail (entry names, sizes) in the message.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: csv, txt, zip, xlsx"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrUnknownDataset):
		return http.StatusBadRequest, "UNKNOWN_DATASET", "unknown dataset; allowed: disclosure, wage"
	case errors.Is(err, domain.ErrMissingDatasetYear):
		return http.StatusBadRequest, "MISSING_DATASET_YEAR", "dataset_year must be a positive year"
	case errors.Is(err, domain.ErrMissingSourceKey):
		return http.StatusBadRequest, "MISSING_SOURCE_KEY", "source_key is required"
	case errors.Is(err, domain.ErrInvalidCursor):
		return http.StatusBadRequest, "INVALID_CURSOR", err.Error()
	case errors.Is(err, domain.ErrHostNotAllowed):
		return http.StatusBadRequest, "HOST_NOT_ALLOWED", "archive host is not allow-listed"
	case errors.Is(err, domain.ErrInvalidArchiveURL):
		return http.StatusBadRequest, "INVALID_ARCHIVE_URL", err.Error()
	case errors.Is(err, domain.ErrSourceNotFound):
		return http.StatusNotFound, "SOURCE_NOT_FOUND", "source object not found"
	case errors.Is(err, domain.ErrNoCSVEntry):
		return http.StatusUnprocessableEntity, "NO_CSV_ENTRY", err.Error()
	case errors.Is(err, domain.ErrNoGeographyEntry):
		return http.StatusUnprocessableEntity, "NO_GEOGRAPHY_ENTRY", err.Error()
	case errors.Is(err, domain.ErrRowExceedsWindow):
		return http.StatusUnprocessableEntity, "ROW_EXCEEDS_WINDOW", err.Error()
	case errors.Is(err, domain.ErrMissingHeader):
		return http.StatusUnprocessableEntity, "MISSING_HEADER", err.Error()
	case errors.Is(err, domain.ErrArchiveTooLarge):
		return http.StatusRequestEntityTooLarge, "ARCHIVE_TOO_LARGE", "archive exceeds maximum allowed size"
	case errors.Is(err, domain.ErrArchiveFetch):
		return http.StatusBadGateway, "ARCHIVE_FETCH_FAILED", err.Error()
	case errors.Is(err, domain.ErrStorageRead):
		return http.StatusBadGateway, "STORAGE_READ_FAILED", err.Error()
	case errors.Is(err, domain.ErrSourceUnreadable):
		return http.StatusUnprocessableEntity, "SOURCE_UNREADABLE", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
