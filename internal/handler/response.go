package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"mrstrict/internal/domain"
	"mrstrict/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Warning *APIError   `json:"warning,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, txt"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrMissingReference):
		return http.StatusBadRequest, "MISSING_REFERENCE", "a reference document is required"
	case errors.Is(err, domain.ErrNoCandidates):
		return http.StatusBadRequest, "NO_CANDIDATES", "at least one candidate document or bundle is required"
	case errors.Is(err, domain.ErrTooManyCandidates):
		return http.StatusBadRequest, "TOO_MANY_CANDIDATES", "too many candidate documents in one evaluation"
	case errors.Is(err, domain.ErrInvalidArchive):
		return http.StatusBadRequest, "INVALID_ARCHIVE", "bundle is not a valid zip archive"
	case errors.Is(err, domain.ErrArchiveTooLarge):
		return http.StatusRequestEntityTooLarge, "ARCHIVE_TOO_LARGE", "bundle exceeds allowed entry count or size"
	case errors.Is(err, domain.ErrReferenceExtraction):
		return http.StatusUnprocessableEntity, "REFERENCE_EXTRACTION_FAILED", "could not extract text from the reference document"
	case errors.Is(err, domain.ErrNoValidCandidates):
		return http.StatusUnprocessableEntity, "NO_VALID_CANDIDATES", "no candidate document produced readable text"
	case errors.Is(err, domain.ErrDeliveryFailed):
		return http.StatusBadGateway, "DELIVERY_FAILED", "marks could not be delivered by email"
	case errors.Is(err, domain.ErrInvalidRecipient):
		return http.StatusBadRequest, "INVALID_RECIPIENT", "invalid recipient email address"
	case errors.Is(err, domain.ErrUnsupportedExportFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", "unsupported export format; allowed: csv, xlsx"
	case errors.Is(err, domain.ErrNotificationNotConfigured):
		return http.StatusServiceUnavailable, "NOTIFICATIONS_DISABLED", "email notifications are not configured"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get(middleware.ContextKeyRequestID)
		log.Error().Err(err).Interface("request_id", requestID).Msg("internal error")
	}
	RespondError(c, status, code, msg)
}

// extractOwner returns the authenticated user ID.
// Returns false if auth context is missing (error response already written).
func extractOwner(c *gin.Context) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, false
	}
	return userID, true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid evaluation ID")
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
