package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"mrstrict/internal/archive"
	"mrstrict/internal/domain"
	"mrstrict/internal/report"
	"mrstrict/internal/service"
)

// Multipart field names accepted by Create.
const (
	FieldReference   = "reference"
	FieldCandidates  = "candidates"
	FieldBundle      = "bundle"
	FieldNotifyEmail = "notify_email"
)

// UploadLimits bounds what Create reads from a request.
type UploadLimits struct {
	MaxFileBytes      int64
	MaxBundleBytes    int64
	MaxArchiveEntries int
}

// EvaluationHandler handles evaluation endpoints.
type EvaluationHandler struct {
	evaluationService service.EvaluationService
	limits            UploadLimits
}

// NewEvaluationHandler creates a new EvaluationHandler.
func NewEvaluationHandler(evaluationService service.EvaluationService, limits UploadLimits) *EvaluationHandler {
	return &EvaluationHandler{evaluationService: evaluationService, limits: limits}
}

// NotifyRequest is the body of POST /evaluations/:id/notify.
type NotifyRequest struct {
	Email string `json:"email" binding:"required"`
}

// Create handles POST /api/v1/evaluations.
// Accepts a reference file plus candidate files and/or ZIP bundles.
func (h *EvaluationHandler) Create(c *gin.Context) {
	ownerID, ok := extractOwner(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart form data is required")
		return
	}

	refHeaders := form.File[FieldReference]
	if len(refHeaders) == 0 {
		HandleError(c, domain.ErrMissingReference)
		return
	}
	reference, err := h.readDocument(refHeaders[0])
	if err != nil {
		HandleError(c, err)
		return
	}
	if _, ok := domain.FileTypeFromName(reference.Name); !ok {
		HandleError(c, domain.ErrUnsupportedFileType)
		return
	}

	var candidates []domain.SourceDocument
	for _, fh := range form.File[FieldCandidates] {
		doc, err := h.readDocument(fh)
		if err != nil {
			HandleError(c, err)
			return
		}
		candidates = append(candidates, doc)
	}
	for _, fh := range form.File[FieldBundle] {
		docs, err := h.readBundle(fh)
		if err != nil {
			HandleError(c, err)
			return
		}
		candidates = append(candidates, docs...)
	}
	if len(candidates) == 0 {
		HandleError(c, domain.ErrNoCandidates)
		return
	}

	eval, err := h.evaluationService.Evaluate(c.Request.Context(), service.EvaluateInput{
		OwnerID:     ownerID,
		Reference:   reference,
		Candidates:  candidates,
		NotifyEmail: c.PostForm(FieldNotifyEmail),
	})
	switch {
	case err == nil:
		RespondCreated(c, eval)
	case eval != nil && errors.Is(err, domain.ErrDeliveryFailed):
		_, code, msg := MapDomainError(err)
		c.JSON(http.StatusCreated, APIResponse{
			Success: true,
			Data:    eval,
			Warning: &APIError{Code: code, Message: msg},
		})
	case eval != nil && errors.Is(err, domain.ErrNoValidCandidates):
		status, code, msg := MapDomainError(err)
		c.JSON(status, APIResponse{
			Success: false,
			Data:    eval,
			Error:   &APIError{Code: code, Message: msg},
		})
	default:
		HandleError(c, err)
	}
}

// readDocument reads at most one byte past the size limit so oversized
// candidates reach the service and are reported as skipped.
func (h *EvaluationHandler) readDocument(fh *multipart.FileHeader) (domain.SourceDocument, error) {
	data, err := readPart(fh, h.limits.MaxFileBytes)
	if err != nil {
		return domain.SourceDocument{}, err
	}
	return domain.NewSourceDocument(filepath.Base(fh.Filename), data), nil
}

func (h *EvaluationHandler) readBundle(fh *multipart.FileHeader) ([]domain.SourceDocument, error) {
	if h.limits.MaxBundleBytes > 0 && fh.Size > h.limits.MaxBundleBytes {
		return nil, domain.ErrArchiveTooLarge
	}
	data, err := readPart(fh, h.limits.MaxBundleBytes)
	if err != nil {
		return nil, err
	}
	if h.limits.MaxBundleBytes > 0 && int64(len(data)) > h.limits.MaxBundleBytes {
		return nil, domain.ErrArchiveTooLarge
	}
	return archive.ReadZip(data, archive.Limits{
		MaxEntries:    h.limits.MaxArchiveEntries,
		MaxEntryBytes: h.limits.MaxFileBytes,
	})
}

func readPart(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

// List handles GET /api/v1/evaluations.
func (h *EvaluationHandler) List(c *gin.Context) {
	ownerID, ok := extractOwner(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	evals, total, err := h.evaluationService.List(c.Request.Context(), ownerID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, evals, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/evaluations/:id.
func (h *EvaluationHandler) GetByID(c *gin.Context) {
	ownerID, ok := extractOwner(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	eval, err := h.evaluationService.GetByID(c.Request.Context(), ownerID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, eval)
}

// Export handles GET /api/v1/evaluations/:id/export?format=csv|xlsx.
func (h *EvaluationHandler) Export(c *gin.Context) {
	ownerID, ok := extractOwner(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	format, ok := report.ParseFormat(c.Query("format"))
	if !ok {
		HandleError(c, domain.ErrUnsupportedExportFormat)
		return
	}

	var buf bytes.Buffer
	eval, err := h.evaluationService.Export(c.Request.Context(), ownerID, id, format, &buf)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := report.BuildFilename(eval.ReferenceName, format, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// ReportURL handles GET /api/v1/evaluations/:id/report.
// Returns a presigned URL for the archived CSV report.
func (h *EvaluationHandler) ReportURL(c *gin.Context) {
	ownerID, ok := extractOwner(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	url, err := h.evaluationService.GetReportURL(c.Request.Context(), ownerID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}

// Notify handles POST /api/v1/evaluations/:id/notify.
func (h *EvaluationHandler) Notify(c *gin.Context) {
	ownerID, ok := extractOwner(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "email is required")
		return
	}

	eval, err := h.evaluationService.Notify(c.Request.Context(), ownerID, id, req.Email)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, eval)
}

// Delete handles DELETE /api/v1/evaluations/:id.
func (h *EvaluationHandler) Delete(c *gin.Context) {
	ownerID, ok := extractOwner(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.evaluationService.Delete(c.Request.Context(), ownerID, id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "evaluation deleted"})
}
