package domain

import "errors"

var (
	ErrNotFound                  = errors.New("resource not found")
	ErrUnauthorized              = errors.New("unauthorized")
	ErrUnsupportedFileType       = errors.New("unsupported file type")
	ErrFileTooLarge              = errors.New("file exceeds maximum allowed size")
	ErrMissingReference          = errors.New("reference document is required")
	ErrNoCandidates              = errors.New("at least one candidate document is required")
	ErrTooManyCandidates         = errors.New("too many candidate documents")
	ErrInvalidArchive            = errors.New("invalid zip archive")
	ErrArchiveTooLarge           = errors.New("zip archive exceeds allowed limits")
	ErrReferenceExtraction       = errors.New("failed to extract text from reference document")
	ErrNoValidCandidates         = errors.New("no valid candidate documents found")
	ErrDeliveryFailed            = errors.New("failed to deliver notification")
	ErrInvalidRecipient          = errors.New("invalid recipient email address")
	ErrUnsupportedExportFormat   = errors.New("unsupported export format")
	ErrNotificationNotConfigured = errors.New("email notifications are not configured")
)
