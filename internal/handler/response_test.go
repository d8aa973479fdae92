package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"mrstrict/internal/domain"
	"mrstrict/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrMissingReference, http.StatusBadRequest, "MISSING_REFERENCE"},
		{domain.ErrNoCandidates, http.StatusBadRequest, "NO_CANDIDATES"},
		{domain.ErrTooManyCandidates, http.StatusBadRequest, "TOO_MANY_CANDIDATES"},
		{domain.ErrArchiveTooLarge, http.StatusRequestEntityTooLarge, "ARCHIVE_TOO_LARGE"},
		{fmt.Errorf("%w: bad header", domain.ErrReferenceExtraction), http.StatusUnprocessableEntity, "REFERENCE_EXTRACTION_FAILED"},
		{domain.ErrNoValidCandidates, http.StatusUnprocessableEntity, "NO_VALID_CANDIDATES"},
		{fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, errors.New("refused")), http.StatusBadGateway, "DELIVERY_FAILED"},
		{domain.ErrInvalidRecipient, http.StatusBadRequest, "INVALID_RECIPIENT"},
		{domain.ErrNotificationNotConfigured, http.StatusServiceUnavailable, "NOTIFICATIONS_DISABLED"},
		{errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}
