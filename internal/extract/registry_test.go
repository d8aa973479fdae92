package extract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mrstrict/internal/domain"
	"mrstrict/internal/extract"
	"mrstrict/mocks"
)

func TestRegistry_DispatchesByFileType(t *testing.T) {
	pdfExt := new(mocks.MockTextExtractor)
	txtExt := new(mocks.MockTextExtractor)

	r := extract.NewRegistry()
	r.Register(domain.FileTypePDF, pdfExt)
	r.Register(domain.FileTypeText, txtExt)

	doc := domain.NewSourceDocument("answer.PDF", []byte("%PDF"))
	pdfExt.On("Extract", mock.Anything, doc).Return(domain.NewExtraction("from pdf"))

	got := r.Extract(context.Background(), doc)

	assert.True(t, got.OK())
	assert.Equal(t, "from pdf", got.Text)
	pdfExt.AssertExpectations(t)
	txtExt.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestRegistry_UnsupportedType(t *testing.T) {
	r := extract.NewDefaultRegistry()

	got := r.Extract(context.Background(), domain.NewSourceDocument("notes.docx", []byte("PK")))

	assert.Equal(t, domain.ExtractionFailed, got.Status)
	assert.ErrorIs(t, got.Err, domain.ErrUnsupportedFileType)
	assert.False(t, r.Supports(""))
	assert.True(t, r.Supports(domain.FileTypePDF))
	assert.True(t, r.Supports(domain.FileTypeText))
}

func TestRegistry_CanceledContext(t *testing.T) {
	r := extract.NewDefaultRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := r.Extract(ctx, domain.NewSourceDocument("a.txt", []byte("hello")))

	assert.Equal(t, domain.ExtractionFailed, got.Status)
	assert.ErrorIs(t, got.Err, context.Canceled)
}

func TestDefaultRegistry_PlainText(t *testing.T) {
	r := extract.NewDefaultRegistry()

	got := r.Extract(context.Background(), domain.NewSourceDocument("a.txt", []byte("line one\nline two\n")))

	assert.Equal(t, domain.ExtractionOK, got.Status)
	assert.Equal(t, "line one\nline two\n", got.Text)
}
