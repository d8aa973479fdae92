package archive_test

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mrstrict/internal/archive"
	"mrstrict/internal/domain"
)

type entry struct {
	name string
	body string
}

func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadZip_FiltersEntries(t *testing.T) {
	data := buildZip(t,
		entry{"answers/alice.pdf", "%PDF-alice"},
		entry{"answers/bob.txt", "bob's answer"},
		entry{"answers/notes.docx", "ignored"},
		entry{"__MACOSX/answers/._alice.pdf", "resource fork"},
		entry{"answers/.DS_Store", "finder"},
		entry{"answers/sub/", ""},
	)

	docs, err := archive.ReadZip(data, archive.Limits{})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "alice.pdf", docs[0].Name)
	assert.Equal(t, domain.FileTypePDF, docs[0].FileType)
	assert.Equal(t, []byte("%PDF-alice"), docs[0].Data)

	assert.Equal(t, "bob.txt", docs[1].Name)
	assert.Equal(t, domain.FileTypeText, docs[1].FileType)
}

func TestReadZip_DuplicateBaseNamesKeepPath(t *testing.T) {
	data := buildZip(t,
		entry{"section-a/answer.pdf", "a"},
		entry{"section-b/answer.pdf", "b"},
	)

	docs, err := archive.ReadZip(data, archive.Limits{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "section-a/answer.pdf", docs[0].Name)
	assert.Equal(t, "section-b/answer.pdf", docs[1].Name)
}

func TestReadZip_RepeatedPathsGetDistinctNames(t *testing.T) {
	data := buildZip(t,
		entry{"a/x.txt", "1"},
		entry{"b/x.txt", "2"},
		entry{"b/x.txt", "3"},
		entry{"x.txt", "4"},
		entry{"solo.txt", "5"},
	)

	docs, err := archive.ReadZip(data, archive.Limits{})
	require.NoError(t, err)

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"a/x.txt", "b/x.txt", "b/x (2).txt", "x.txt", "solo.txt"}, names)
	assert.Equal(t, []byte("3"), docs[2].Data)
}

func TestReadZip_InvalidArchive(t *testing.T) {
	_, err := archive.ReadZip([]byte("not a zip"), archive.Limits{})
	assert.ErrorIs(t, err, domain.ErrInvalidArchive)
}

func TestReadZip_MaxEntries(t *testing.T) {
	data := buildZip(t,
		entry{"a.txt", "a"},
		entry{"b.txt", "b"},
		entry{"c.txt", "c"},
	)

	_, err := archive.ReadZip(data, archive.Limits{MaxEntries: 2})
	assert.ErrorIs(t, err, domain.ErrArchiveTooLarge)

	docs, err := archive.ReadZip(data, archive.Limits{MaxEntries: 3})
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestReadZip_MaxEntryBytes(t *testing.T) {
	data := buildZip(t, entry{"big.txt", strings.Repeat("x", 2048)})

	_, err := archive.ReadZip(data, archive.Limits{MaxEntryBytes: 1024})
	assert.ErrorIs(t, err, domain.ErrArchiveTooLarge)
}

func TestReadZip_EmptyArchive(t *testing.T) {
	docs, err := archive.ReadZip(buildZip(t), archive.Limits{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}
