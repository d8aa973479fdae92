// Package archive expands uploaded ZIP bundles into source documents.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"mrstrict/internal/domain"
)

// Limits bounds what ReadZip will expand. Zero values disable a limit.
type Limits struct {
	MaxEntries    int
	MaxEntryBytes int64
}

// ReadZip returns every supported document in the archive. Directories,
// metadata entries (__MACOSX, dot files) and unsupported extensions are
// skipped. Documents are named by their base name unless another document
// shares it, in which case every such document keeps its full path. Paths
// that still repeat get a " (2)", " (3)" suffix before the extension.
func ReadZip(data []byte, limits Limits) ([]domain.SourceDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArchive, err)
	}

	var (
		docs  []domain.SourceDocument
		paths []string
	)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || isMetadata(f.Name) {
			continue
		}
		ft, ok := domain.FileTypeFromName(f.Name)
		if !ok {
			continue
		}
		if limits.MaxEntries > 0 && len(docs) >= limits.MaxEntries {
			return nil, fmt.Errorf("%w: more than %d documents", domain.ErrArchiveTooLarge, limits.MaxEntries)
		}

		body, err := readEntry(f, limits.MaxEntryBytes)
		if err != nil {
			return nil, err
		}

		docs = append(docs, domain.SourceDocument{FileType: ft, Data: body})
		paths = append(paths, strings.TrimPrefix(path.Clean(strings.ReplaceAll(f.Name, "\\", "/")), "/"))
	}

	for i, name := range uniqueNames(paths) {
		docs[i].Name = name
	}
	return docs, nil
}

// uniqueNames maps archive paths to distinct document names.
func uniqueNames(paths []string) []string {
	bases := make(map[string]int, len(paths))
	for _, p := range paths {
		bases[path.Base(p)]++
	}

	names := make([]string, len(paths))
	taken := make(map[string]bool, len(paths))
	for _, p := range paths {
		if bases[path.Base(p)] == 1 {
			taken[path.Base(p)] = true
		}
	}
	for i, p := range paths {
		name := path.Base(p)
		if bases[name] > 1 {
			name = p
			ext := path.Ext(p)
			for n := 2; taken[name]; n++ {
				name = fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(p, ext), n, ext)
			}
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func readEntry(f *zip.File, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 && f.UncompressedSize64 > uint64(maxBytes) {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrArchiveTooLarge, f.Name, maxBytes)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrInvalidArchive, f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	var r io.Reader = rc
	if maxBytes > 0 {
		// The header size can lie; cap what is actually inflated.
		r = io.LimitReader(rc, maxBytes+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidArchive, f.Name, err)
	}
	if maxBytes > 0 && int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrArchiveTooLarge, f.Name, maxBytes)
	}
	return body, nil
}

func isMetadata(name string) bool {
	name = strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(name, "__MACOSX/") {
		return true
	}
	return strings.HasPrefix(path.Base(name), ".")
}
