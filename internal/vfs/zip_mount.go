package vfs

import (
	"archive/zip"
	"io"
	"strings"
)

type zipEntryInfo struct {
	originalName       string
	uncompressedSize   int64
	file               *zip.File
}

// ZipMount serves files out of an archive, indexed once at construction
// time by normalised key, exactly like the original's ZipMount which
// walks the archive directory once via minizip and caches name/size pairs.
// Grounded on original_source/src/vfs/zip_mount.cpp; Go's standard library
// archive/zip replaces minizip since no third-party zip reader appears
// anywhere in the retrieval pack and archive/zip is the ecosystem-standard
// choice for this.
type ZipMount struct {
	reader  *zip.ReadCloser
	entries map[string]zipEntryInfo
}

// OpenZipMount opens and indexes an archive at path.
func OpenZipMount(path string) (*ZipMount, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	m := &ZipMount{reader: r, entries: make(map[string]zipEntryInfo)}
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") {
			continue // directory entry
		}
		key := normalizeKey(f.Name)
		m.entries[key] = zipEntryInfo{
			originalName:     f.Name,
			uncompressedSize: int64(f.UncompressedSize64),
			file:             f,
		}
	}
	return m, nil
}

// Close releases the underlying archive handle.
func (m *ZipMount) Close() error {
	return m.reader.Close()
}

func normalizeKey(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.ToLower(name)
	return strings.TrimPrefix(name, "/")
}

func (m *ZipMount) ReadFile(relPath string) ([]byte, bool) {
	entry, ok := m.entries[normalizeKey(relPath)]
	if !ok {
		return nil, false
	}
	rc, err := entry.file.Open()
	if err != nil {
		return nil, false
	}
	defer rc.Close()

	buf := make([]byte, entry.uncompressedSize)
	n, err := io.ReadFull(rc, buf)
	if err != nil || int64(n) != entry.uncompressedSize {
		return nil, false
	}
	return buf, true
}

func (m *ZipMount) FileExists(relPath string) bool {
	_, ok := m.entries[normalizeKey(relPath)]
	return ok
}

func (m *ZipMount) GetFileInfo(relPath string) (FileInfo, bool) {
	entry, ok := m.entries[normalizeKey(relPath)]
	if !ok {
		return FileInfo{}, false
	}
	return FileInfo{SizeBytes: entry.uncompressedSize, IsFolder: false}, true
}

// FindFiles filters the in-memory index by directory-key prefix and
// filename suffix.
func (m *ZipMount) FindFiles(dir, suffix string) []string {
	prefix := normalizeKey(dir)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var out []string
	for key := range m.entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if suffix != "" && !strings.HasSuffix(key, suffix) {
			continue
		}
		out = append(out, "/"+key)
	}
	return out
}
