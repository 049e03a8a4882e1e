// Package vfs implements the overlay virtual filesystem: an ordered list
// of mounts, each contributing a tree of files under a virtual path, with
// first-mounted-wins lookup. Grounded on
// original_source/src/vfs/virtual_file_system.{hpp,cpp}.
package vfs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/osc-sim/simcore/internal/simerr"
)

// FileInfo describes a VFS entry without reading its contents.
type FileInfo struct {
	SizeBytes int64
	IsFolder  bool
}

// Mount is a backend a FileSystem can overlay. DirectoryMount and
// ZipMount are the two concrete implementations.
type Mount interface {
	ReadFile(relPath string) ([]byte, bool)
	FileExists(relPath string) bool
	FindFiles(dir, suffix string) []string
	GetFileInfo(relPath string) (FileInfo, bool)
}

type mountEntry struct {
	point string // normalised mountpoint, e.g. "/" or "/units"
	mount Mount
}

// FileSystem is the ordered overlay. Earlier-mounted entries win on
// conflicts, matching patches-over-base-content semantics.
type FileSystem struct {
	mounts []mountEntry
}

// New returns an empty filesystem with no mounts.
func New() *FileSystem {
	return &FileSystem{}
}

// Mount appends a new mount at the given virtual mountpoint. Mounts added
// earlier take priority over mounts added later.
func (fs *FileSystem) Mount(point string, m Mount) {
	fs.mounts = append(fs.mounts, mountEntry{point: Normalize(point), mount: m})
}

// Clear removes every mount.
func (fs *FileSystem) Clear() {
	fs.mounts = nil
}

// Normalize canonicalises a virtual path: backslash to slash, lowercase,
// collapse "//", "/./" and "/../" (erasing the correct parent segment),
// ensure a leading slash, and strip any trailing slash except for the
// root itself. Idempotent: Normalize(Normalize(p)) == Normalize(p).
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.ToLower(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	segments := strings.Split(p, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}

	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

// stripMountpoint returns (relative path, true) if virtualPath falls under
// mountpoint, matching on an exact-prefix-plus-slash-or-end boundary. The
// root mountpoint "/" matches every path.
func stripMountpoint(mountpoint, virtualPath string) (string, bool) {
	if mountpoint == "/" {
		return virtualPath, true
	}
	if virtualPath == mountpoint {
		return "/", true
	}
	prefix := mountpoint + "/"
	if strings.HasPrefix(virtualPath, prefix) {
		return virtualPath[len(mountpoint):], true
	}
	return "", false
}

// ReadFile returns the first mount (in priority order) that has path.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	vp := Normalize(path)
	for _, me := range fs.mounts {
		rel, ok := stripMountpoint(me.point, vp)
		if !ok {
			continue
		}
		if b, ok := me.mount.ReadFile(rel); ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("read %s: %w", path, simerr.ErrNotFound)
}

// FileExists reports whether any mount has path.
func (fs *FileSystem) FileExists(path string) bool {
	vp := Normalize(path)
	for _, me := range fs.mounts {
		rel, ok := stripMountpoint(me.point, vp)
		if !ok {
			continue
		}
		if me.mount.FileExists(rel) {
			return true
		}
	}
	return false
}

// GetFileInfo returns metadata from the first mount that has path.
func (fs *FileSystem) GetFileInfo(path string) (FileInfo, bool) {
	vp := Normalize(path)
	for _, me := range fs.mounts {
		rel, ok := stripMountpoint(me.point, vp)
		if !ok {
			continue
		}
		if fi, ok := me.mount.GetFileInfo(rel); ok {
			return fi, true
		}
	}
	return FileInfo{}, false
}

// FindFiles merges results from every mount whose mountpoint contains dir,
// deduplicating by full virtual path (first occurrence, i.e. highest
// priority mount, wins) and returning a sorted slice for deterministic
// iteration.
func (fs *FileSystem) FindFiles(dir, pattern string) []string {
	vdir := Normalize(dir)
	seen := make(map[string]struct{})
	var results []string

	suffix := strings.TrimPrefix(pattern, "*")
	suffix = strings.ToLower(suffix)

	for _, me := range fs.mounts {
		rel, ok := stripMountpoint(me.point, vdir)
		if !ok {
			continue
		}
		for _, found := range me.mount.FindFiles(rel, suffix) {
			full := joinMountPath(me.point, found)
			full = Normalize(full)
			if _, dup := seen[full]; dup {
				continue
			}
			seen[full] = struct{}{}
			results = append(results, full)
		}
	}

	sort.Strings(results)
	return results
}

func joinMountPath(mountpoint, relPath string) string {
	if mountpoint == "/" {
		return relPath
	}
	return mountpoint + relPath
}
