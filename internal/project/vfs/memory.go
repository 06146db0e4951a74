package vfs

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemFS is an in-memory VFS for tests. Paths are slash-separated and
// treated as absolute.
type MemFS struct {
	mu    sync.RWMutex
	files map[string][]byte
	mtime map[string]time.Time
}

// NewMemFS creates an empty in-memory filesystem.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string][]byte),
		mtime: make(map[string]time.Time),
	}
}

// AddFile adds or replaces a file. Parent directories are implicit.
func (m *MemFS) AddFile(p, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = path.Clean(p)
	m.files[p] = []byte(content)
	m.mtime[p] = time.Now()
}

// RemoveFile removes a file if present.
func (m *MemFS) RemoveFile(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = path.Clean(p)
	delete(m.files, p)
	delete(m.mtime, p)
}

func (m *MemFS) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path.Clean(p)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (m *MemFS) Stat(p string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p = path.Clean(p)
	if content, ok := m.files[p]; ok {
		return memInfo{name: path.Base(p), size: int64(len(content)), mtime: m.mtime[p]}, nil
	}
	if m.isDirLocked(p) {
		return memInfo{name: path.Base(p), dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
}

func (m *MemFS) Exists(p string) bool {
	_, err := m.Stat(p)
	return err == nil
}

func (m *MemFS) IsDir(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isDirLocked(path.Clean(p))
}

// isDirLocked reports whether any file lives under p.
func (m *MemFS) isDirLocked(p string) bool {
	prefix := p + "/"
	for f := range m.files {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

func (m *MemFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	m.mu.RLock()
	root = path.Clean(root)
	prefix := root + "/"
	var paths []string
	for f := range m.files {
		if f == root || strings.HasPrefix(f, prefix) {
			paths = append(paths, f)
		}
	}
	m.mu.RUnlock()

	sort.Strings(paths)
	for _, p := range paths {
		info, err := m.Stat(p)
		if err != nil {
			continue
		}
		if err := fn(p, fs.FileInfoToDirEntry(info), nil); err != nil {
			if err == fs.SkipDir || err == fs.SkipAll {
				return nil
			}
			return err
		}
	}
	return nil
}

// memInfo implements fs.FileInfo for in-memory entries.
type memInfo struct {
	name  string
	size  int64
	mtime time.Time
	dir   bool
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return modeFor(i.dir) }
func (i memInfo) ModTime() time.Time { return i.mtime }
func (i memInfo) IsDir() bool        { return i.dir }
func (i memInfo) Sys() any           { return nil }

func modeFor(dir bool) fs.FileMode {
	if dir {
		return fs.ModeDir | 0755
	}
	return 0644
}
