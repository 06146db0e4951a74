// Package vfs provides a minimal filesystem abstraction for the project
// store. The OS implementation backs normal operation; MemFS backs tests.
package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// VFS abstracts the filesystem operations the project store needs.
type VFS interface {
	// ReadFile returns the content of the file at path.
	ReadFile(path string) ([]byte, error)

	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)

	// Exists returns true if path exists.
	Exists(path string) bool

	// IsDir returns true if path exists and is a directory.
	IsDir(path string) bool

	// WalkDir walks the tree rooted at root in lexical order.
	// A missing root is not an error; the walk is simply empty.
	WalkDir(root string, fn fs.WalkDirFunc) error
}

// OS is the VFS implementation backed by the real filesystem.
type OS struct{}

// NewOS returns a VFS backed by the operating system.
func NewOS() *OS { return &OS{} }

func (*OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (*OS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (*OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (*OS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (*OS) WalkDir(root string, fn fs.WalkDirFunc) error {
	if _, err := os.Stat(root); err != nil {
		return nil
	}
	return filepath.WalkDir(root, fn)
}
