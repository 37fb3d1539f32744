package fs

import (
	"os"

	"go.uber.org/fx"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// FS wraps the filesystem operations used by sqlfriend.
type FS interface {
	MkdirAll(path string) error
	MkdirTemp(dir, pattern string) (string, error)
	WriteFile(name string, data string) error
	RemoveAll(path string) error
}

type fsImpl struct{}

// New creates a new FS.
func New() FS {
	return fsImpl{}
}

// MkdirAll creates a directory and all its parents.
func (fsImpl) MkdirAll(path string) error { return os.MkdirAll(path, os.ModePerm) }

// MkdirTemp creates a new uniquely named directory. An empty dir selects the default temp directory.
func (fsImpl) MkdirTemp(dir, pattern string) (string, error) { return os.MkdirTemp(dir, pattern) }

func (fsImpl) WriteFile(name string, data string) error {
	return os.WriteFile(name, []byte(data), 0600)
}

func (fsImpl) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
