package fsx

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by ReadFile when the path has no object
var ErrNotExist = errors.New("fsx: file does not exist")

// FileReader reads whole files by path
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// FileSystem is the document store used for résumés
type FileSystem interface {
	FileReader

	// WriteFileStream stores the content read from r at path, replacing any previous file
	WriteFileStream(ctx context.Context, path string, r io.Reader) error

	// DeleteFile removes path. Deleting a missing path is not an error.
	DeleteFile(ctx context.Context, path string) error

	// Exists reports whether path holds a file
	Exists(ctx context.Context, path string) (bool, error)

	// Join builds a storage path from segments
	Join(elem ...string) string
}
