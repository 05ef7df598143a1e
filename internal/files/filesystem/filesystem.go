package filesystem

import (
	"errors"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
// This provides compatibility with the fs.FS ecosystem while maintaining
// a stable local type for our abstraction layer.
type FileInfo = fs.FileInfo

// SkipDir, when returned from a Walk callback for a directory, causes that
// directory's subtree to be skipped. Returned for a regular file it skips
// the rest of the containing directory. It is fs.SkipDir, so callbacks may
// use either value.
var SkipDir = fs.SkipDir

// ErrReadOnly is returned by write operations on providers that cannot
// accept writes, such as EmbedFileSystem.
var ErrReadOnly = errors.New("filesystem is read-only")

// File represents an individual file with its metadata and content accessor
type File interface {
	// Path returns the absolute path to the file
	Path() string

	// RelativePath returns the path relative to the opened root
	RelativePath() string

	// Info returns file metadata
	Info() FileInfo

	// ReadContent returns the file's content
	ReadContent() ([]byte, error)
}

// Directory represents a directory that can be traversed to discover files
type Directory interface {
	// Path returns the absolute path to the directory
	Path() string

	// Walk traverses the directory tree in lexicographic order, calling fn
	// for each file and directory including the opened root itself.
	// Returning SkipDir from fn prunes the current subtree; any other
	// returned error stops the walk.
	Walk(fn func(File, error) error) error
}

// FileSystemProvider is a factory for creating Directory instances plus
// flat read and write access by path.
type FileSystemProvider interface {
	// Open opens a directory at the specified path
	Open(path string) (Directory, error)

	// ReadFile reads a specific file at the given path
	ReadFile(path string) ([]byte, error)

	// ReadDir reads the directory entries at the given path.
	// This is a convenience method that returns a flat list of entries
	// without requiring Walk() for simple directory listing.
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns file information for the given path. A missing path
	// yields an error satisfying errors.Is(err, fs.ErrNotExist).
	Stat(path string) (FileInfo, error)

	// WriteFile writes data to the file at the given path, creating it if
	// necessary. Read-only providers return ErrReadOnly.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// MkdirAll creates the directory at the given path along with any
	// missing parents. Read-only providers return ErrReadOnly.
	MkdirAll(path string, perm fs.FileMode) error
}
