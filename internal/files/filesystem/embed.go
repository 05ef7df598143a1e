package filesystem

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// embedFile implements File interface for embed.FS
type embedFile struct {
	embedFS *embed.FS
	absPath string // path within embed.FS (always uses forward slashes)
	relPath string // relative path from root
	info    fs.FileInfo
}

func (f *embedFile) Path() string         { return f.absPath }
func (f *embedFile) RelativePath() string { return f.relPath }
func (f *embedFile) Info() FileInfo       { return f.info }

func (f *embedFile) ReadContent() ([]byte, error) {
	return f.embedFS.ReadFile(f.absPath)
}

// embedDirectory implements Directory interface for embed.FS
type embedDirectory struct {
	embedFS *embed.FS
	absPath string // path within embed.FS (always uses forward slashes)
	root    string // root path for calculating relative paths
}

func (d *embedDirectory) Path() string { return d.absPath }

func (d *embedDirectory) Walk(fn func(File, error) error) error {
	return fs.WalkDir(d.embedFS, d.absPath, func(filePath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fn(nil, err)
		}

		info, err := entry.Info()
		if err != nil {
			return fn(nil, fmt.Errorf("failed to get file info for %s: %w", filePath, err))
		}

		relPath := relativeTo(d.root, filePath)

		file := &embedFile{
			embedFS: d.embedFS,
			absPath: filePath,
			relPath: relPath,
			info:    info,
		}

		// SkipDir passes through untouched so fs.WalkDir prunes the subtree
		return fn(file, nil)
	})
}

// relativeTo strips the root prefix from an embed.FS path. Both arguments
// use forward slashes.
func relativeTo(root, filePath string) string {
	if filePath == root {
		return "."
	}
	return strings.TrimPrefix(filePath, root+"/")
}

// EmbedFileSystem implements FileSystemProvider for embed.FS. It is
// read-only: WriteFile and MkdirAll report ErrReadOnly.
type EmbedFileSystem struct {
	embedFS embed.FS
	root    string // root path within the embed.FS (always uses forward slashes)
}

// NewEmbedFileSystem creates a new filesystem provider wrapping an embed.FS.
// The root parameter specifies the subdirectory within the embed.FS to treat as the root.
// All paths are normalized to use forward slashes for consistency with embed.FS.
func NewEmbedFileSystem(embedFS embed.FS, root string) *EmbedFileSystem {
	// Normalize root path to use forward slashes and remove trailing slash
	root = path.Clean(root)
	return &EmbedFileSystem{
		embedFS: embedFS,
		root:    root,
	}
}

// normalize converts a provider path into a cleaned path within the embed.FS
func (efs *EmbedFileSystem) normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")

	var absPath string
	if p == "." || p == "" {
		absPath = efs.root
	} else if strings.HasPrefix(p, "/") || path.IsAbs(p) {
		// If path is absolute, use it as-is (already relative to embed.FS root)
		absPath = p
	} else {
		// Relative path - join with root
		absPath = path.Join(efs.root, p)
	}

	return path.Clean(absPath)
}

// Open implements FileSystemProvider.Open
func (efs *EmbedFileSystem) Open(openPath string) (Directory, error) {
	absPath := efs.normalize(openPath)

	// ReadDir succeeds only for directories
	if _, err := efs.embedFS.ReadDir(absPath); err != nil {
		return nil, fmt.Errorf("failed to open directory %s: %w", openPath, err)
	}

	return &embedDirectory{
		embedFS: &efs.embedFS,
		absPath: absPath,
		root:    efs.root,
	}, nil
}

// ReadFile implements FileSystemProvider.ReadFile
func (efs *EmbedFileSystem) ReadFile(filePath string) ([]byte, error) {
	absPath := efs.normalize(filePath)

	content, err := efs.embedFS.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return content, nil
}

// ReadDir implements FileSystemProvider.ReadDir
func (efs *EmbedFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	absPath := efs.normalize(dirPath)

	entries, err := efs.embedFS.ReadDir(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dirPath, err)
	}

	result := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to get file info for %s: %w", entry.Name(), err)
		}
		result = append(result, info)
	}

	return result, nil
}

// Stat implements FileSystemProvider.Stat
func (efs *EmbedFileSystem) Stat(statPath string) (FileInfo, error) {
	absPath := efs.normalize(statPath)

	// fs.Stat returns fs.FileInfo directly
	info, err := fs.Stat(efs.embedFS, absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %s: %w", statPath, err)
	}

	return info, nil
}

// WriteFile implements FileSystemProvider.WriteFile
func (efs *EmbedFileSystem) WriteFile(string, []byte, fs.FileMode) error {
	return ErrReadOnly
}

// MkdirAll implements FileSystemProvider.MkdirAll
func (efs *EmbedFileSystem) MkdirAll(string, fs.FileMode) error {
	return ErrReadOnly
}

// Verify EmbedFileSystem implements the interface at compile time
var _ FileSystemProvider = (*EmbedFileSystem)(nil)
