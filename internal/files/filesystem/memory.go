package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// memoryFile implements File interface for in-memory files
type memoryFile struct {
	absPath string
	relPath string
	content []byte
	info    fs.FileInfo
}

func (f *memoryFile) Path() string         { return f.absPath }
func (f *memoryFile) RelativePath() string { return f.relPath }
func (f *memoryFile) Info() FileInfo       { return f.info }

func (f *memoryFile) ReadContent() ([]byte, error) {
	return f.content, nil
}

// memoryDirectory implements Directory interface for in-memory filesystem
type memoryDirectory struct {
	absPath string
	fs      *MemoryFileSystem
}

func (d *memoryDirectory) Path() string { return d.absPath }

func (d *memoryDirectory) Walk(fn func(File, error) error) error {
	// Get all files and directories under this path
	entries := d.fs.getEntriesUnder(d.absPath)

	// Flat lexicographic order over full paths matches filepath.Walk's
	// depth-first visit order, since a directory sorts before its contents
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].absPath < entries[j].absPath
	})

	// Directory prefixes pruned by SkipDir
	var skipped []string

	for _, entry := range entries {
		prune := false
		for _, s := range skipped {
			if strings.HasPrefix(entry.absPath, s+"/") {
				prune = true
				break
			}
		}
		if prune {
			continue
		}

		// Relative paths are reported against the walked directory, as the
		// OS provider does, not against the filesystem root
		visit := &memoryFile{
			absPath: entry.absPath,
			relPath: d.relativeTo(entry.absPath),
			content: entry.content,
			info:    entry.info,
		}

		// Recover from panics in callback to prevent crashing the entire walk
		var callbackErr error
		func() {
			defer func() {
				if r := recover(); r != nil {
					callbackErr = fmt.Errorf("walk callback panicked at %s: %v", entry.absPath, r)
				}
			}()

			callbackErr = fn(visit, nil)
		}()

		if callbackErr == SkipDir {
			if entry.info.IsDir() {
				skipped = append(skipped, entry.absPath)
			} else {
				// SkipDir on a file skips the rest of its directory,
				// matching filepath.Walk
				skipped = append(skipped, path.Dir(entry.absPath))
			}
			continue
		}

		// If callback returned an error (or panicked), stop walking
		if callbackErr != nil {
			return callbackErr
		}
	}

	return nil
}

// relativeTo reports absPath relative to the walked directory. Entries come
// from getEntriesUnder, so absPath always sits at or below d.absPath.
func (d *memoryDirectory) relativeTo(absPath string) string {
	if absPath == d.absPath {
		return "."
	}
	prefix := d.absPath
	if prefix != "/" {
		prefix += "/"
	}
	return strings.TrimPrefix(absPath, prefix)
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing
type MemoryFileSystem struct {
	files map[string]*memoryFile // map of absolute path -> file
	root  string                 // root directory path
}

// NewMemoryFileSystem creates a new in-memory filesystem.
// The root path is normalized to use forward slashes for virtual filesystem consistency.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	// Normalize root to forward slashes (virtual filesystem convention)
	root = filepath.ToSlash(root)
	root = path.Clean(root)

	mfs := &MemoryFileSystem{
		files: make(map[string]*memoryFile),
		root:  root,
	}

	// Create the root directory entry
	mfs.files[root] = &memoryFile{
		absPath: root,
		relPath: ".",
		content: nil,
		info: &memoryFileInfo{
			name:    path.Base(root),
			size:    0,
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		},
	}

	return mfs
}

// normalize converts a provider path into a cleaned absolute path within
// the virtual filesystem
func (mfs *MemoryFileSystem) normalize(p string) string {
	p = filepath.ToSlash(p)
	var absPath string
	if p == "." || p == "" {
		absPath = mfs.root
	} else if strings.HasPrefix(p, "/") || path.IsAbs(p) {
		absPath = p
	} else {
		absPath = path.Join(mfs.root, p)
	}
	return path.Clean(absPath)
}

// AddFile adds a file to the in-memory filesystem
func (mfs *MemoryFileSystem) AddFile(path string, content string) {
	mfs.AddFileWithTime(path, content, time.Now())
}

// AddFileWithTime adds a file with a specific modification time
func (mfs *MemoryFileSystem) AddFileWithTime(filePath string, content string, modTime time.Time) {
	mfs.put(filePath, []byte(content), 0644, modTime)
}

// put creates or replaces the file entry at filePath and materializes its
// parent directories
func (mfs *MemoryFileSystem) put(filePath string, content []byte, perm fs.FileMode, modTime time.Time) {
	absPath := mfs.normalize(filePath)

	// Calculate relative path from root
	relPath, err := filepath.Rel(mfs.root, absPath)
	if err != nil {
		relPath = filePath
	}
	relPath = filepath.ToSlash(relPath)

	mfs.files[absPath] = &memoryFile{
		absPath: absPath,
		relPath: relPath,
		content: content,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(content)),
			mode:    perm,
			modTime: modTime,
			isDir:   false,
		},
	}

	mfs.ensureDirectoriesExist(absPath)
}

// ensureDirectoriesExist creates directory entries for all parent directories
func (mfs *MemoryFileSystem) ensureDirectoriesExist(filePath string) {
	dir := path.Dir(filePath)
	if dir == "." || dir == "/" || dir == mfs.root {
		return
	}

	// Check if directory entry already exists
	if _, exists := mfs.files[dir]; exists {
		return
	}

	// Create directory entry
	mfs.files[dir] = &memoryFile{
		absPath: dir,
		relPath: strings.TrimPrefix(dir, mfs.root+"/"),
		content: nil,
		info: &memoryFileInfo{
			name:    path.Base(dir),
			size:    0,
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		},
	}

	// Recursively create parent directories
	mfs.ensureDirectoriesExist(dir)
}

// getEntriesUnder returns all files and directories under the given path
func (mfs *MemoryFileSystem) getEntriesUnder(basePath string) []*memoryFile {
	basePath = filepath.ToSlash(basePath)
	var entries []*memoryFile

	for path, file := range mfs.files {
		// Special handling for root directory to avoid double slashes
		var matched bool
		if basePath == "/" {
			// For root, include all paths starting with "/"
			matched = strings.HasPrefix(path, "/")
		} else {
			// For subdirectories, check exact match or prefix with trailing slash
			matched = path == basePath || strings.HasPrefix(path, basePath+"/")
		}

		if matched {
			entries = append(entries, file)
		}
	}

	return entries
}

// Open implements FileSystemProvider.Open
func (mfs *MemoryFileSystem) Open(openPath string) (Directory, error) {
	absPath := mfs.normalize(openPath)

	// Check if path exists as a directory
	file, exists := mfs.files[absPath]
	if exists {
		if !file.info.IsDir() {
			return nil, fmt.Errorf("path is not a directory: %s", openPath)
		}
		// Directory exists, return it
		return &memoryDirectory{
			absPath: absPath,
			fs:      mfs,
		}, nil
	}

	// Even if directory doesn't have an explicit entry, allow it if there are files under it
	hasEntries := false
	for filePath := range mfs.files {
		if strings.HasPrefix(filePath, absPath+"/") || filePath == absPath {
			hasEntries = true
			break
		}
	}

	if !hasEntries {
		return nil, fmt.Errorf("directory not found: %s: %w", openPath, fs.ErrNotExist)
	}

	return &memoryDirectory{
		absPath: absPath,
		fs:      mfs,
	}, nil
}

// ReadFile implements FileSystemProvider.ReadFile
func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	absPath := mfs.normalize(filePath)

	file, exists := mfs.files[absPath]
	if !exists {
		return nil, fmt.Errorf("file not found: %s: %w", filePath, fs.ErrNotExist)
	}

	if file.info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	return file.content, nil
}

// ReadDir implements FileSystemProvider.ReadDir
func (mfs *MemoryFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	absPath := mfs.normalize(dirPath)

	entry, exists := mfs.files[absPath]
	if !exists {
		return nil, fmt.Errorf("directory not found: %s: %w", dirPath, fs.ErrNotExist)
	}
	if !entry.info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	var result []FileInfo
	for p, file := range mfs.files {
		if p != absPath && path.Dir(p) == absPath {
			result = append(result, file.info)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})

	return result, nil
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	absPath := mfs.normalize(statPath)

	file, exists := mfs.files[absPath]
	if !exists {
		return nil, fmt.Errorf("path not found: %s: %w", statPath, fs.ErrNotExist)
	}

	return file.info, nil
}

// WriteFile implements FileSystemProvider.WriteFile
func (mfs *MemoryFileSystem) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	absPath := mfs.normalize(filePath)

	if existing, exists := mfs.files[absPath]; exists && existing.info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	mfs.put(filePath, data, perm, time.Now())
	return nil
}

// MkdirAll implements FileSystemProvider.MkdirAll
func (mfs *MemoryFileSystem) MkdirAll(dirPath string, perm fs.FileMode) error {
	absPath := mfs.normalize(dirPath)

	if existing, exists := mfs.files[absPath]; exists {
		if !existing.info.IsDir() {
			return fmt.Errorf("path is a file, not a directory: %s", dirPath)
		}
		return nil
	}

	mfs.files[absPath] = &memoryFile{
		absPath: absPath,
		relPath: strings.TrimPrefix(absPath, mfs.root+"/"),
		content: nil,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    0,
			mode:    perm | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		},
	}

	mfs.ensureDirectoriesExist(absPath)
	return nil
}

// Verify MemoryFileSystem implements the interface at compile time
var _ FileSystemProvider = (*MemoryFileSystem)(nil)
