package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stemma-io/stemma/internal/files/filesystem"
	"github.com/stemma-io/stemma/pkg/stemma"
)

// DescriptionFilename is the reserved name of the dataset description file
// at the dataset root.
const DescriptionFilename = "dataset_description.json"

// defaultExclusions are the reserved root-level names skipped during file
// discovery. The description file is handled separately; the rest are
// tooling or manifest entries that never participate in metadata
// association.
var defaultExclusions = []string{
	"code",
	DescriptionFilename,
	"derivatives",
	"participants.json",
	"participants.tsv",
	"phenotype",
	"samples.json",
	"samples.tsv",
	"sourcedata",
	"README.md",
	"README.rst",
	"README.txt",
}

// DefaultExclusions returns the reserved root-level names skipped during
// file discovery.
func DefaultExclusions() []string {
	out := make([]string, len(defaultExclusions))
	copy(out, defaultExclusions)
	return out
}

// Dataset is a read/write handle on one dataset tree.
type Dataset struct {
	root       string
	fsProvider filesystem.FileSystemProvider
	exclusions map[string]struct{}
}

// Open opens an existing dataset rooted at root on the OS filesystem.
// Extra reserved names may be passed to extend the default root-level
// exclusions. Returns ErrDatasetNotFound if root does not exist or is not
// a directory.
func Open(root string, extraExclusions ...string) (*Dataset, error) {
	return OpenWithFS(root, filesystem.NewOSFileSystem(), extraExclusions...)
}

// OpenWithFS opens an existing dataset through a custom filesystem
// provider. This is primarily useful for testing with in-memory
// filesystems; the provider should be rooted so that root resolves inside
// it. Panics if fsProvider is nil.
func OpenWithFS(root string, fsProvider filesystem.FileSystemProvider, extraExclusions ...string) (*Dataset, error) {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}

	info, err := fsProvider.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("dataset directory %s: %w", root, stemma.ErrDatasetNotFound)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset path %s is not a directory: %w", root, stemma.ErrDatasetNotFound)
	}

	return newDataset(root, fsProvider, extraExclusions), nil
}

// Create creates a new dataset directory at root on the OS filesystem,
// for use as a conversion target. Returns ErrOutputExists if root already
// exists.
func Create(root string) (*Dataset, error) {
	return CreateWithFS(root, filesystem.NewOSFileSystem())
}

// CreateWithFS creates a new dataset directory through a custom filesystem
// provider. Panics if fsProvider is nil.
func CreateWithFS(root string, fsProvider filesystem.FileSystemProvider) (*Dataset, error) {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}

	if _, err := fsProvider.Stat(root); err == nil {
		return nil, fmt.Errorf("output path %s already exists: %w", root, stemma.ErrOutputExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to check output path %s: %w", root, err)
	}

	if err := fsProvider.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output path %s: %w", root, err)
	}

	return newDataset(root, fsProvider, nil), nil
}

func newDataset(root string, fsProvider filesystem.FileSystemProvider, extra []string) *Dataset {
	exclusions := make(map[string]struct{}, len(defaultExclusions)+len(extra))
	for _, name := range defaultExclusions {
		exclusions[name] = struct{}{}
	}
	for _, name := range extra {
		exclusions[name] = struct{}{}
	}

	return &Dataset{
		root:       root,
		fsProvider: fsProvider,
		exclusions: exclusions,
	}
}

// Root returns the dataset root as given to Open or Create.
func (d *Dataset) Root() string {
	return d.root
}

// Files returns every file in the dataset as sorted slash-separated paths
// relative to the root, applying the root-level exclusions. Excluded
// directories are not descended; the same names below the root are not
// filtered.
func (d *Dataset) Files() ([]string, error) {
	var files []string
	err := d.walk(func(rel string, isDir bool) error {
		if !isDir {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// walk traverses the tree under the root, applying root-level exclusions,
// and reports each entry to fn as a slash-separated relative path.
func (d *Dataset) walk(fn func(rel string, isDir bool) error) error {
	dir, err := d.fsProvider.Open(d.root)
	if err != nil {
		return fmt.Errorf("failed to open dataset %s: %w", d.root, err)
	}

	return dir.Walk(func(file filesystem.File, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error walking dataset: %w", walkErr)
		}

		rel := filepath.ToSlash(file.RelativePath())
		if rel == "." {
			return fn(rel, true)
		}

		// Exclusions apply to root-level names only
		_, excluded := d.exclusions[rel]

		if file.Info().IsDir() {
			if excluded {
				return filesystem.SkipDir
			}
			return fn(rel, true)
		}

		if excluded {
			return nil
		}
		return fn(rel, false)
	})
}

// ReadFile reads the file at the slash-separated path relative to the
// dataset root.
func (d *Dataset) ReadFile(rel string) ([]byte, error) {
	return d.fsProvider.ReadFile(d.abs(rel))
}

// WriteFile writes the file at the slash-separated path relative to the
// dataset root, creating parent directories as needed.
func (d *Dataset) WriteFile(rel string, data []byte) error {
	if parent := path.Dir(rel); parent != "." {
		if err := d.fsProvider.MkdirAll(d.abs(parent), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
	}
	return d.fsProvider.WriteFile(d.abs(rel), data, 0644)
}

// MkdirAll creates the directory at the slash-separated path relative to
// the dataset root, along with any missing parents.
func (d *Dataset) MkdirAll(rel string) error {
	return d.fsProvider.MkdirAll(d.abs(rel), 0755)
}

// Exists reports whether an entry exists at the slash-separated path
// relative to the dataset root.
func (d *Dataset) Exists(rel string) bool {
	_, err := d.fsProvider.Stat(d.abs(rel))
	return err == nil
}

// CopyEntryTo copies the file or directory subtree at rel into the same
// relative location inside dst. Conversion uses this for the preserved
// root entries that bypass metadata handling.
func (d *Dataset) CopyEntryTo(dst *Dataset, rel string) error {
	dir, err := d.fsProvider.Open(d.root)
	if err != nil {
		return fmt.Errorf("failed to open dataset %s: %w", d.root, err)
	}

	copied := false
	err = dir.Walk(func(file filesystem.File, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error walking dataset: %w", walkErr)
		}

		entryRel := filepath.ToSlash(file.RelativePath())
		if entryRel != rel && !strings.HasPrefix(entryRel, rel+"/") {
			return nil
		}
		copied = true

		if file.Info().IsDir() {
			return dst.MkdirAll(entryRel)
		}

		content, err := file.ReadContent()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", entryRel, err)
		}
		return dst.WriteFile(entryRel, content)
	})
	if err != nil {
		return err
	}

	if !copied {
		return fmt.Errorf("entry %s: %w", rel, fs.ErrNotExist)
	}
	return nil
}

// abs joins a slash-separated dataset-relative path onto the root using
// the provider's path conventions.
func (d *Dataset) abs(rel string) string {
	return filepath.Join(d.root, filepath.FromSlash(rel))
}
