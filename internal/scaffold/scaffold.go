package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/internal/files/filesystem"
	"github.com/stemma-io/stemma/pkg/stemma"
)

//go:embed all:templates
var templatesFS embed.FS

// DefaultSchemaVersion is written into the description of a freshly
// initialized dataset.
const DefaultSchemaVersion = "1.7.0"

// skeletonDirs are the empty directories of the skeleton; embedded
// filesystems cannot carry them.
var skeletonDirs = []string{"code", "sourcedata"}

// Scaffolder initializes new dataset skeletons from the embedded template.
type Scaffolder struct {
	templates  filesystem.FileSystemProvider
	fsProvider filesystem.FileSystemProvider
	logger     stemma.Logger
}

// NewScaffolder creates a Scaffolder writing through the OS filesystem.
func NewScaffolder(logger stemma.Logger) *Scaffolder {
	return NewScaffolderWithFS(logger, filesystem.NewOSFileSystem())
}

// NewScaffolderWithFS creates a Scaffolder writing through a custom
// filesystem provider. Panics if logger or fsProvider is nil.
func NewScaffolderWithFS(logger stemma.Logger, fsProvider filesystem.FileSystemProvider) *Scaffolder {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}

	return &Scaffolder{
		templates:  filesystem.NewEmbedFileSystem(templatesFS, "templates/dataset"),
		fsProvider: fsProvider,
		logger:     logger,
	}
}

// Create writes a dataset skeleton named name at targetPath: the template
// files, a description carrying the schema version, and the skeleton
// directories. The target must be missing or an empty directory.
func (s *Scaffolder) Create(name, schemaVersion, targetPath string) error {
	empty, err := s.isEmptyDirectory(targetPath)
	if err != nil {
		return err
	}
	if !empty {
		return fmt.Errorf("target directory %s is not empty: %w", targetPath, stemma.ErrOutputExists)
	}
	if err := s.fsProvider.MkdirAll(targetPath, 0755); err != nil {
		return fmt.Errorf("failed to create dataset directory %s: %w", targetPath, err)
	}

	ds, err := dataset.OpenWithFS(targetPath, s.fsProvider)
	if err != nil {
		return err
	}

	s.logger.Info("initializing dataset %s at %s", name, targetPath)

	if err := s.copyTemplates(ds, name); err != nil {
		return err
	}
	if err := s.writeDescription(ds, name, schemaVersion); err != nil {
		return err
	}
	for _, dir := range skeletonDirs {
		s.logger.Verbose("creating directory %s", dir)
		if err := ds.MkdirAll(dir); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return nil
}

// isEmptyDirectory reports whether targetPath is missing, or an existing
// directory with no entries.
func (s *Scaffolder) isEmptyDirectory(targetPath string) (bool, error) {
	info, err := s.fsProvider.Stat(targetPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check target directory %s: %w", targetPath, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("target path %s is not a directory: %w", targetPath, stemma.ErrOutputExists)
	}

	entries, err := s.fsProvider.ReadDir(targetPath)
	if err != nil {
		return false, fmt.Errorf("failed to read target directory %s: %w", targetPath, err)
	}
	return len(entries) == 0, nil
}

// copyTemplates writes every embedded template file into the dataset,
// substituting the dataset name.
func (s *Scaffolder) copyTemplates(ds *dataset.Dataset, name string) error {
	dir, err := s.templates.Open(".")
	if err != nil {
		return fmt.Errorf("failed to open templates: %w", err)
	}

	return dir.Walk(func(file filesystem.File, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error walking templates: %w", walkErr)
		}
		if file.Info().IsDir() {
			return nil
		}

		content, err := file.ReadContent()
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", file.RelativePath(), err)
		}
		rendered := strings.ReplaceAll(string(content), "{{DATASET_NAME}}", name)

		s.logger.Verbose("creating file %s", file.RelativePath())
		return ds.WriteFile(file.RelativePath(), []byte(rendered))
	})
}

func (s *Scaffolder) writeDescription(ds *dataset.Dataset, name, schemaVersion string) error {
	desc := dataset.NewDescription()
	if err := desc.Set("Name", name); err != nil {
		return err
	}
	if err := desc.Set("SchemaVersion", schemaVersion); err != nil {
		return err
	}

	s.logger.Verbose("creating file %s", dataset.DescriptionFilename)
	return ds.WriteDescription(desc)
}

// FileTree renders the tree under root, for showing a freshly initialized
// dataset.
func (s *Scaffolder) FileTree(root string) (string, error) {
	dir, err := s.fsProvider.Open(root)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", root, err)
	}

	type treeEntry struct {
		rel   string
		isDir bool
	}
	var entries []treeEntry
	err = dir.Walk(func(file filesystem.File, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error walking %s: %w", root, walkErr)
		}
		rel := filepath.ToSlash(file.RelativePath())
		if rel == "." {
			return nil
		}
		entries = append(entries, treeEntry{rel: rel, isDir: file.Info().IsDir()})
		return nil
	})
	if err != nil {
		return "", err
	}

	// An entry is last in its directory when no later entry shares its
	// parent; ancestors that were last stop drawing continuation lines
	lastInDir := make(map[string]bool, len(entries))
	for i, e := range entries {
		parent := path.Dir(e.rel)
		last := true
		for _, later := range entries[i+1:] {
			if path.Dir(later.rel) == parent {
				last = false
				break
			}
		}
		lastInDir[e.rel] = last
	}

	var b strings.Builder
	b.WriteString(root + "/\n")
	for _, e := range entries {
		segments := strings.Split(e.rel, "/")

		ancestor := ""
		for _, segment := range segments[:len(segments)-1] {
			ancestor = path.Join(ancestor, segment)
			if lastInDir[ancestor] {
				b.WriteString("    ")
			} else {
				b.WriteString("│   ")
			}
		}

		branch := "├── "
		if lastInDir[e.rel] {
			branch = "└── "
		}
		name := segments[len(segments)-1]
		if e.isDir {
			name += "/"
		}
		b.WriteString(branch + name + "\n")
	}

	return b.String(), nil
}
