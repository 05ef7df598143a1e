package convert

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/stemma-io/stemma/internal/checksum"
	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/internal/files/filesystem"
	"github.com/stemma-io/stemma/internal/graph"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/internal/sidecar"
	"github.com/stemma-io/stemma/pkg/stemma"
)

// ConversionTargets are the ruleset names a dataset can be converted to.
var ConversionTargets = []string{"forbidden", "no-overwrite"}

// preservedEntries are the reserved root entries copied into the output
// unmodified when present. The dataset description is rewritten instead.
var preservedEntries = []string{
	"code",
	"participants.json",
	"participants.tsv",
	"phenotype",
	"samples.json",
	"samples.tsv",
	"sourcedata",
}

// Exporter converts a dataset into a target ruleset's layout.
// Not safe for concurrent Export calls on the same instance.
type Exporter struct {
	fsProvider     filesystem.FileSystemProvider
	calculator     checksum.Calculator
	logger         stemma.Logger
	tool           stemma.GeneratedBy
	candidateLimit int
}

// NewExporter creates an Exporter writing through the OS filesystem. The
// tool record is appended to the output's dataset description; a zero RunID
// is replaced with a fresh one per export.
func NewExporter(logger stemma.Logger, tool stemma.GeneratedBy) *Exporter {
	return NewExporterWithFS(logger, tool, filesystem.NewOSFileSystem())
}

// NewExporterWithFS creates an Exporter writing through a custom filesystem
// provider. Panics if logger or fsProvider is nil.
func NewExporterWithFS(logger stemma.Logger, tool stemma.GeneratedBy, fsProvider filesystem.FileSystemProvider) *Exporter {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}

	return &Exporter{
		fsProvider:     fsProvider,
		calculator:     checksum.New(),
		logger:         logger,
		tool:           tool,
		candidateLimit: DefaultCandidateLimit,
	}
}

// Export writes the dataset to outPath under the target ruleset. The source
// is never modified. Returns ErrUsage for targets that are not convertible
// and ErrOutputExists when outPath is already occupied.
func (e *Exporter) Export(ds *dataset.Dataset, resolved *graph.ResolvedGraph, contents *sidecar.Contents, target rules.Ruleset, outPath string) error {
	if !convertible(target.Name) {
		return fmt.Errorf("ruleset %s is not a conversion target (supported: %s): %w",
			target.Name, strings.Join(ConversionTargets, ", "), stemma.ErrUsage)
	}

	out, err := dataset.CreateWithFS(outPath, e.fsProvider)
	if err != nil {
		return err
	}
	e.logger.Info("converting %s to ruleset %s", ds.Root(), target.Name)

	if err := e.copyPreserved(ds, out); err != nil {
		return err
	}
	if err := e.rewriteDescription(ds, out); err != nil {
		return err
	}
	if err := e.copyDataFiles(ds, out, resolved); err != nil {
		return err
	}

	switch target.Name {
	case "forbidden":
		return e.exportSidecars(out, resolved, contents)
	case "no-overwrite":
		return e.exportRedistributed(out, resolved, contents)
	default:
		panic(fmt.Sprintf("convert: unhandled conversion target %q", target.Name))
	}
}

func convertible(name string) bool {
	for _, target := range ConversionTargets {
		if name == target {
			return true
		}
	}
	return false
}

func (e *Exporter) copyPreserved(ds, out *dataset.Dataset) error {
	for _, name := range preservedEntries {
		if !ds.Exists(name) {
			continue
		}
		e.logger.Verbose("copying %s", name)
		if err := ds.CopyEntryTo(out, name); err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}
	}
	return nil
}

func (e *Exporter) rewriteDescription(ds, out *dataset.Dataset) error {
	desc, err := ds.ReadDescription()
	if err != nil {
		return err
	}

	record := e.tool
	if record.RunID == uuid.Nil {
		record.RunID = uuid.New()
	}
	if err := desc.AppendProvenance(record, ds.Root()); err != nil {
		return err
	}
	e.logger.Verbose("appended provenance record %s", record.RunID)

	return out.WriteDescription(desc)
}

func (e *Exporter) copyDataFiles(ds, out *dataset.Dataset, resolved *graph.ResolvedGraph) error {
	for _, data := range resolved.DataFiles() {
		content, err := ds.ReadFile(data.Rel())
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", data.Rel(), err)
		}
		if err := out.WriteFile(data.Rel(), content); err != nil {
			return err
		}
	}
	e.logger.Info("copied %d data files", len(resolved.DataFiles()))
	return nil
}

// exportSidecars writes each data file's resolved content as sidecars next
// to it, one per extension.
func (e *Exporter) exportSidecars(out *dataset.Dataset, resolved *graph.ResolvedGraph, contents *sidecar.Contents) error {
	exts := resolved.Registry().Extensions()
	written := 0
	for _, data := range resolved.DataFiles() {
		byExt := contents.ForFile(data.Rel())
		for _, ext := range exts {
			content, ok := byExt[ext]
			if !ok {
				continue
			}
			rendered, err := content.Format()
			if err != nil {
				return err
			}
			rel := path.Join(data.Dir(), data.Stem()+ext)
			if err := out.WriteFile(rel, rendered); err != nil {
				return err
			}
			written++
		}
	}
	e.logger.Info("wrote %d sidecar metadata files", written)
	return nil
}

func (e *Exporter) exportRedistributed(out *dataset.Dataset, resolved *graph.ResolvedGraph, contents *sidecar.Contents) error {
	placements, err := e.redistribute(resolved, contents)
	if err != nil {
		return err
	}
	for _, p := range placements {
		if err := out.WriteFile(p.rel, p.content); err != nil {
			return err
		}
	}
	e.logger.Info("wrote %d redistributed metadata files", len(placements))
	return nil
}
