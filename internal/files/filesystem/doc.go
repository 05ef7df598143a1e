// Package filesystem provides the filesystem abstraction the dataset layer
// is built on.
//
// Three providers implement the same interface:
//   - OSFileSystem: production implementation backed by the OS filesystem
//   - MemoryFileSystem: in-memory implementation for tests
//   - EmbedFileSystem: read-only view over an embed.FS, used for
//     scaffolding templates
//
// Directories walk in lexicographic order so dataset traversal is
// deterministic regardless of provider. Returning SkipDir from a walk
// callback prunes the subtree, mirroring filepath.Walk. Providers that
// cannot accept writes report ErrReadOnly from WriteFile and MkdirAll.
package filesystem
