// Package graph builds and resolves the metadata association graph of a
// dataset.
//
// Build walks the dataset once and collects, for every data file and
// registered extension, the applicable metadata files in inheritance order,
// together with the reverse mapping from each metadata file to the data
// files it applies to. Prune then applies each extension's inheritance
// behaviour, narrowing forbidden and nearest entries to a single file while
// merge entries keep their full list. The per-file queries recompute either
// side of the association for one path from scratch and agree with the
// built-and-pruned graph.
package graph
