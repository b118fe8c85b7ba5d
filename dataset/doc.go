// Package dataset models the blocks of a distributed mesh: leaf datasets,
// multi-block and AMR composites, the per-leaf walker used by ghost layer
// routines, the mesh type classifier and the ghost layer side-channel
// metadata.
package dataset
