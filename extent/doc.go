// Package extent provides index space boxes for structured grids and the
// clamp / intersect primitives used to plan ghost layer exchanges.
package extent
