// Package neighbor holds the descriptor of a structured grid neighbor and
// computes the index ranges exchanged to keep an N deep ghost halo
// consistent.
//
// The computation is synchronous and allocation free. Distinct descriptors
// may be computed from different goroutines as long as each descriptor is
// owned by one goroutine during the call.
package neighbor
