// Package cleanup deletes source files after a verification report has
// proven their archived copies. Deletion is gated per file at the moment it
// happens: eligible status, proof-grade algorithm, source present, verified
// destination present. Dry-run is the default mode.
package cleanup
