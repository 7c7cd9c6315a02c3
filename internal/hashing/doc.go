// Package hashing computes streamed content digests for integrity
// verification.
//
// Every comparison in the verification and cleanup pipeline bottoms out here:
// SHA-256 digests computed in bounded-size chunks so memory stays constant for
// multi-gigabyte video files, plus a quick size-based comparison that is
// explicitly tagged as non-proof. Read failures surface as errors rather than
// silent mismatches so a permissions problem can never masquerade as a missing
// duplicate.
package hashing
