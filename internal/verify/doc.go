// Package verify proves that archived copies match their sources, either by
// replaying a run record's source to destination mapping or, when no record
// survives, by reconstructing the mapping from the organizing rules and
// optionally falling back to a content search of the destination tree.
package verify
