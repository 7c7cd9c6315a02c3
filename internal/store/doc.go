// Package store maintains the SQLite discovery index over run record and
// verification report artifacts. The JSONL artifacts are the source of
// truth; the index only accelerates listing and lookup and can be rebuilt
// from disk at any time with Reindex.
package store
