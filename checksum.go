package fetchfilter

import (
	"context"
	"strings"
)

// Algorithm names a digest algorithm.
type Algorithm string

// Supported digest algorithms.
const (
	// AlgorithmMD5 is the legacy default. Its digests carry no tag so they
	// stay comparable with stores written by earlier tools. MD5 is
	// cryptographically broken and only detects accidental corruption.
	AlgorithmMD5 Algorithm = "md5"

	// AlgorithmXXH64 is a fast non-cryptographic 64-bit hash. Its digests
	// are written as "xxh64:<hex>".
	AlgorithmXXH64 Algorithm = "xxh64"
)

// DigestAlgorithm returns the algorithm that produced digest, judged by its
// tag. Untagged digests are MD5.
func DigestAlgorithm(digest string) Algorithm {
	if tag, _, ok := strings.Cut(digest, ":"); ok {
		return Algorithm(tag)
	}
	return AlgorithmMD5
}

// Hasher computes content digests of local files.
type Hasher interface {
	// Sum streams the file at path and returns its digest.
	// Returns EIO if the file cannot be read to completion.
	Sum(ctx context.Context, path string, progress ProgressFunc) (string, error)

	// Algorithm reports the algorithm Sum uses.
	Algorithm() Algorithm
}

// ChecksumStore is the persisted filename to digest mapping.
type ChecksumStore interface {
	// Load reads the persisted mapping. A missing store is empty, not an
	// error. An unreadable store leaves the mapping empty and returns
	// EPERSIST.
	Load(ctx context.Context) error

	// Lookup returns the recorded digest for a file name.
	Lookup(filename string) (digest string, ok bool)

	// Record inserts or overwrites an entry and persists the whole mapping.
	// The in-memory mapping is updated even when persisting fails with
	// EPERSIST.
	Record(ctx context.Context, filename, digest string) error
}
