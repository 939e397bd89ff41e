// Package digest implements fetchfilter.Hasher for local files.
package digest

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/fetchfilter"
)

// DefaultBlockSize is the read size used while hashing.
const DefaultBlockSize = 1 << 20

// Ensure Hasher implements fetchfilter.Hasher at compile time.
var _ fetchfilter.Hasher = (*Hasher)(nil)

// Hasher streams files through a rolling hash.
type Hasher struct {
	algorithm fetchfilter.Algorithm
	blockSize int
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithBlockSize sets the read size in bytes.
// Defaults to DefaultBlockSize if not specified.
func WithBlockSize(n int) Option {
	return func(h *Hasher) {
		if n > 0 {
			h.blockSize = n
		}
	}
}

// NewHasher creates a Hasher for the given algorithm.
// Returns EINVALID for unknown algorithms.
func NewHasher(algorithm fetchfilter.Algorithm, opts ...Option) (*Hasher, error) {
	switch algorithm {
	case fetchfilter.AlgorithmMD5, fetchfilter.AlgorithmXXH64:
	default:
		return nil, fetchfilter.Errorf(fetchfilter.EINVALID, "unknown digest algorithm %q", algorithm)
	}

	h := &Hasher{
		algorithm: algorithm,
		blockSize: DefaultBlockSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Algorithm reports the algorithm Sum uses.
func (h *Hasher) Algorithm() fetchfilter.Algorithm {
	return h.algorithm
}

// Sum returns the digest of the file at path. MD5 digests are 32 lowercase
// hex characters; xxh64 digests are "xxh64:" followed by 16 hex characters.
// Progress is reported after every block against the size from stat.
func (h *Hasher) Sum(ctx context.Context, path string, progress fetchfilter.ProgressFunc) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fetchfilter.Wrapf(err, fetchfilter.EIO, "failed to open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fetchfilter.Wrapf(err, fetchfilter.EIO, "failed to stat %s", path)
	}
	total := info.Size()
	label := filepath.Base(path)

	sum := h.newHash()
	buf := make([]byte, h.blockSize)
	var done int64
	for {
		if err := ctx.Err(); err != nil {
			return "", fetchfilter.Wrapf(err, fetchfilter.ECANCELED, "hashing %s canceled", path)
		}

		n, rerr := f.Read(buf)
		if n > 0 {
			_, _ = sum.Write(buf[:n])
			done += int64(n)
			if progress != nil {
				progress(fetchfilter.Progress{Label: label, Current: done, Total: total})
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return "", fetchfilter.Wrapf(rerr, fetchfilter.EIO, "failed to read %s", path)
		}
	}

	return h.encode(sum.Sum(nil)), nil
}

func (h *Hasher) newHash() hash.Hash {
	if h.algorithm == fetchfilter.AlgorithmXXH64 {
		return xxhash.New()
	}
	return md5.New()
}

func (h *Hasher) encode(sum []byte) string {
	if h.algorithm == fetchfilter.AlgorithmMD5 {
		return hex.EncodeToString(sum)
	}
	return string(h.algorithm) + ":" + hex.EncodeToString(sum)
}
