package fetchfilter

import "context"

// DownloadedFile is a file fully written to local disk.
type DownloadedFile struct {
	URL  string
	Name string

	// Path is absolute.
	Path string
	Size int64
}

// Progress reports how far a transfer or hash has advanced.
type Progress struct {
	Label   string
	Current int64

	// Total is zero when the size is not known up front.
	Total int64
}

// ProgressFunc consumes progress updates. A nil ProgressFunc is allowed
// wherever one is accepted.
type ProgressFunc func(Progress)

// PartialPolicy decides what happens to a file whose download did not
// complete.
type PartialPolicy string

// Partial file policies.
const (
	// PartialKeep leaves the incomplete bytes under the final file name.
	PartialKeep PartialPolicy = "keep"

	// PartialRemove deletes the incomplete file.
	PartialRemove PartialPolicy = "remove"

	// PartialRename moves the incomplete file to "<name>.partial".
	PartialRename PartialPolicy = "rename"
)

// PartialSuffix is appended to incomplete files under PartialRename.
const PartialSuffix = ".partial"

// Downloader streams remote files to disk.
type Downloader interface {
	// Download writes the resource at url into dir, creating dir if needed.
	// The token is checked before every chunk is written; once it is
	// canceled Download stops and returns ECANCELED.
	// Returns EDIRECTORY, EFETCH or EIO on failure.
	Download(ctx context.Context, url, dir string, token *CancelToken, progress ProgressFunc) (*DownloadedFile, error)
}

// DomainLimiter provides per-host rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the host.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, host string) error
}

// URLPolicy decides whether a URL may be fetched at all.
type URLPolicy interface {
	Allowed(ctx context.Context, url string) (bool, error)
}

// DuplicateSet remembers download URLs across a run.
type DuplicateSet interface {
	// SeenBefore records url and reports whether it was already recorded.
	// False positives are possible; false negatives are not.
	SeenBefore(url string) bool
}
