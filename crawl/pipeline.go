// Package crawl drives a filtered download run. It extracts links from an
// index page, filters them, downloads each match and verifies it against
// the checksum store.
package crawl

import (
	"context"
	"net/url"

	"github.com/fwojciec/fetchfilter"
)

// Pipeline processes one index page end to end. Files are handled strictly
// one at a time.
type Pipeline struct {
	Extractor  fetchfilter.LinkExtractor
	Filter     fetchfilter.LinkFilter
	Downloader fetchfilter.Downloader

	// Hasher enables verification. When nil no digests are computed and
	// Checksums is never touched.
	Hasher    fetchfilter.Hasher
	Checksums fetchfilter.ChecksumStore

	// Optional politeness and de-duplication hooks.
	Limiter    fetchfilter.DomainLimiter
	Robots     fetchfilter.URLPolicy
	Duplicates fetchfilter.DuplicateSet

	Dir string

	// KeepGoing turns per-file download and hashing failures into events
	// instead of aborting the run.
	KeepGoing bool

	Progress fetchfilter.ProgressFunc
	Events   EventFunc
}

// Result holds the outcome of a run.
type Result struct {
	Matched    int
	Downloaded int
	Verified   int
	Recorded   int
	Mismatched int
	Skipped    int
	Failed     int
	Bytes      int64
	Files      []fetchfilter.DownloadedFile
}

// Event reports progress during a run.
type Event struct {
	Type EventType
	// Index is the 1-based position of URL among the filtered links.
	Index int
	Total int
	URL   string
	File  *fetchfilter.DownloadedFile
	// Digest is the freshly computed digest, Expected the stored one.
	Digest   string
	Expected string
	Reason   string
	Error    error
}

// EventType indicates the type of event.
type EventType int

const (
	EventStarted EventType = iota
	EventFiltered
	EventDownloading
	EventDownloaded
	EventVerified
	EventRecorded
	EventMismatch
	EventSkipped
	EventWarning
	EventFailed
	EventFinished
)

// EventFunc is a callback for run events.
type EventFunc func(event Event)

// Run extracts links from sourceURL, filters them and processes every match.
// It returns ECANCELED as soon as token is canceled; files not yet started
// are abandoned.
func (p *Pipeline) Run(ctx context.Context, sourceURL string, token *fetchfilter.CancelToken) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-token.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	p.emit(Event{Type: EventStarted, URL: sourceURL})

	if p.Hasher != nil && p.Checksums != nil {
		if err := p.Checksums.Load(ctx); err != nil {
			if fetchfilter.ErrorCode(err) != fetchfilter.EPERSIST {
				return nil, err
			}
			p.emit(Event{Type: EventWarning, Reason: "checksum store unreadable, starting empty", Error: err})
		}
	}

	links, err := p.Extractor.ExtractLinks(ctx, sourceURL)
	if err != nil {
		if token.Canceled() {
			return nil, canceled(err)
		}
		return nil, err
	}

	urls := p.Filter.Apply(sourceURL, links)
	result := &Result{Matched: len(urls)}
	p.emit(Event{Type: EventFiltered, Total: len(urls)})

	var firstErr error
	for i, u := range urls {
		if token.Canceled() {
			return result, fetchfilter.Errorf(fetchfilter.ECANCELED, "run canceled with %d of %d files remaining", len(urls)-i, len(urls))
		}

		ev := Event{Index: i + 1, Total: len(urls), URL: u}
		if reason, skip, err := p.skip(ctx, u); err != nil {
			return result, canceled(err)
		} else if skip {
			result.Skipped++
			ev.Type, ev.Reason = EventSkipped, reason
			p.emit(ev)
			continue
		}

		err := p.process(ctx, u, token, ev, result)
		if err == nil {
			continue
		}
		if !p.KeepGoing || !recoverable(err) {
			return result, err
		}
		result.Failed++
		if firstErr == nil {
			firstErr = err
		}
		ev.Type, ev.Error = EventFailed, err
		p.emit(ev)
	}

	p.emit(Event{Type: EventFinished, Total: len(urls)})

	if result.Failed > 0 {
		return result, fetchfilter.Wrapf(firstErr, fetchfilter.ErrorCode(firstErr), "%d of %d files failed", result.Failed, len(urls))
	}
	return result, nil
}

// skip applies the optional duplicate, robots and rate limit hooks.
// The returned error is only ever a context error.
func (p *Pipeline) skip(ctx context.Context, u string) (string, bool, error) {
	if p.Duplicates != nil && p.Duplicates.SeenBefore(u) {
		return "duplicate", true, nil
	}
	if p.Robots != nil {
		ok, err := p.Robots.Allowed(ctx, u)
		if err != nil {
			p.emit(Event{Type: EventWarning, URL: u, Reason: "robots check failed, allowing", Error: err})
		} else if !ok {
			return "disallowed by robots.txt", true, nil
		}
	}
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx, hostOf(u)); err != nil {
			return "", false, err
		}
	}
	return "", false, nil
}

func (p *Pipeline) process(ctx context.Context, u string, token *fetchfilter.CancelToken, ev Event, result *Result) error {
	ev.Type = EventDownloading
	p.emit(ev)

	file, err := p.Downloader.Download(ctx, u, p.Dir, token, p.Progress)
	if err != nil {
		if token.Canceled() {
			return canceled(err)
		}
		return err
	}
	result.Downloaded++
	result.Bytes += file.Size
	result.Files = append(result.Files, *file)
	ev.Type, ev.File = EventDownloaded, file
	p.emit(ev)

	if p.Hasher == nil {
		return nil
	}

	digest, err := p.Hasher.Sum(ctx, file.Path, p.Progress)
	if err != nil {
		if token.Canceled() {
			return canceled(err)
		}
		return err
	}
	result.Verified++
	ev.Type, ev.Digest = EventVerified, digest
	p.emit(ev)

	if p.Checksums == nil {
		return nil
	}

	prior, ok := p.Checksums.Lookup(file.Name)
	if ok && prior != digest && fetchfilter.DigestAlgorithm(prior) == p.Hasher.Algorithm() {
		result.Mismatched++
		ev.Type, ev.Expected = EventMismatch, prior
		p.emit(ev)
		return nil
	}
	if ok && prior == digest {
		return nil
	}

	if err := p.Checksums.Record(ctx, file.Name, digest); err != nil {
		ev.Type, ev.Reason, ev.Error = EventWarning, "checksum not persisted", err
		p.emit(ev)
		return nil
	}
	result.Recorded++
	ev.Type = EventRecorded
	p.emit(ev)
	return nil
}

func (p *Pipeline) emit(e Event) {
	if p.Events != nil {
		p.Events(e)
	}
}

// recoverable reports whether a per-file error may be skipped under
// KeepGoing.
func recoverable(err error) bool {
	switch fetchfilter.ErrorCode(err) {
	case fetchfilter.EFETCH, fetchfilter.EIO, fetchfilter.EINVALID:
		return true
	}
	return false
}

func canceled(err error) error {
	if fetchfilter.ErrorCode(err) == fetchfilter.ECANCELED {
		return err
	}
	return fetchfilter.Wrapf(err, fetchfilter.ECANCELED, "run canceled")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
