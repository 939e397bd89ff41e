package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/fetchfilter"
	"github.com/fwojciec/fetchfilter/crawl"
)

// Run executes the fetch command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	token := fetchfilter.NewCancelToken()
	done := make(chan struct{})
	defer close(done)

	// OS signals cancel the same token as the quit key.
	go func() {
		select {
		case <-deps.Ctx.Done():
			token.Cancel()
		case <-done:
		}
	}()

	if deps.Keys != nil {
		monitor := &crawl.Monitor{Keys: deps.Keys, QuitKey: c.QuitKey, Token: token}
		if !c.Quiet {
			fmt.Fprintf(deps.Stdout, "Press %q to stop the download.\n", c.QuitKey)
		}
		// The monitor may stay blocked on input after the run ends.
		go func() {
			if err := monitor.Run(); err != nil {
				deps.Logger.Warn("quit key monitor stopped", "err", err)
			}
		}()
	}

	deps.Pipeline.Events = c.printEvent(deps)

	// Cancellation is driven by the token alone.
	result, err := deps.Pipeline.Run(context.WithoutCancel(deps.Ctx), c.URL, token)
	if deps.Progress != nil {
		deps.Progress.Finish()
	}
	if result != nil {
		c.printSummary(deps, result)
	}
	if err != nil {
		if fetchfilter.ErrorCode(err) == fetchfilter.ECANCELED {
			fmt.Fprintln(deps.Stderr, "Canceled.")
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", fetchfilter.ErrorMessage(err))
		}
		return err
	}
	return nil
}

func (c *FetchCmd) printEvent(deps *Dependencies) crawl.EventFunc {
	return func(e crawl.Event) {
		if deps.Progress != nil {
			deps.Progress.Finish()
		}
		switch e.Type {
		case crawl.EventFiltered:
			fmt.Fprintf(deps.Stdout, "Found %d matching files\n", e.Total)
		case crawl.EventDownloading:
			if !c.Quiet {
				fmt.Fprintf(deps.Stdout, "[%d/%d] %s\n", e.Index, e.Total, crawl.TruncateURL(e.URL, 60))
			}
		case crawl.EventDownloaded:
			fmt.Fprintf(deps.Stdout, "saved %s (%s)\n", e.File.Path, crawl.FormatBytes(e.File.Size))
		case crawl.EventVerified:
			if !c.Quiet {
				fmt.Fprintf(deps.Stdout, "checksum %s\n", crawl.ShortDigest(e.Digest))
			}
		case crawl.EventMismatch:
			fmt.Fprintf(deps.Stderr, "warning: checksum mismatch for %s: stored %s, computed %s\n", e.File.Name, e.Expected, e.Digest)
		case crawl.EventSkipped:
			fmt.Fprintf(deps.Stdout, "skip %s: %s\n", e.URL, e.Reason)
		case crawl.EventWarning:
			fmt.Fprintf(deps.Stderr, "warning: %s: %s\n", e.Reason, fetchfilter.ErrorMessage(e.Error))
		case crawl.EventFailed:
			fmt.Fprintf(deps.Stderr, "failed %s: %s\n", e.URL, fetchfilter.ErrorMessage(e.Error))
		}
	}
}

func (c *FetchCmd) printSummary(deps *Dependencies, r *crawl.Result) {
	fmt.Fprintf(deps.Stdout, "Downloaded %d of %d files (%s)", r.Downloaded, r.Matched, crawl.FormatBytes(r.Bytes))
	if r.Verified > 0 {
		fmt.Fprintf(deps.Stdout, ", %d verified, %d mismatched", r.Verified, r.Mismatched)
	}
	if r.Skipped > 0 {
		fmt.Fprintf(deps.Stdout, ", %d skipped", r.Skipped)
	}
	if r.Failed > 0 {
		fmt.Fprintf(deps.Stdout, ", %d failed", r.Failed)
	}
	fmt.Fprintln(deps.Stdout)
}
