package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/fetchfilter"
)

// Ensure LoggingDownloader implements fetchfilter.Downloader.
var _ fetchfilter.Downloader = (*LoggingDownloader)(nil)

// LoggingDownloader wraps a Downloader with debug logging.
type LoggingDownloader struct {
	next   fetchfilter.Downloader
	logger *slog.Logger
}

// NewLoggingDownloader creates a new LoggingDownloader.
func NewLoggingDownloader(next fetchfilter.Downloader, logger *slog.Logger) *LoggingDownloader {
	return &LoggingDownloader{next: next, logger: logger}
}

// Download delegates to the wrapped downloader and logs the transfer.
func (d *LoggingDownloader) Download(
	ctx context.Context,
	url, dir string,
	token *fetchfilter.CancelToken,
	progress fetchfilter.ProgressFunc,
) (file *fetchfilter.DownloadedFile, err error) {
	defer func(begin time.Time) {
		var path string
		var size int64
		if file != nil {
			path, size = file.Path, file.Size
		}
		d.logger.Info("download",
			"url", url,
			"path", path,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Download(ctx, url, dir, token, progress)
}
