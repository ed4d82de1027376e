package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webcrawl"
)

// Ensure LoggingDownloader implements webcrawl.Downloader.
var _ webcrawl.Downloader = (*LoggingDownloader)(nil)

// LoggingDownloader wraps a Downloader with logging. Documents it returns
// log their link extraction as well.
type LoggingDownloader struct {
	next   webcrawl.Downloader
	logger *slog.Logger
}

// NewLoggingDownloader creates a new LoggingDownloader.
func NewLoggingDownloader(next webcrawl.Downloader, logger *slog.Logger) *LoggingDownloader {
	return &LoggingDownloader{next: next, logger: logger}
}

// Download delegates to the wrapped downloader and logs the operation.
func (d *LoggingDownloader) Download(ctx context.Context, url string) (doc webcrawl.Document, err error) {
	defer func(begin time.Time) {
		d.logger.Info("download",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	doc, err = d.next.Download(ctx, url)
	if err != nil || doc == nil {
		return doc, err
	}
	return &loggingDocument{next: doc, url: url, logger: d.logger}, nil
}

type loggingDocument struct {
	next   webcrawl.Document
	url    string
	logger *slog.Logger
}

func (d *loggingDocument) ExtractLinks() (links []string, err error) {
	defer func(begin time.Time) {
		d.logger.Info("extract links",
			"url", d.url,
			"links", len(links),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.ExtractLinks()
}
