package http

import (
	"context"

	"github.com/fwojciec/webcrawl"
)

// Ensure Downloader implements webcrawl.Downloader at compile time.
var _ webcrawl.Downloader = (*Downloader)(nil)

// Downloader turns fetched HTML into documents whose links are parsed
// lazily, on the extraction pool rather than the download pool.
type Downloader struct {
	Fetcher   webcrawl.Fetcher
	Extractor webcrawl.LinkExtractor
}

// NewDownloader creates a Downloader from a fetcher and a link extractor.
func NewDownloader(fetcher webcrawl.Fetcher, extractor webcrawl.LinkExtractor) *Downloader {
	return &Downloader{Fetcher: fetcher, Extractor: extractor}
}

// Download fetches url and wraps the body in a Document.
func (d *Downloader) Download(ctx context.Context, url string) (webcrawl.Document, error) {
	html, err := d.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Document{URL: url, HTML: html, extractor: d.Extractor}, nil
}

// Ensure Document implements webcrawl.Document at compile time.
var _ webcrawl.Document = (*Document)(nil)

// Document is a fetched HTML page.
type Document struct {
	URL  string
	HTML string

	extractor webcrawl.LinkExtractor
}

// ExtractLinks returns the page's links resolved against its URL.
func (d *Document) ExtractLinks() ([]string, error) {
	return d.extractor.ExtractLinks(d.HTML, d.URL)
}
