package webcrawl

import "context"

// Downloader retrieves documents by URL.
type Downloader interface {
	// Download fetches the document at url.
	// The context controls timeout and cancellation.
	Download(ctx context.Context, url string) (Document, error)
}

// Document is a downloaded page that can report the links it contains.
type Document interface {
	// ExtractLinks returns the absolute URLs referenced by the document.
	ExtractLinks() ([]string, error)
}

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch returns the HTML body served at url.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// LinkExtractor parses HTML and returns the absolute URLs it links to.
type LinkExtractor interface {
	// ExtractLinks resolves every link in html against baseURL.
	ExtractLinks(html string, baseURL string) ([]string, error)
}
