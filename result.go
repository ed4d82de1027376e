package webcrawl

import "sort"

// Result holds the outcome of a crawl.
type Result struct {
	// Downloaded lists successfully downloaded URLs in completion order.
	// A URL appears at most once.
	Downloaded []string

	// Errors maps every URL that could not be downloaded to the reason.
	Errors map[string]error
}

// FailedURLs returns the keys of Errors in lexical order.
func (r *Result) FailedURLs() []string {
	urls := make([]string, 0, len(r.Errors))
	for url := range r.Errors {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}
