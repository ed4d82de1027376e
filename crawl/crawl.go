// Package crawl provides the breadth-first crawl scheduler. It coordinates
// the frontier, per-host admission, the download and extraction worker
// pools, and the generation barrier that decides when a depth level, and
// the crawl as a whole, has finished.
package crawl

import "github.com/fwojciec/webcrawl"

// DefaultConcurrency is used for any Config limit left at zero.
const DefaultConcurrency = 16

// Frontier configuration for a single crawl.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate of the pre-check.
	frontierFalsePositiveRate = 0.01
)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// Config sizes a Crawler.
type Config struct {
	// Downloaders is the number of downloads that may run at once.
	Downloaders int

	// Extractors is the number of link extractions that may run at once.
	Extractors int

	// PerHost is the number of downloads that may run at once against one host.
	PerHost int

	// LogFunc, if set, receives suppressed failures and recovered panics.
	LogFunc LogFunc
}

// withDefaults validates c and fills zero limits with DefaultConcurrency.
func (c Config) withDefaults() (Config, error) {
	limits := []struct {
		name  string
		value *int
	}{
		{"downloaders", &c.Downloaders},
		{"extractors", &c.Extractors},
		{"per-host", &c.PerHost},
	}
	for _, l := range limits {
		if *l.value < 0 {
			return c, webcrawl.Errorf(webcrawl.EINVALID, "%s limit must not be negative, got %d", l.name, *l.value)
		}
		if *l.value == 0 {
			*l.value = DefaultConcurrency
		}
	}
	if c.LogFunc == nil {
		c.LogFunc = func(string, ...any) {}
	}
	return c, nil
}
