// Package bloom provides a probabilistic URL membership pre-check.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter is a Bloom filter keyed by URL. It is safe for concurrent use.
// A negative Test is certain; a positive Test must be confirmed elsewhere.
type Filter struct {
	mu sync.RWMutex
	f  *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected URLs
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records a URL in the filter.
func (f *Filter) Add(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.f.AddString(url)
}

// Test returns true if the URL might have been added.
// False positives are possible; false negatives are not.
func (f *Filter) Test(url string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.f.TestString(url)
}
