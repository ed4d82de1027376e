package crawl

import (
	"container/heap"
	"strings"
	"sync"

	"github.com/fwojciec/webcrawl"
	"github.com/fwojciec/webcrawl/bloom"
)

// Compile-time interface verification.
var _ webcrawl.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory URL frontier ordered by depth with exact
// first-claim deduplication. It is safe for concurrent use by multiple
// goroutines.
//
// A Bloom filter answers most "never seen" checks without taking the
// frontier lock or touching the exact set; a positive answer is always
// confirmed against the set, so false positives never drop a URL.
type Frontier struct {
	mu     sync.Mutex
	filter *bloom.Filter
	seen   map[string]struct{}
	queue  *entryHeap
	seq    uint64
}

// NewFrontier creates a new Frontier whose pre-check filter is sized for n
// expected URLs with the given false positive rate.
func NewFrontier(n uint, fpRate float64) *Frontier {
	h := &entryHeap{}
	heap.Init(h)
	return &Frontier{
		filter: bloom.NewFilter(n, fpRate),
		seen:   make(map[string]struct{}),
		queue:  h,
	}
}

// Push adds an entry to the frontier.
// Returns false if the URL has already been seen.
// URL fragments are stripped before deduplication - URLs differing only by
// fragment are considered duplicates.
func (f *Frontier) Push(entry webcrawl.Entry) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	url := stripFragment(entry.URL)
	if f.seenLocked(url) {
		return false
	}
	f.filter.Add(url)
	f.seen[url] = struct{}{}

	entry.URL = url
	heap.Push(f.queue, queuedEntry{Entry: entry, seq: f.seq})
	f.seq++
	return true
}

// Pop returns the entry with the lowest depth, oldest first within a depth.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (webcrawl.Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue.Len() == 0 {
		return webcrawl.Entry{}, false
	}
	e, _ := heap.Pop(f.queue).(queuedEntry)
	return e.Entry, true
}

// Len returns the number of entries in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// Seen returns true if the URL has been queued at some point.
// URL fragments are stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	url := stripFragment(rawURL)
	if !f.filter.Test(url) {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seenLocked(url)
}

func (f *Frontier) seenLocked(url string) bool {
	if !f.filter.Test(url) {
		return false
	}
	_, ok := f.seen[url]
	return ok
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}

// queuedEntry carries the insertion sequence used to keep FIFO order
// among entries of equal depth.
type queuedEntry struct {
	webcrawl.Entry
	seq uint64
}

// entryHeap implements heap.Interface as a min-heap on (depth, seq).
type entryHeap []queuedEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].Depth != h[j].Depth {
		return h[i].Depth < h[j].Depth
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	e, _ := x.(queuedEntry)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
