package webcrawl

// Entry is a URL waiting to be downloaded at a given crawl depth.
// The seed has depth 1; links found on a depth-d page have depth d+1.
type Entry struct {
	URL   string
	Depth int
}

// URLFrontier manages a crawl queue with deduplication.
type URLFrontier interface {
	// Push adds an entry to the frontier.
	// Returns false if the URL has already been seen.
	Push(entry Entry) bool

	// Pop returns the next entry, lowest depth first.
	// Returns false if the frontier is empty.
	Pop() (Entry, bool)

	// Len returns the number of entries in the queue.
	Len() int

	// Seen returns true if the URL has been queued at some point.
	Seen(url string) bool
}
