package crawl

import (
	"context"
	"sync/atomic"

	"github.com/fwojciec/webcrawl"
)

// Crawler downloads a web graph breadth-first from a seed URL.
//
// Its two worker pools and per-host limit are shared by every Crawl call;
// the frontier, host queues and results belong to a single call. Crawl may
// be called concurrently.
type Crawler struct {
	downloader  webcrawl.Downloader
	downloads   *Executor
	extractions *Executor
	perHost     int
	logf        LogFunc
	closed      atomic.Bool
}

// New creates a Crawler that fetches documents with d.
// Zero limits in cfg default to DefaultConcurrency.
func New(d webcrawl.Downloader, cfg Config) (*Crawler, error) {
	if d == nil {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "downloader required")
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Crawler{
		downloader:  d,
		downloads:   NewExecutor("download", cfg.Downloaders, cfg.LogFunc),
		extractions: NewExecutor("extract", cfg.Extractors, cfg.LogFunc),
		perHost:     cfg.PerHost,
		logf:        cfg.LogFunc,
	}, nil
}

// Crawl downloads seedURL and every page reachable from it within maxDepth
// levels, where the seed itself is level 1. If allowedHosts is non-nil, only
// URLs on those hosts are followed; other URLs are dropped silently.
//
// If ctx is canceled, Crawl stops dispatching, waits for in-flight downloads
// and extractions to return, and then returns the partial Result together
// with ctx.Err(). If the Crawler is closed mid-crawl, every URL that can no
// longer be downloaded, including ones queued behind a busy host, is
// recorded in Result.Errors with ECLOSED.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, maxDepth int, allowedHosts []string) (*webcrawl.Result, error) {
	if c.closed.Load() {
		return nil, webcrawl.Errorf(webcrawl.ECLOSED, "crawler is closed")
	}
	if seedURL == "" {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "seed URL required")
	}
	if maxDepth < 1 {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "depth must be at least 1, got %d", maxDepth)
	}

	r := &run{
		ctx:        ctx,
		downloader: c.downloader,
		extracts:   c.extractions,
		logf:       c.logf,
		maxDepth:   maxDepth,
		scope:      newScope(allowedHosts),
		frontier:   NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate),
		barrier:    NewBarrier(),
		hosts:      NewHostQueue(c.downloads, c.perHost, c.logf),
		state:      newState(),
	}
	if r.scope.allows(seedURL) {
		r.frontier.Push(webcrawl.Entry{URL: seedURL, Depth: 1})
	}

	if err := r.loop(); err != nil {
		// Tasks observe the canceled context and return early; wait for
		// them so no worker outlives the call.
		_ = r.barrier.AwaitDrain(context.Background())
		return r.state.result(), err
	}
	return r.state.result(), nil
}

// Close stops both worker pools after their running tasks return.
// Crawl returns ECLOSED afterwards.
func (c *Crawler) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.downloads.Close()
	c.extractions.Close()
	return nil
}

// Running returns the number of download and extraction tasks executing.
func (c *Crawler) Running() int {
	return c.downloads.Running() + c.extractions.Running()
}

// run is the state of one Crawl call.
type run struct {
	ctx        context.Context
	downloader webcrawl.Downloader
	extracts   *Executor
	logf       LogFunc
	maxDepth   int
	scope      scope

	frontier *Frontier
	barrier  *Barrier
	hosts    *HostQueue
	state    *state
}

// loop drives the frontier until it is empty and the barrier confirms that
// no task can refill it. Before the first entry of a deeper level is
// dispatched, all work of the previous level must drain, so each level is
// complete when it starts.
func (r *run) loop() error {
	depth := 0
	for {
		if err := r.ctx.Err(); err != nil {
			return err
		}

		entry, ok := r.frontier.Pop()
		if !ok {
			if err := r.barrier.AwaitDrain(r.ctx); err != nil {
				return err
			}
			if r.frontier.Len() == 0 {
				return nil
			}
			continue
		}

		if entry.Depth > depth {
			if depth > 0 {
				if err := r.barrier.AwaitDrain(r.ctx); err != nil {
					return err
				}
			}
			depth = entry.Depth
		}

		r.dispatch(entry)
	}
}

// dispatch routes one entry through host admission onto the download pool.
// Malformed URLs are recorded immediately and never touch the barrier.
func (r *run) dispatch(entry webcrawl.Entry) {
	host, err := webcrawl.ResolveHost(entry.URL)
	if err != nil {
		r.state.fail(entry.URL, err)
		return
	}

	party := r.barrier.Register()
	task := Task{
		Run:     func() { r.download(entry, party) },
		Done:    party.ArriveAndDeregister,
		Abandon: func(err error) { r.state.fail(entry.URL, err) },
	}
	if err := r.hosts.Submit(host, task); err != nil {
		r.logf("dispatch %s: %v", entry.URL, err)
	}
}

// download fetches one entry and, if the depth budget allows, schedules
// link extraction under a child party of the download's own party.
func (r *run) download(entry webcrawl.Entry, party *Party) {
	if r.ctx.Err() != nil {
		return
	}

	doc, err := r.downloader.Download(r.ctx, entry.URL)
	if err != nil {
		if r.ctx.Err() == nil {
			r.state.fail(entry.URL, err)
		}
		return
	}
	r.state.succeed(entry.URL)

	if entry.Depth >= r.maxDepth || doc == nil {
		return
	}

	child := party.Register()
	err = r.extracts.Submit(func() {
		defer child.ArriveAndDeregister()
		r.extract(doc, entry)
	})
	if err != nil {
		child.ArriveAndDeregister()
		r.logf("skip link extraction for %s: %v", entry.URL, err)
	}
}

// extract pushes the document's in-scope links one level deeper.
// Extraction failures are suppressed: the page still counts as downloaded.
func (r *run) extract(doc webcrawl.Document, entry webcrawl.Entry) {
	if r.ctx.Err() != nil {
		return
	}

	links, err := doc.ExtractLinks()
	if err != nil {
		r.logf("extract links from %s: %v", entry.URL, err)
		return
	}

	for _, link := range links {
		if r.frontier.Seen(link) || !r.scope.allows(link) {
			continue
		}
		r.frontier.Push(webcrawl.Entry{URL: link, Depth: entry.Depth + 1})
	}
}
