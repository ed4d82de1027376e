package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/webcrawl"
	"github.com/fwojciec/webcrawl/crawl"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	if err := c.validate(); err != nil {
		return err
	}

	cfg := c.config()
	if deps.Logger != nil {
		logger := deps.Logger
		cfg.LogFunc = func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		}
	}

	crawler, err := crawl.New(deps.Downloader, cfg)
	if err != nil {
		return err
	}
	defer crawler.Close()

	var hosts []string
	if len(c.Hosts) > 0 {
		hosts = c.Hosts
	}

	startedAt := time.Now()
	result, crawlErr := crawler.Crawl(deps.Ctx, c.URL, c.Depth, hosts)
	if result == nil {
		return crawlErr
	}
	finishedAt := time.Now()

	for _, url := range result.Downloaded {
		fmt.Fprintln(deps.Stdout, url)
	}
	for _, url := range result.FailedURLs() {
		fmt.Fprintf(deps.Stderr, "error: %s: %v\n", url, result.Errors[url])
	}

	// Interrupted crawls are recorded too.
	run := webcrawl.NewRun(c.URL, c.Depth, result, startedAt, finishedAt)
	if err := deps.Runs.CreateRun(context.WithoutCancel(deps.Ctx), run); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: failed to record run: %s\n", webcrawl.ErrorMessage(err))
	}

	fmt.Fprintf(deps.Stdout, "\nDownloaded %d pages, %d errors", len(result.Downloaded), len(result.Errors))
	if run.ID != "" {
		fmt.Fprintf(deps.Stdout, " (run %s)", run.ID)
	}
	fmt.Fprintln(deps.Stdout)

	return crawlErr
}

func (c *RunCmd) validate() error {
	if c.Depth < 1 {
		return webcrawl.Errorf(webcrawl.EINVALID, "depth must be at least 1, got %d", c.Depth)
	}
	if c.Downloads < 1 || c.Extractors < 1 || c.PerHost < 1 {
		return webcrawl.Errorf(webcrawl.EINVALID, "downloads, extractors and perHost must be at least 1")
	}
	return nil
}
