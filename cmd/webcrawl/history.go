package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/fwojciec/webcrawl"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if c.ID != "" {
		return c.show(deps)
	}

	filter := webcrawl.RunFilter{Limit: c.Limit}
	if c.Seed != "" {
		filter.SeedURL = &c.Seed
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webcrawl.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'webcrawl run' to crawl a site.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  depth=%d  downloaded=%d  errors=%d\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.SeedURL, r.MaxDepth, len(r.Downloaded), len(r.Errors))
	}

	return nil
}

func (c *HistoryCmd) show(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webcrawl.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Run %s\n", run.ID)
	fmt.Fprintf(deps.Stdout, "Seed:     %s\n", run.SeedURL)
	fmt.Fprintf(deps.Stdout, "Depth:    %d\n", run.MaxDepth)
	fmt.Fprintf(deps.Stdout, "Duration: %s\n", run.FinishedAt.Sub(run.StartedAt))
	fmt.Fprintln(deps.Stdout)

	for _, url := range run.Downloaded {
		fmt.Fprintf(deps.Stdout, "ok    %s\n", url)
	}
	failed := make([]string, 0, len(run.Errors))
	for url := range run.Errors {
		failed = append(failed, url)
	}
	sort.Strings(failed)
	for _, url := range failed {
		fmt.Fprintf(deps.Stdout, "error %s: %s\n", url, run.Errors[url])
	}
	return nil
}
