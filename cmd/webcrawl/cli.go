package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/webcrawl"
	"github.com/fwojciec/webcrawl/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	Runs       webcrawl.RunService
	Downloader webcrawl.Downloader
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"WEBCRAWL_DB" help:"SQLite database recording crawl runs"`
	Verbose bool   `short:"v" help:"Log every fetch to stderr"`

	Run     RunCmd     `cmd:"" help:"Crawl a website from a seed URL"`
	History HistoryCmd `cmd:"" help:"List recorded crawl runs"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	URL        string        `arg:"" help:"Seed URL"`
	Depth      int           `arg:"" optional:"" default:"16" help:"Maximum depth; the seed is depth 1"`
	Downloads  int           `arg:"" optional:"" default:"16" help:"Concurrent downloads"`
	Extractors int           `arg:"" optional:"" default:"16" help:"Concurrent link extractions"`
	PerHost    int           `arg:"" optional:"" default:"16" help:"Concurrent downloads per host"`
	Hosts      []string      `short:"H" name:"host" help:"Only follow links to this host (repeatable)"`
	Timeout    time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	Mirror     string        `short:"m" help:"Directory to mirror fetched pages into"`
}

// config returns the crawler configuration for the command's limits.
func (c *RunCmd) config() crawl.Config {
	return crawl.Config{
		Downloaders: c.Downloads,
		Extractors:  c.Extractors,
		PerHost:     c.PerHost,
	}
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	ID    string `arg:"" optional:"" help:"Show the pages of one run"`
	Seed  string `help:"Only list runs for this seed URL"`
	Limit int    `short:"n" default:"20" help:"Maximum number of runs to list"`
}
