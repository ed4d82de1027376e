package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/webcrawl"
	"github.com/fwojciec/webcrawl/fs"
	"github.com/fwojciec/webcrawl/goquery"
	crawlhttp "github.com/fwojciec/webcrawl/http"
	crawlslog "github.com/fwojciec/webcrawl/slog"
	"github.com/fwojciec/webcrawl/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(); --db overrides it.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	RunService webcrawl.RunService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	exited := false
	parser, err := kong.New(cli,
		kong.Name("webcrawl"),
		kong.Description("Crawl a website breadth-first from a seed URL"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
		kong.UsageOnError(),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'webcrawl --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if exited {
		// A help flag was handled by the parser.
		return nil
	}
	if err != nil {
		return err
	}

	if cli.DB != "" {
		m.DBPath = cli.DB
	}

	if cli.Verbose {
		deps.Logger = slog.New(slog.NewTextHandler(stderr, nil))
	}

	if m.RunService == nil {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set WEBCRAWL_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()
		m.RunService = sqlite.NewRunService(m.DB)
	}
	deps.Runs = m.RunService
	if deps.Logger != nil {
		deps.Runs = crawlslog.NewLoggingRunService(deps.Runs, deps.Logger)
	}

	if strings.HasPrefix(kongCtx.Command(), "run") {
		var fetcher webcrawl.Fetcher = crawlhttp.NewFetcher(crawlhttp.WithTimeout(cli.Run.Timeout))
		if cli.Run.Mirror != "" {
			fetcher = fs.NewMirrorFetcher(fetcher, cli.Run.Mirror)
		}
		if deps.Logger != nil {
			fetcher = crawlslog.NewLoggingFetcher(fetcher, deps.Logger)
		}
		defer fetcher.Close()

		var downloader webcrawl.Downloader = crawlhttp.NewDownloader(fetcher, goquery.NewLinkExtractor())
		if deps.Logger != nil {
			downloader = crawlslog.NewLoggingDownloader(downloader, deps.Logger)
		}
		deps.Downloader = downloader
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "webcrawl.db"
	}
	dir := filepath.Join(home, ".webcrawl")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "webcrawl.db")
}
