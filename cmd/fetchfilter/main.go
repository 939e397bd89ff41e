package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/fetchfilter"
	"github.com/fwojciec/fetchfilter/bloom"
	"github.com/fwojciec/fetchfilter/crawl"
	"github.com/fwojciec/fetchfilter/digest"
	"github.com/fwojciec/fetchfilter/fs"
	"github.com/fwojciec/fetchfilter/goquery"
	ffhttp "github.com/fwojciec/fetchfilter/http"
	"github.com/fwojciec/fetchfilter/keyboard"
	"github.com/fwojciec/fetchfilter/progressbar"
	"github.com/fwojciec/fetchfilter/robots"
	ffslog "github.com/fwojciec/fetchfilter/slog"
	"github.com/fwojciec/fetchfilter/sqlite"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// Exit codes.
const (
	exitError    = 1
	exitCanceled = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if fetchfilter.ErrorCode(err) == fetchfilter.ECANCELED {
		return exitCanceled
	}
	return exitError
}

// Main represents the program.
type Main struct {
	// Stdin feeds the cancellation monitor.
	Stdin io.Reader
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Stdin: os.Stdin}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("fetchfilter"),
		kong.Description("Download the files linked from a web index page that match a name filter"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fetchfilter.Errorf(fetchfilter.EINVALID, "no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return fetchfilter.Wrapf(err, fetchfilter.EINVALID, "invalid arguments")
	}

	// Wire dependencies
	runID := uuid.NewString()
	logger := slog.New(slog.DiscardHandler)
	if cli.Debug {
		logger = slog.New(slog.NewTextHandler(stderr, nil))
	}
	logger = logger.With("run", runID)

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}

	client, err := ffhttp.NewClient(ffhttp.ClientConfig{
		Timeout:   cli.Timeout,
		Proxy:     cli.Proxy,
		UserAgent: cli.UserAgent,
	})
	if err != nil {
		return err
	}

	var fetcher fetchfilter.Fetcher = ffhttp.NewFetcher(
		ffhttp.WithClient(client),
		ffhttp.WithTimeout(cli.Timeout),
	)
	var downloader fetchfilter.Downloader = ffhttp.NewDownloader(
		ffhttp.WithClient(client),
		ffhttp.WithChunkSize(cli.ChunkSize),
		ffhttp.WithReadTimeout(cli.ReadTimeout),
		ffhttp.WithPartialPolicy(fetchfilter.PartialPolicy(cli.Partial)),
	)
	if cli.Debug {
		fetcher = ffslog.NewLoggingFetcher(fetcher, logger)
		downloader = ffslog.NewLoggingDownloader(downloader, logger)
	}
	var extractor fetchfilter.LinkExtractor = goquery.NewLinkExtractor(fetcher, goquery.WithRequireText(cli.RequireText))
	if cli.Debug {
		extractor = ffslog.NewLoggingLinkExtractor(extractor, logger)
	}

	pipeline := &crawl.Pipeline{
		Extractor:  extractor,
		Filter:     fetchfilter.LinkFilter{Extensions: cli.Extensions, Substring: cli.FilteredName},
		Downloader: downloader,
		Dir:        cli.DownloadPath,
		KeepGoing:  cli.KeepGoing,
	}

	if cli.Verify {
		hasher, err := digest.NewHasher(fetchfilter.Algorithm(cli.Algorithm))
		if err != nil {
			return err
		}
		store, closeStore, err := openChecksumStore(cli, runID)
		if err != nil {
			return err
		}
		defer closeStore()
		pipeline.Hasher, pipeline.Checksums = hasher, store
		if cli.Debug {
			pipeline.Hasher = ffslog.NewLoggingHasher(hasher, logger)
			pipeline.Checksums = ffslog.NewLoggingChecksumStore(store, logger)
		}
	}

	if cli.Rate > 0 {
		pipeline.Limiter = crawl.NewDomainLimiter(cli.Rate)
	}
	if cli.Unique {
		pipeline.Duplicates = bloom.NewFilter(bloom.DefaultCapacity, bloom.DefaultFalsePositiveRate)
	}
	if cli.Robots {
		agent := cli.UserAgent
		if agent == "" {
			agent = ffhttp.DefaultUserAgent
		}
		pipeline.Robots = robots.NewPolicy(client, agent)
	}
	if !cli.Quiet {
		deps.Progress = progressbar.NewReporter(stderr)
		pipeline.Progress = deps.Progress.Report
	}
	deps.Pipeline = pipeline

	keys, closeKeys, err := m.keySource(cli)
	if err != nil {
		return err
	}
	defer closeKeys()
	deps.Keys = keys

	cmd := &FetchCmd{
		URL:     cli.WebsiteURL,
		QuitKey: cli.quitRune(),
		Quiet:   cli.Quiet,
	}

	return cmd.Run(deps)
}

// openChecksumStore returns the SQLite store when a database path is given
// and the JSON file store otherwise.
func openChecksumStore(cli *CLI, runID string) (fetchfilter.ChecksumStore, func(), error) {
	if cli.ChecksumDB == "" {
		return fs.NewChecksumStore(cli.ChecksumFile), func() {}, nil
	}
	db := sqlite.NewDB(cli.ChecksumDB)
	if err := db.Open(); err != nil {
		return nil, nil, fetchfilter.Wrapf(err, fetchfilter.EPERSIST, "failed to open %s", cli.ChecksumDB)
	}
	return sqlite.NewChecksumStore(db, runID), func() { _ = db.Close() }, nil
}

// keySource picks how the cancellation monitor reads input. Raw key mode
// needs a terminal and falls back to line mode without one.
func (m *Main) keySource(cli *CLI) (fetchfilter.KeySource, func(), error) {
	noop := func() {}
	switch cli.QuitMode {
	case quitModeOff:
		return nil, noop, nil
	case quitModeKey:
		if f, ok := m.Stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			ks, err := keyboard.Open(cli.quitRune())
			if err != nil {
				return nil, noop, err
			}
			return ks, func() { _ = ks.Close() }, nil
		}
	}
	if m.Stdin == nil {
		return nil, noop, nil
	}
	return crawl.NewLineKeySource(m.Stdin), noop, nil
}
