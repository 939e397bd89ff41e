package main

import (
	"context"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/fetchfilter"
	"github.com/fwojciec/fetchfilter/crawl"
	"github.com/fwojciec/fetchfilter/progressbar"
)

// Quit modes.
const (
	quitModeLine = "line"
	quitModeKey  = "key"
	quitModeOff  = "off"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	WebsiteURL   string `name:"website_url" required:"" help:"Index page to scan for links"`
	DownloadPath string `name:"download_path" required:"" type:"path" help:"Directory to save files into (created if missing)"`
	FilteredName string `name:"filtered_name" required:"" help:"Substring a link must contain to be downloaded"`

	Verify       bool     `name:"md5" help:"Compute a digest of every file and compare it with the checksum store"`
	Algorithm    string   `default:"md5" enum:"md5,xxh64" help:"Digest algorithm used with --md5"`
	Extensions   []string `default:".zip,.cue,.iso,.bin" help:"File extensions to download"`
	RequireText  bool     `name:"require-text" help:"Ignore links without visible text"`
	ChecksumFile string   `name:"checksum-file" default:"checksums.json" help:"JSON checksum store"`
	ChecksumDB   string   `name:"checksum-db" help:"SQLite checksum store, used instead of --checksum-file"`

	Timeout     time.Duration `default:"30s" help:"Connect and response header timeout"`
	ReadTimeout time.Duration `name:"read-timeout" default:"60s" help:"Abort a download after this long without data"`
	ChunkSize   int           `name:"chunk-size" default:"1024" help:"Bytes written between cancellation checks"`
	Partial     string        `default:"keep" enum:"keep,remove,rename" help:"What to do with incomplete files"`
	Rate        float64       `default:"0" help:"Requests per second per host (0 disables)"`
	Unique      bool          `help:"Skip links that were already downloaded in this run"`
	Robots      bool          `help:"Honor robots.txt"`
	Proxy       string        `env:"FETCHFILTER_PROXY" help:"HTTP or SOCKS5 proxy URL"`
	UserAgent   string        `name:"user-agent" env:"FETCHFILTER_USER_AGENT" help:"User-Agent header"`

	QuitKey   string `name:"quit-key" default:"q" help:"Key that stops the run"`
	QuitMode  string `name:"quit-mode" default:"line" enum:"line,key,off" help:"Read the quit key per line, as a raw keystroke, or not at all"`
	KeepGoing bool   `name:"keep-going" help:"Continue with the next file when one fails"`
	Quiet     bool   `short:"q" help:"Hide progress bars"`
	Debug     bool   `help:"Log operations to stderr"`
}

func (c *CLI) quitRune() rune {
	r, _ := utf8.DecodeRuneInString(c.QuitKey)
	if r == utf8.RuneError {
		return crawl.DefaultQuitKey
	}
	return r
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Pipeline *crawl.Pipeline
	Progress *progressbar.Reporter
	// Keys is nil when the quit key is disabled.
	Keys fetchfilter.KeySource
}

// FetchCmd handles the main fetch operation.
type FetchCmd struct {
	URL     string
	QuitKey rune
	Quiet   bool
}
