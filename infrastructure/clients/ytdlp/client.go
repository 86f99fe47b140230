// Package ytdlp implements the media provider on top of the yt-dlp command line tool.
package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/semaphore"

	"api-music/domain/model"
)

// Config represents yt-dlp invocation settings
type Config struct {
	Binary        string
	Timeout       time.Duration
	SocketTimeout int
	Retries       int
	MaxConcurrent int
}

// Runner executes name with args and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Client runs yt-dlp processes, at most Config.MaxConcurrent at a time
type Client struct {
	cfg Config
	sem *semaphore.Weighted
	run Runner
}

type Option func(*Client)

// WithRunner replaces process execution, mainly for tests.
func WithRunner(run Runner) Option {
	return func(c *Client) {
		c.run = run
	}
}

// NewClient creates a yt-dlp backed media provider
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Binary == "" {
		cfg.Binary = "yt-dlp"
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	c := &Client{
		cfg: cfg,
		sem: semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		run: execRunner,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListFlat lists a channel or playlist without resolving each entry.
func (c *Client) ListFlat(ctx context.Context, locator string) (*model.SourceListing, error) {
	out, err := c.call(ctx, true, "--flat-playlist", "--ignore-errors", "--", locator)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", locator, err)
	}
	return parseListing(out)
}

// Search runs a ytsearch query bounded to limit results.
func (c *Client) Search(ctx context.Context, query string, limit int) (*model.SourceListing, error) {
	out, err := c.call(ctx, false, "--flat-playlist", "--", fmt.Sprintf("ytsearch%d:%s", limit, query))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return parseListing(out)
}

// ListFormats extracts the delivery formats of a single track.
func (c *Client) ListFormats(ctx context.Context, watchURL string) (*model.FormatListing, error) {
	out, err := c.call(ctx, false, "--no-playlist", "-f", "bestaudio/best", "--", watchURL)
	if err != nil {
		return nil, fmt.Errorf("formats %s: %w", watchURL, err)
	}
	return parseFormats(out)
}

func (c *Client) baseArgs() []string {
	args := []string{"--dump-single-json", "--no-warnings", "--no-check-certificates"}
	if c.cfg.SocketTimeout > 0 {
		args = append(args, "--socket-timeout", strconv.Itoa(c.cfg.SocketTimeout))
	}
	if c.cfg.Retries > 0 {
		args = append(args, "--retries", strconv.Itoa(c.cfg.Retries))
	}
	return args
}

// call runs yt-dlp with the shared flags. With allowPartial a failing exit status is
// tolerated as long as a JSON document was printed, which --ignore-errors produces.
func (c *Client) call(ctx context.Context, allowPartial bool, args ...string) ([]byte, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: waiting for a free slot: %v", model.ErrProviderUnavailable, err)
	}
	defer c.sem.Release(1)

	out, err := c.run(ctx, c.cfg.Binary, append(c.baseArgs(), args...)...)
	out = bytes.TrimSpace(out)
	if err != nil && !(allowPartial && len(out) > 0 && gjson.ValidBytes(out)) {
		return nil, fmt.Errorf("%w: %v", model.ErrProviderUnavailable, err)
	}
	if len(out) > 0 && !gjson.ValidBytes(out) {
		return nil, fmt.Errorf("%w: invalid JSON output", model.ErrProviderUnavailable)
	}
	return out, nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%w: %s", err, msg)
		}
		return stdout.Bytes(), err
	}
	return stdout.Bytes(), nil
}
