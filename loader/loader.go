// Package loader reads query input from files, URLs or raw text and decodes
// it into the tree form used by package query.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jacoelho/qarray/internal/ratelimit"
	"github.com/jacoelho/qarray/query"
)

// DefaultTimeout bounds a single URL fetch.
const DefaultTimeout = 30 * time.Second

var (
	ErrEmptySource       = errors.New("empty source")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrDecode            = errors.New("decode failed")
	ErrFetch             = errors.New("fetch failed")
)

type Option func(*Loader)

// WithFormat skips format detection.
func WithFormat(format Format) Option {
	return func(l *Loader) {
		l.format = format
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithRateLimit caps URL fetches per second. Zero means unlimited.
func WithRateLimit(perSecond float64) Option {
	return func(l *Loader) {
		l.limiter = ratelimit.New(perSecond)
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		l.timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithQueryOptions sets the options Open passes to query.New.
func WithQueryOptions(opts ...query.Option) Option {
	return func(l *Loader) {
		l.queryOptions = append(l.queryOptions, opts...)
	}
}

// Loader is safe for concurrent use once built.
type Loader struct {
	format       Format
	client       *http.Client
	limiter      *ratelimit.Limiter
	timeout      time.Duration
	logger       *slog.Logger
	queryOptions []query.Option
}

func New(opts ...Option) *Loader {
	l := &Loader{
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load is New(opts...).Load(ctx, source).
func Load(ctx context.Context, source string, opts ...Option) (any, error) {
	return New(opts...).Load(ctx, source)
}

// Open loads source and starts a query over it.
func Open(ctx context.Context, source string, opts ...Option) (*query.Query, error) {
	return New(opts...).Open(ctx, source)
}

// Load decodes source, which is an http(s) URL, a file path or the data
// itself. A source naming a .json, .yaml or .yml file that cannot be read is
// an error rather than raw data.
func (l *Loader) Load(ctx context.Context, source string) (any, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}

	if isURL(source) {
		return l.fetch(ctx, source)
	}

	info, statErr := os.Stat(source)
	switch {
	case statErr == nil && info.Mode().IsRegular():
		return l.readFile(source)
	case looksLikeFile(source):
		if statErr == nil {
			statErr = errors.New("not a regular file")
		}
		return nil, fmt.Errorf("read %s: %w", source, statErr)
	}

	l.logger.Debug("loading raw data", "bytes", len(source))
	return Parse([]byte(source), l.format)
}

func (l *Loader) Open(ctx context.Context, source string) (*query.Query, error) {
	data, err := l.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	return query.New(data, l.queryOptions...), nil
}

// Read decodes everything r yields.
func (l *Loader) Read(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return Parse(data, l.format)
}

func (l *Loader) readFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	format := l.format
	if format == FormatAuto {
		format = formatFromName(path)
	}

	l.logger.Debug("loading file", "path", path, "format", string(format), "bytes", len(data))
	return Parse(data, format)
}

func (l *Loader) fetch(ctx context.Context, source string) (any, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, source, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, source, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}

	format := l.format
	if format == FormatAuto {
		format = formatFromContentType(resp.Header.Get("Content-Type"))
	}
	if format == FormatAuto {
		if parsed, err := url.Parse(source); err == nil {
			format = formatFromName(parsed.Path)
		}
	}

	l.logger.Debug("fetched url",
		"url", source,
		"status", resp.StatusCode,
		"format", string(format),
		"bytes", len(data),
		"duration", time.Since(start),
		"rate_limit", l.limiter.Limit())

	return Parse(data, format)
}

func isURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func looksLikeFile(source string) bool {
	return !strings.ContainsAny(source, "\n{[:") && formatFromName(source) != FormatAuto
}
