// Package fetch is the HTTP fetcher (component C2): GET with exponential
// retry, redirect following, streaming body with progress, and gzip/tar
// decompression helpers. Built on the secure client in internal/httputil.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/depssmuggler/core/internal/httputil"
	"github.com/depssmuggler/core/internal/log"
)

// Options configures a Fetcher.
type Options struct {
	// MaxRetries bounds retry attempts on transport failure or 5xx.
	// Default 3.
	MaxRetries int

	// BaseDelay is the unit of exponential backoff: attempt N waits
	// BaseDelay * N. Default 1s.
	BaseDelay time.Duration

	// UserAgent is sent on every request.
	UserAgent string

	// AllowHTTPRedirects permits redirect chains to stay on HTTP for
	// mirrors that do not serve HTTPS.
	AllowHTTPRedirects bool

	// Logger receives diagnostic output. Defaults to log.Default().
	Logger log.Logger
}

// DefaultUserAgent identifies this tool to upstream mirrors.
const DefaultUserAgent = "depssmuggler/1.0 (+offline package smuggler)"

// Fetcher performs retried, verified HTTP GETs against package mirrors.
type Fetcher struct {
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
	userAgent  string
	logger     log.Logger
}

// New constructs a Fetcher from Options, applying defaults for zero values.
func New(opts Options) *Fetcher {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseDelay == 0 {
		opts.BaseDelay = time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Fetcher{
		client: httputil.NewSecureClient(httputil.ClientOptions{
			AllowHTTPRedirects: opts.AllowHTTPRedirects,
		}),
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		userAgent:  opts.UserAgent,
		logger:     opts.Logger,
	}
}

// TransportError classifies a fetch failure per the taxonomy in spec §7:
// Retryable is true for network errors and 5xx/408/429 statuses, false
// for other 4xx statuses (which fail immediately, no retry).
type TransportError struct {
	URL        string
	StatusCode int // 0 if the failure was below the HTTP layer
	Retryable  bool
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: http %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func isRetryableStatus(code int) bool {
	if code >= 500 {
		return true
	}
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests
}

// GetBytes performs a GET, retrying on transport failure or a retryable
// HTTP status, and returns the full response body. It is the canonical
// entry point for fetching repository metadata, which is always small
// enough to buffer.
func (f *Fetcher) GetBytes(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= f.maxRetries+1; attempt++ {
		body, statusErr, err := f.attempt(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var te *TransportError
		if errors.As(err, &te) && !te.Retryable {
			return nil, err
		}
		_ = statusErr

		if attempt > f.maxRetries {
			break
		}

		delay := f.baseDelay * time.Duration(attempt)
		f.logger.Warn("fetch attempt failed, retrying", "url", url, "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}

func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, &TransportError{URL: url, Err: err, Retryable: false}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, &TransportError{URL: url, Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := isRetryableStatus(resp.StatusCode)
		return nil, retryable, &TransportError{URL: url, StatusCode: resp.StatusCode, Retryable: retryable}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, &TransportError{URL: url, Err: err, Retryable: true}
	}
	return body, false, nil
}

// ProgressFunc receives streaming download progress: bytes written so far
// and the declared total (0 if unknown).
type ProgressFunc func(written, total int64)

// PauseFunc reports whether the stream should hold off on reading more of
// the body right now. GetStream polls it between reads rather than
// blocking inside a single Read call, per the advisory-pause contract.
type PauseFunc func() bool

// pausePollInterval is how often GetStream re-checks a PauseFunc while
// paused.
const pausePollInterval = 100 * time.Millisecond

// Cancel is a cooperative cancellation handle for a streaming GetStream
// call: Cancel aborts the in-flight response body read.
type Cancel struct {
	cancel context.CancelFunc
}

// Cancel aborts the associated in-flight request.
func (c *Cancel) Cancel() {
	if c != nil && c.cancel != nil {
		c.cancel()
	}
}

// GetStream performs a GET and streams the body to w, invoking onProgress
// (if non-nil) as bytes arrive. isPaused (if non-nil) is polled between
// body reads: while it returns true, the stream holds off on the next
// Read and re-checks every 100ms, so a pause takes effect within a single
// in-flight body instead of only between queued items. It returns a
// Cancel handle the caller can use to cooperatively abort the read; the
// caller is responsible for deleting any partially written destination on
// cancellation or error (internal/download does this for on-disk package
// files).
func (f *Fetcher) GetStream(ctx context.Context, url string, w io.Writer, onProgress ProgressFunc, isPaused PauseFunc) (*Cancel, error) {
	reqCtx, cancel := context.WithCancel(ctx)
	c := &Cancel{cancel: cancel}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return c, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		cancel()
		return c, &TransportError{URL: url, Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := isRetryableStatus(resp.StatusCode)
		cancel()
		return c, &TransportError{URL: url, StatusCode: resp.StatusCode, Retryable: retryable}
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	var written int64
	buf := make([]byte, 32*1024)
	for {
		for isPaused != nil && isPaused() {
			select {
			case <-reqCtx.Done():
				return c, ctx.Err()
			case <-time.After(pausePollInterval):
			}
		}

		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				cancel()
				return c, werr
			}
			written += int64(n)
			if onProgress != nil {
				onProgress(written, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			cancel()
			return c, &TransportError{URL: url, Err: rerr, Retryable: true}
		}
	}

	return c, nil
}

// BytesReader is a convenience wrapper for feeding GetBytes output into a
// decompression helper without an intermediate named type at call sites.
func BytesReader(b []byte) io.Reader { return bytes.NewReader(b) }
