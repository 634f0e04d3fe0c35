package main

import (
	"bufio"
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

var USER_AGENT = "skild-data-collector/0.1"

type ResponseWrapper struct {
	StatusCode int
	Text       string
}

// anything that can GET a url and hand back the body as text.
type Downloader interface {
	Download(ctx context.Context, url string) (ResponseWrapper, error)
}

// paces outgoing requests. `Wait` blocks before an attempt, `Done` is called once it has finished.
type Pacer interface {
	Wait(ctx context.Context) error
	Done()
}

type no_pacer struct{}

func (no_pacer) Wait(ctx context.Context) error {
	return ctx.Err()
}

func (no_pacer) Done() {}

// keeps at least `interval` between the end of one attempt and the start of the next.
type delay_pacer struct {
	interval time.Duration
	limiter  *rate.Limiter
}

func (p *delay_pacer) Wait(ctx context.Context) error {
	if p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

// a single-token bucket emptied at the end of an attempt,
// the next token arrives `interval` later.
func (p *delay_pacer) Done() {
	p.limiter = rate.NewLimiter(rate.Every(p.interval), 1)
	p.limiter.Allow()
}

// returns a pacer that leaves `interval` between attempts.
// a zero or negative interval disables pacing.
func new_pacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return no_pacer{}
	}
	return &delay_pacer{interval: interval}
}

// --- on-disk response cache

// creates a key that is unique to the given `http.Request` URL (including query parameters),
// hashed to an MD5 string.
// the result can be safely used as a filename.
func make_cache_key(r *http.Request) string {
	// inconsistent case and url params etc will cause cache misses
	key := r.URL.String()
	md5sum := md5.Sum([]byte(key))
	return hex.EncodeToString(md5sum[:])
}

// replays successful responses from `Dir`, populating it on a miss.
// development aid only, it makes every run see the same skills.sh pages.
type FileCachingRequest struct {
	Dir       string
	Transport http.RoundTripper
}

// reads the cached response as if it were the result of `httputil.DumpResponse`,
// a status code, followed by a series of headers, followed by the response body.
func (x FileCachingRequest) read_cache_entry(req *http.Request, cache_path string) (*http.Response, error) {
	data, err := os.ReadFile(cache_path)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), req)
}

func (x FileCachingRequest) RoundTrip(req *http.Request) (*http.Response, error) {
	transport := x.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	cache_path := filepath.Join(x.Dir, make_cache_key(req))
	cached_resp, err := x.read_cache_entry(req, cache_path)
	if err == nil {
		slog.Debug("cache HIT", "url", req.URL, "cache-path", cache_path)
		return cached_resp, nil
	}
	slog.Debug("cache MISS", "url", req.URL, "cache-path", cache_path)

	resp, err := transport.RoundTrip(req)
	if err != nil {
		// do not cache error response, pass through
		return resp, err
	}

	if resp.StatusCode != http.StatusOK {
		slog.Debug("non-200 response, pass through", "code", resp.StatusCode)
		return resp, nil
	}

	dumped_bytes, err := httputil.DumpResponse(resp, true)
	if err != nil {
		slog.Warn("failed to dump response to bytes", "error", err)
		return resp, nil
	}

	err = os.WriteFile(cache_path, dumped_bytes, 0644)
	if err != nil {
		slog.Warn("failed to write cache file", "error", err)
		return resp, nil
	}

	cached_resp, err = x.read_cache_entry(req, cache_path)
	if err != nil {
		slog.Warn("failed to read cache file", "error", err)
		return resp, nil
	}
	return cached_resp, nil
}

// --- client

type HTTPClient struct {
	client *resty.Client
}

// an anonymous client with a fixed per-request timeout.
// when `cache_dir` is non-empty successful responses are cached there.
func new_http_client(timeout time.Duration, cache_dir string) (*HTTPClient, error) {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", USER_AGENT)

	if cache_dir != "" {
		err := os.MkdirAll(cache_dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create http cache directory: %w", err)
		}
		client.SetTransport(FileCachingRequest{Dir: cache_dir})
	}

	return &HTTPClient{client: client}, nil
}

func (c *HTTPClient) Download(ctx context.Context, url string) (ResponseWrapper, error) {
	slog.Debug("HTTP GET", "url", url)
	empty_response := ResponseWrapper{}

	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return empty_response, fmt.Errorf("failed to fetch '%s': %w", url, err)
	}

	return ResponseWrapper{
		StatusCode: resp.StatusCode(),
		Text:       resp.String(),
	}, nil
}

// like `Download` but a non-2xx response is an error.
func fetch_text(ctx context.Context, downloader Downloader, url string) (string, error) {
	resp, err := downloader.Download(ctx, url)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unsuccessful response fetching '%s': %d", url, resp.StatusCode)
	}
	return resp.Text, nil
}
