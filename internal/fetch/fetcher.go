package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"lcaload/internal/config"
	"lcaload/internal/domain"
	"lcaload/internal/port"
)

const maxRedirects = 10

type fetcher struct {
	client   *retryablehttp.Client
	policy   HostPolicy
	maxBytes int64
	tempDir  string
}

// NewFetcher creates an ArchiveFetcher that follows redirects only within
// policy and spools downloads to temporary files.
func NewFetcher(policy HostPolicy, cfg *config.ArchiveConfig) port.ArchiveFetcher {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = cfg.FetchTimeout
	client.HTTPClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if !policy.Allowed(req.URL.Hostname()) {
			return fmt.Errorf("%w: redirect to %s", domain.ErrHostNotAllowed, req.URL.Hostname())
		}
		return nil
	}
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if errors.Is(err, domain.ErrHostNotAllowed) {
			return false, err
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	client.Logger = nil
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.RetryMax = cfg.MaxRetries

	return &fetcher{
		client:   client,
		policy:   policy,
		maxBytes: cfg.MaxArchiveMB << 20,
		tempDir:  os.TempDir(),
	}
}

// Fetch downloads rawURL to a temporary file. The returned cleanup removes it.
func (f *fetcher) Fetch(ctx context.Context, rawURL string) (*port.FetchedArchive, func(), error) {
	u, err := f.policy.Check(rawURL)
	if err != nil {
		return nil, nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidArchiveURL, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, domain.ErrHostNotAllowed) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrArchiveFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: %s returned %s", domain.ErrArchiveFetch, u.Host, resp.Status)
	}
	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return nil, nil, fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrArchiveTooLarge, resp.ContentLength, f.maxBytes)
	}

	tmp, err := os.CreateTemp(f.tempDir, "lcaload-archive-*.zip")
	if err != nil {
		return nil, nil, fmt.Errorf("fetch.Fetch: creating temp file: %w", err)
	}
	cleanup := func() {
		_ = tmp.Close()
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Printf("fetch.Fetch: failed to remove %s: %v", tmp.Name(), rmErr)
		}
	}

	body := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	n, err := io.Copy(tmp, body)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("%w: reading body: %v", domain.ErrArchiveFetch, err)
	}
	if f.maxBytes > 0 && n > f.maxBytes {
		cleanup()
		return nil, nil, fmt.Errorf("%w: more than %d bytes", domain.ErrArchiveTooLarge, f.maxBytes)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("fetch.Fetch: flushing %s: %w", tmp.Name(), err)
	}

	log.Printf("fetch.Fetch: downloaded %d bytes from %s", n, u.Host)
	return &port.FetchedArchive{Path: tmp.Name(), Size: n}, cleanup, nil
}
