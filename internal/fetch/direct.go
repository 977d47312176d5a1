package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "Mozilla/5.0 (compatible; kansa/1.0; nonprofit web audit)"

// Direct downloads a page itself and converts HTML to markdown locally.
// It sees only server-rendered HTML; pages built by client-side scripts come
// back mostly empty, which is what Firecrawl is for.
type Direct struct {
	maxBytes   int64
	timeout    time.Duration
	httpClient *http.Client
}

// NewDirect creates a direct fetcher. maxBytes caps the body read; <= 0
// means 2 MB.
func NewDirect(maxBytes int64, timeout time.Duration) *Direct {
	if maxBytes <= 0 {
		maxBytes = 2 << 20
	}
	return &Direct{
		maxBytes:   maxBytes,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Fetch GETs url. Plain text and markdown bodies are returned as-is; anything
// else is parsed as HTML.
func (d *Direct) Fetch(ctx context.Context, url string) (string, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("direct fetch: create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("direct fetch: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("direct fetch: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes))
	if err != nil {
		return "", fmt.Errorf("direct fetch: read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/plain") || strings.Contains(contentType, "text/markdown") {
		return strings.TrimSpace(string(body)), nil
	}

	md, err := HTMLToMarkdown(string(body))
	if err != nil {
		return "", fmt.Errorf("direct fetch: convert html: %w", err)
	}
	return md, nil
}
