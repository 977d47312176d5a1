package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultFirecrawlURL is the hosted Firecrawl API.
const DefaultFirecrawlURL = "https://api.firecrawl.dev"

// Firecrawl scrapes pages through the Firecrawl API, requesting markdown.
type Firecrawl struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewFirecrawl creates a Firecrawl client. apiKey must be non-empty; callers
// check for a missing key before constructing one.
func NewFirecrawl(baseURL, apiKey string, timeout time.Duration) *Firecrawl {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultFirecrawlURL
	}
	client := &http.Client{}
	if timeout > 0 {
		client.Timeout = timeout + 5*time.Second
	}
	return &Firecrawl{
		baseURL:    baseURL,
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: client,
	}
}

type firecrawlScrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type firecrawlScrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// Fetch scrapes url and returns its markdown rendering. A page with no
// markdown yields "" and no error.
func (f *Firecrawl) Fetch(ctx context.Context, url string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	body, err := json.Marshal(firecrawlScrapeRequest{URL: url, Formats: []string{"markdown"}})
	if err != nil {
		return "", fmt.Errorf("firecrawl: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("firecrawl: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("firecrawl: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("firecrawl: status %d: %s", resp.StatusCode, string(respBody))
	}

	var result firecrawlScrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("firecrawl: decode response: %w", err)
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "scrape unsuccessful"
		}
		return "", fmt.Errorf("firecrawl: %s", msg)
	}
	return result.Data.Markdown, nil
}
