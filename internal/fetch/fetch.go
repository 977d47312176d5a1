// Package fetch retrieves the text of a web page for auditing.
//
// Two fetchers are provided: Firecrawl (a hosted scraping API that renders the
// page and returns markdown) and Direct (a plain HTTP GET with a local
// HTML-to-markdown conversion, no credential needed).
package fetch

import (
	"context"
)

// Fetcher returns the extracted text of the page at url. An empty string is a
// valid result: some pages simply have no readable text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
