package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/skiff-ai/skiff/internal/log"
)

const (
	defaultSearchEndpoint = "https://html.duckduckgo.com/html"
	searchUserAgent       = "Mozilla/5.0 (compatible; skiff/1.0)"

	minSearchResults     = 1
	maxSearchResults     = 25
	defaultSearchResults = 5
)

// SearchInput defines input for the search tool.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"The search query to send to the web search engine."`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of results to return (1-25, default 5)."`
}

// SearchConfig configures the web search tool.
type SearchConfig struct {
	// Endpoint is the HTML search endpoint. Defaults to the DuckDuckGo
	// HTML interface; tests point it at a local fixture server.
	Endpoint string

	// Timeout bounds one search request.
	Timeout time.Duration
}

type searchResult struct {
	title   string
	url     string
	snippet string
}

// NewSearchTool creates the web search tool. It scrapes the DuckDuckGo HTML
// interface (no API key needed), unwraps the redirect links, and returns a
// numbered title/URL/snippet listing.
func NewSearchTool(cfg SearchConfig, logger log.Logger) (*Tool, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultSearchEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	handler := func(ctx context.Context, in SearchInput) (string, error) {
		limit := clamp(in.MaxResults, minSearchResults, maxSearchResults, defaultSearchResults)

		results, err := scrapeSearch(cfg, in.Query, limit)
		if err != nil {
			return "", err
		}
		if len(results) == 0 {
			return fmt.Sprintf("No search results found for %q.", in.Query), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Search results for %q:\n\n", in.Query)
		for i, r := range results {
			fmt.Fprintf(&sb, "%d. %s\n   %s\n   %s\n\n", i+1, r.title, r.url, r.snippet)
		}
		logger.Debug("search complete", "query", in.Query, "results", len(results))
		return strings.TrimRight(sb.String(), "\n"), nil
	}

	return NewTool(
		"search",
		"Search the web for current information. Returns titles, URLs and snippets.",
		handler,
		WithTimeout[SearchInput](cfg.Timeout),
	)
}

// scrapeSearch fetches one results page and extracts up to limit entries.
func scrapeSearch(cfg SearchConfig, query string, limit int) ([]searchResult, error) {
	var results []searchResult

	c := colly.NewCollector(colly.UserAgent(searchUserAgent))
	c.SetRequestTimeout(cfg.Timeout)

	c.OnHTML("div.result", func(e *colly.HTMLElement) {
		if len(results) >= limit {
			return
		}
		if r, ok := extractResult(e.DOM); ok {
			results = append(results, r)
		}
	})

	target := cfg.Endpoint + "/?q=" + url.QueryEscape(query)
	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	return results, nil
}

// extractResult pulls one result out of a "div.result" selection. Entries
// without a title or link (ads, spacer rows) are skipped.
func extractResult(sel *goquery.Selection) (searchResult, bool) {
	link := sel.Find("a.result__a")
	title := strings.TrimSpace(link.Text())
	href, _ := link.Attr("href")
	if title == "" || href == "" {
		return searchResult{}, false
	}
	return searchResult{
		title:   title,
		url:     unwrapRedirect(href),
		snippet: strings.TrimSpace(sel.Find(".result__snippet").Text()),
	}, true
}

// unwrapRedirect extracts the destination from the search engine's redirect
// links (".../l/?uddg=<encoded target>&..."). Plain links pass through.
func unwrapRedirect(href string) string {
	idx := strings.Index(href, "uddg=")
	if idx < 0 {
		return href
	}
	target := href[idx+len("uddg="):]
	if amp := strings.IndexByte(target, '&'); amp >= 0 {
		target = target[:amp]
	}
	if decoded, err := url.QueryUnescape(target); err == nil {
		return decoded
	}
	return target
}

// clamp normalizes an optional integer argument: zero means "use default",
// out-of-range values snap to the nearest bound.
func clamp(v, min, max, def int) int {
	switch {
	case v == 0:
		return def
	case v < min:
		return min
	case v > max:
		return max
	default:
		return v
	}
}
