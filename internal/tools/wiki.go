package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/skiff-ai/skiff/internal/log"
)

const (
	defaultWikiEndpoint = "https://en.wikipedia.org/w/api.php"

	minWikiResults     = 1
	maxWikiResults     = 10
	defaultWikiResults = 3

	minWikiSentences     = 1
	maxWikiSentences     = 10
	defaultWikiSentences = 3
)

// WikiSearchInput defines input for the wiki_search tool.
type WikiSearchInput struct {
	Query      string `json:"query" jsonschema:"The topic to look up in the encyclopedia."`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of articles to return (1-10, default 3)."`
	Sentences  int    `json:"sentences,omitempty" jsonschema:"Number of summary sentences per article (1-10, default 3)."`
}

// WikiConfig configures the encyclopedia tool.
type WikiConfig struct {
	// Endpoint is the MediaWiki API base. Defaults to English Wikipedia.
	Endpoint string

	Timeout time.Duration
}

// wikiSearchResponse is the subset of the MediaWiki search response we use.
type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// wikiExtractResponse is the subset of the extracts response we use.
type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// NewWikiTool creates the encyclopedia lookup tool backed by the MediaWiki
// API: one search call for titles, then one extract call per hit. Articles
// whose extract cannot be fetched are skipped rather than failing the whole
// lookup.
func NewWikiTool(cfg WikiConfig, logger log.Logger) (*Tool, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultWikiEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)

	handler := func(ctx context.Context, in WikiSearchInput) (string, error) {
		limit := clamp(in.MaxResults, minWikiResults, maxWikiResults, defaultWikiResults)
		sentences := clamp(in.Sentences, minWikiSentences, maxWikiSentences, defaultWikiSentences)

		titles, err := wikiSearchTitles(ctx, client, cfg.Endpoint, in.Query, limit)
		if err != nil {
			return "", err
		}
		if len(titles) == 0 {
			return fmt.Sprintf("No encyclopedia results found for %q.", in.Query), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Encyclopedia results for %q:\n\n", in.Query)
		n := 0
		for _, title := range titles {
			extract, err := wikiExtract(ctx, client, cfg.Endpoint, title, sentences)
			if err != nil {
				logger.Debug("skipping article", "title", title, "error", err)
				continue
			}
			n++
			fmt.Fprintf(&sb, "%d. %s\n   %s\n   %s\n\n", n, title, articleURL(cfg.Endpoint, title), extract)
		}
		if n == 0 {
			return fmt.Sprintf("No encyclopedia results found for %q.", in.Query), nil
		}
		return strings.TrimRight(sb.String(), "\n"), nil
	}

	return NewTool(
		"wiki_search",
		"Look up factual topics in the encyclopedia. Returns article titles, URLs and short summaries.",
		handler,
		WithTimeout[WikiSearchInput](cfg.Timeout),
	)
}

func wikiSearchTitles(ctx context.Context, client *resty.Client, endpoint, query string, limit int) ([]string, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":   "query",
			"list":     "search",
			"srsearch": query,
			"srlimit":  fmt.Sprint(limit),
			"format":   "json",
		}).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("encyclopedia search: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("encyclopedia search: status %d", resp.StatusCode())
	}

	var parsed wikiSearchResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("encyclopedia search: decoding response: %w", err)
	}

	titles := make([]string, 0, len(parsed.Query.Search))
	for _, hit := range parsed.Query.Search {
		titles = append(titles, hit.Title)
	}
	return titles, nil
}

func wikiExtract(ctx context.Context, client *resty.Client, endpoint, title string, sentences int) (string, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":      "query",
			"prop":        "extracts",
			"exintro":     "1",
			"explaintext": "1",
			"exsentences": fmt.Sprint(sentences),
			"titles":      title,
			"format":      "json",
		}).
		Get(endpoint)
	if err != nil {
		return "", fmt.Errorf("fetching extract: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("fetching extract: status %d", resp.StatusCode())
	}

	var parsed wikiExtractResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("decoding extract: %w", err)
	}
	for _, page := range parsed.Query.Pages {
		if page.Extract != "" {
			return strings.TrimSpace(page.Extract), nil
		}
	}
	return "", fmt.Errorf("article %q has no extract", title)
}

// articleURL derives the human-facing article link from the API endpoint.
func articleURL(endpoint, title string) string {
	base := strings.TrimSuffix(endpoint, "/w/api.php")
	return base + "/wiki/" + strings.ReplaceAll(title, " ", "_")
}
