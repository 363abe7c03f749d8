package tools

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/go-resty/resty/v2"

	"github.com/skiff-ai/skiff/internal/log"
)

// maxFetchedText caps the readable text returned to the model. Full
// articles can be enormous; beyond this the extra text only burns context
// window.
const maxFetchedText = 6000

// FetchPageInput defines input for the fetch_page tool.
type FetchPageInput struct {
	URL string `json:"url" jsonschema:"The http(s) URL of the page to fetch and extract readable text from."`
}

// FetchConfig configures the page-fetch tool.
type FetchConfig struct {
	Timeout time.Duration
}

// NewFetchPageTool creates the page-fetch tool: download a URL and run it
// through readability extraction so the model receives article text instead
// of raw markup. Pairs with the search tool, whose snippets are often too
// thin to answer from.
func NewFetchPageTool(cfg FetchConfig, logger log.Logger) (*Tool, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)

	handler := func(ctx context.Context, in FetchPageInput) (string, error) {
		target, err := url.Parse(strings.TrimSpace(in.URL))
		if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
			return "", fmt.Errorf("invalid URL %q: must be http or https", in.URL)
		}

		resp, err := client.R().
			SetContext(ctx).
			SetHeader("User-Agent", searchUserAgent).
			Get(target.String())
		if err != nil {
			return "", fmt.Errorf("fetching %s: %w", target, err)
		}
		if resp.StatusCode() != http.StatusOK {
			return "", fmt.Errorf("fetching %s: status %d", target, resp.StatusCode())
		}

		article, err := readability.FromReader(bytes.NewReader(resp.Body()), target)
		if err != nil {
			return "", fmt.Errorf("extracting readable text from %s: %w", target, err)
		}

		text := strings.TrimSpace(article.TextContent)
		if text == "" {
			return fmt.Sprintf("No readable text found at %s.", target), nil
		}
		if len(text) > maxFetchedText {
			text = text[:maxFetchedText] + "\n\n[content truncated]"
		}

		logger.Debug("page fetched", "url", target.String(), "bytes", len(text))
		if article.Title != "" {
			return fmt.Sprintf("%s\n%s\n\n%s", article.Title, target, text), nil
		}
		return fmt.Sprintf("%s\n\n%s", target, text), nil
	}

	return NewTool(
		"fetch_page",
		"Fetch a web page and return its readable text content. Use after search when a snippet is not enough.",
		handler,
		WithTimeout[FetchPageInput](cfg.Timeout),
	)
}
