// Package scrape fetches vendor spec pages and extracts their text content.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// specSectionClass marks the detailed parameter block on vendor spec pages.
// When present, only that section is extracted; otherwise the whole page
// body text is used.
const specSectionClass = "specs-parameter-wrap"

const maxPageBytes = 8 * 1024 * 1024

// Fetcher retrieves the text content of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages over plain HTTP and strips markup.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the page and returns its extracted text.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", url, err)
	}
	req.Header.Set("User-Agent", "dronemind/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}

	text, err := ExtractText(string(body))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", url, err)
	}
	return text, nil
}

// ExtractText parses an HTML document and returns its visible text.
// Sections marked with the spec parameter class take precedence over the
// full body; script and style content is always dropped.
func ExtractText(doc string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", err
	}

	sections := findByClass(root, specSectionClass)
	var sb strings.Builder
	if len(sections) > 0 {
		for _, node := range sections {
			collectText(node, &sb)
		}
	} else {
		collectText(root, &sb)
	}

	return normalizeWhitespace(sb.String()), nil
}

func findByClass(node *html.Node, class string) []*html.Node {
	var matches []*html.Node
	if node.Type == html.ElementNode && hasClass(node, class) {
		return []*html.Node{node}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		matches = append(matches, findByClass(child, class)...)
	}
	return matches
}

func hasClass(node *html.Node, class string) bool {
	for _, attr := range node.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func collectText(node *html.Node, sb *strings.Builder) {
	if node.Type == html.ElementNode {
		switch node.Data {
		case "script", "style", "noscript":
			return
		}
	}
	if node.Type == html.TextNode {
		text := strings.TrimSpace(node.Data)
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, sb)
	}
}

func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
