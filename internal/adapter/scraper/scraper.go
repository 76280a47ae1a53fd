// Package scraper fetches web pages and extracts their title and Open Graph
// image and description.
package scraper

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/vadimbarashkov/shortlink/internal/entity"
	"golang.org/x/net/html"
)

const defaultMaxBodyBytes = 2 << 20

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Extractor struct {
	client       httpClient
	userAgent    string
	maxBodyBytes int64
}

type Option func(*Extractor)

func WithUserAgent(ua string) Option {
	return func(e *Extractor) {
		e.userAgent = ua
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxBodyBytes = n
		}
	}
}

func NewExtractor(client httpClient, opts ...Option) *Extractor {
	e := &Extractor{
		client:       client,
		maxBodyBytes: defaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract fetches url and parses its metadata. Every failure wraps
// entity.ErrExtractionFailure.
func (e *Extractor) Extract(ctx context.Context, url string) (*entity.Metadata, error) {
	const op = "adapter.scraper.Extractor.Extract"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: failed to build request: %v", op, entity.ErrExtractionFailure, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: failed to fetch page: %v", op, entity.ErrExtractionFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w: unexpected status %d", op, entity.ErrExtractionFailure, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTML(ct) {
		return nil, fmt.Errorf("%s: %w: unexpected content type %q", op, entity.ErrExtractionFailure, ct)
	}

	md, err := Parse(io.LimitReader(resp.Body, e.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, entity.ErrExtractionFailure, err)
	}

	return md, nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// Parse reads an HTML document and returns the text of its first <title> and the
// content of its og:image and og:description meta tags. Missing values stay nil.
func Parse(r io.Reader) (*entity.Metadata, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var md entity.Metadata
	walk(doc, &md)

	return &md, nil
}

func walk(n *html.Node, md *entity.Metadata) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if md.Title == nil {
				title := strings.TrimSpace(textContent(n))
				md.Title = &title
			}
		case "meta":
			switch attr(n, "property") {
			case "og:image":
				if md.Image == nil {
					md.Image = nonEmpty(attr(n, "content"))
				}
			case "og:description":
				if md.Description == nil {
					md.Description = nonEmpty(attr(n, "content"))
				}
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, md)
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}

	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}

	return ""
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
