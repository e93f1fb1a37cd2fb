package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var (
	markupRe       = regexp.MustCompile(`<[^>]+>`)
	blankLinesRe   = regexp.MustCompile(`\n{3,}`)
	authorHandleRe = regexp.MustCompile(`(?:twitter|x)\.com/(\w+)$`)
)

// EmbedFetcher reads posts from the public oEmbed endpoint. It needs no
// credentials and never returns a thread.
type EmbedFetcher struct {
	endpoint  string
	client    *http.Client
	userAgent string
}

// NewEmbed creates an oEmbed fetcher for endpoint.
func NewEmbed(endpoint string, timeout time.Duration, userAgent string) *EmbedFetcher {
	return &EmbedFetcher{
		endpoint:  endpoint,
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (e *EmbedFetcher) Name() Kind {
	return KindEmbed
}

type oembedResponse struct {
	HTML       string `json:"html"`
	AuthorName string `json:"author_name"`
	AuthorURL  string `json:"author_url"`
}

func (e *EmbedFetcher) Fetch(ctx context.Context, ref Ref) (*Record, error) {
	q := url.Values{}
	q.Set("url", ref.URL)
	q.Set("omit_script", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("oembed: build request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oembed: status %d", resp.StatusCode)
	}

	var data oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("oembed: decode: %w", err)
	}

	text := stripTags(data.HTML)
	if text == "" {
		return nil, errors.New("oembed: empty text")
	}

	var handle string
	if m := authorHandleRe.FindStringSubmatch(data.AuthorURL); m != nil {
		handle = m[1]
	}

	return &Record{
		ID:           idOrUnknown(ref.ID),
		Text:         text,
		AuthorName:   nameOrUnknown(data.AuthorName),
		AuthorHandle: handle,
		Source:       KindEmbed,
	}, nil
}

// stripTags removes markup, decodes entities, and collapses runs of blank
// lines to a single blank line.
func stripTags(s string) string {
	s = markupRe.ReplaceAllString(s, "")
	s = html.UnescapeString(strings.TrimSpace(s))
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
