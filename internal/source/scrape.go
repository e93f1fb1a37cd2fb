package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/k3a/html2text"
	"github.com/sirupsen/logrus"
)

const (
	descriptionSelector = `meta[property="og:description"], meta[name="og:description"], ` +
		`meta[property="twitter:description"], meta[name="twitter:description"]`
	titleSelector = `meta[property="og:title"], meta[name="og:title"]`
)

var titleAuthorRe = regexp.MustCompile(`^(.+?)\s+on\s+(?:Twitter|X|Nitter)`)

// ScrapeFetcher reads posts from read-only mirror front-ends by parsing
// the page's Open Graph metadata. Mirrors are tried in order; the first
// one yielding text wins.
type ScrapeFetcher struct {
	mirrors   []string
	client    *http.Client
	userAgent string
	log       logrus.FieldLogger
}

// NewScrape creates a scrape fetcher over the given mirror base URLs.
func NewScrape(mirrors []string, timeout time.Duration, userAgent string, log logrus.FieldLogger) *ScrapeFetcher {
	return &ScrapeFetcher{
		mirrors:   mirrors,
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
	}
}

func (s *ScrapeFetcher) Name() Kind {
	return KindScrape
}

func (s *ScrapeFetcher) Fetch(ctx context.Context, ref Ref) (*Record, error) {
	if ref.ID == "" {
		return nil, errors.New("scrape: no post id")
	}
	for _, mirror := range s.mirrors {
		pageURL := strings.TrimRight(mirror, "/") + "/i/status/" + ref.ID
		rec, err := s.fetchPage(ctx, pageURL)
		if err != nil {
			s.log.WithField("mirror", mirror).WithError(err).Warn("mirror failed")
			continue
		}
		rec.ID = ref.ID
		return rec, nil
	}
	return nil, fmt.Errorf("scrape: all %d mirrors failed", len(s.mirrors))
}

func (s *ScrapeFetcher) fetchPage(ctx context.Context, pageURL string) (*Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	desc, ok := doc.Find(descriptionSelector).First().Attr("content")
	if !ok {
		return nil, errors.New("no description meta")
	}
	text := strings.TrimSpace(html2text.HTML2Text(desc))
	if text == "" {
		return nil, errors.New("empty description")
	}

	var name string
	if title, ok := doc.Find(titleSelector).First().Attr("content"); ok {
		if m := titleAuthorRe.FindStringSubmatch(title); m != nil {
			name = m[1]
		}
	}

	return &Record{
		Text:       text,
		AuthorName: nameOrUnknown(name),
		Source:     KindScrape,
	}, nil
}
