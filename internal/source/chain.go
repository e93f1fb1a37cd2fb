package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

var kindLabels = map[Kind]string{
	KindAPI:    "X API",
	KindEmbed:  "oEmbed",
	KindScrape: "web scrape",
}

// Label returns the human-readable name of a source kind.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// Chain tries fetchers in order and returns the first record with text.
// Fetcher failures are logged and never escape the chain.
type Chain struct {
	fetchers []Fetcher
	log      logrus.FieldLogger
	progress io.Writer
}

// NewChain builds a chain over fetchers in priority order. "Trying ..."
// lines are written to progress; failures go to log.
func NewChain(log logrus.FieldLogger, progress io.Writer, fetchers ...Fetcher) *Chain {
	return &Chain{fetchers: fetchers, log: log, progress: progress}
}

// Fetch returns the first successful record, or ErrNoSource.
func (c *Chain) Fetch(ctx context.Context, ref Ref) (*Record, error) {
	for _, f := range c.fetchers {
		name := f.Name()
		fmt.Fprintf(c.progress, "Trying %s...\n", name.Label())

		rec, err := f.Fetch(ctx, ref)
		if err == nil && (rec == nil || rec.Text == "") {
			err = errors.New("no content")
		}
		if err != nil {
			c.log.WithField("source", string(name)).WithError(err).Warn("source unavailable")
			continue
		}
		return rec, nil
	}
	return nil, ErrNoSource
}
