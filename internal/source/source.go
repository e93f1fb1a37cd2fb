package source

import (
	"context"
	"errors"
)

// Kind records which source produced a Record.
type Kind string

const (
	KindAPI    Kind = "api"
	KindEmbed  Kind = "embed"
	KindScrape Kind = "scrape"
)

const (
	unknownID     = "unknown"
	unknownAuthor = "Unknown"
)

// ErrNoSource is returned by Chain.Fetch when every fetcher failed.
var ErrNoSource = errors.New("all sources failed")

// Ref identifies the post being fetched.
type Ref struct {
	URL string // URL as given on the command line
	ID  string // numeric post ID extracted from URL
}

// Record is a post normalized from any source.
type Record struct {
	ID           string
	Text         string
	Thread       []string // full text of each thread post, oldest first; empty when not a thread
	AuthorName   string
	AuthorHandle string // without the leading @
	CreatedAt    string
	Source       Kind
}

// IsThread reports whether the record carries a multi-post thread.
func (r *Record) IsThread() bool {
	return len(r.Thread) > 1
}

// Fetcher retrieves a single post from one data source.
type Fetcher interface {
	// Name returns the source kind (e.g. "embed").
	Name() Kind

	// Fetch returns the post for ref. Any failure is reported as an error;
	// a nil error always comes with a record whose Text is non-empty.
	Fetch(ctx context.Context, ref Ref) (*Record, error)
}

func idOrUnknown(id string) string {
	if id == "" {
		return unknownID
	}
	return id
}

func nameOrUnknown(name string) string {
	if name == "" {
		return unknownAuthor
	}
	return name
}
