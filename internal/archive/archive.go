// Package archive appends fetched posts to per-day markdown files.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/tweetkeep/internal/privacy"
	"github.com/ppiankov/tweetkeep/internal/source"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Entry is one post to archive.
type Entry struct {
	URL    string
	Record *source.Record
	Tag    string
	Note   string
}

// Archiver writes entries to <Dir>/YYYY-MM-DD.md using the local date at
// write time. Files are only ever appended to.
type Archiver struct {
	Dir string

	redact *privacy.Redactor
	now    func() time.Time
}

// New creates an Archiver rooted at dir. When redact is non-nil its
// patterns are masked in post text before writing.
func New(dir string, redact *privacy.Redactor) *Archiver {
	return &Archiver{Dir: dir, redact: redact, now: time.Now}
}

// PathFor returns the archive file for the day containing t.
func (a *Archiver) PathFor(t time.Time) string {
	return filepath.Join(a.Dir, t.Format(dateLayout)+".md")
}

// Append writes e to today's file, creating it with a header first if
// needed, and returns the file path.
func (a *Archiver) Append(e Entry) (string, error) {
	if e.Record == nil {
		return "", errors.New("archive: nil record")
	}
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: create dir: %w", err)
	}

	now := a.now()
	path := a.PathFor(now)

	if err := createWithHeader(path, now.Format(dateLayout)); err != nil {
		return "", err
	}

	e.Record = a.redacted(e.Record)
	var buf bytes.Buffer
	Format(&buf, e, now.Format(clockLayout))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return "", fmt.Errorf("archive: open: %w", err)
	}
	// One write per entry so concurrent appenders cannot interleave within it.
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("archive: write: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("archive: close: %w", err)
	}
	return path, nil
}

// createWithHeader creates path with the day header unless it exists.
// The header is written to a temp file which is then hard-linked into
// place, so the file never becomes visible without its header and only
// one concurrent creator wins.
func createWithHeader(path, date string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".archive-*.tmp")
	if err != nil {
		return fmt.Errorf("archive: create: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(Header(date)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("archive: write header: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("archive: write header: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("archive: chmod: %w", err)
	}

	if err := os.Link(tmp.Name(), path); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("archive: create: %w", err)
	}
	return nil
}

func (a *Archiver) redacted(rec *source.Record) *source.Record {
	if !a.redact.Enabled() {
		return rec
	}
	out := *rec
	out.Text = a.redact.Apply(rec.Text)
	out.Thread = a.redact.ApplyAll(rec.Thread)
	return &out
}
