package archive

import (
	"fmt"
	"io"

	"github.com/ppiankov/tweetkeep/internal/source"
)

var badges = map[source.Kind]string{
	source.KindAPI:    "✅ API",
	source.KindEmbed:  "✅ oEmbed",
	source.KindScrape: "⚠️ scraped",
}

// Badge returns the provenance marker shown in an entry heading.
func Badge(k source.Kind) string {
	if b, ok := badges[k]; ok {
		return b
	}
	return "⚠️ unknown"
}

// Header returns the first line of a new daily archive file.
func Header(date string) string {
	return fmt.Sprintf("# Tweet Archive — %s\n", date)
}

// Format writes one archive entry for e, stamped with clock (HH:MM).
func Format(w io.Writer, e Entry, clock string) {
	rec := e.Record

	author := rec.AuthorName
	if rec.AuthorHandle != "" {
		author = "@" + rec.AuthorHandle
	}
	marker := ""
	if rec.IsThread() {
		marker = " 🧵 thread"
	}

	fmt.Fprintf(w, "\n---\n")
	fmt.Fprintf(w, "### [%s] %s `#%s` %s%s\n", clock, author, e.Tag, Badge(rec.Source), marker)
	fmt.Fprintf(w, "**URL:** %s\n", e.URL)

	if rec.IsThread() {
		fmt.Fprintf(w, "**Thread:**\n")
		for i, t := range rec.Thread {
			fmt.Fprintf(w, "%d. %s\n\n", i+1, t)
		}
	} else {
		fmt.Fprintf(w, "**Tweet:** %s\n", rec.Text)
	}

	if e.Note != "" {
		fmt.Fprintf(w, "**Note:** %s\n", e.Note)
	}
	if rec.CreatedAt != "" {
		fmt.Fprintf(w, "**Posted:** %s\n", rec.CreatedAt)
	}
}
