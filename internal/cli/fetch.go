package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ppiankov/tweetkeep/internal/actions"
	"github.com/ppiankov/tweetkeep/internal/archive"
	"github.com/ppiankov/tweetkeep/internal/config"
	"github.com/ppiankov/tweetkeep/internal/credentials"
	"github.com/ppiankov/tweetkeep/internal/oauth1"
	"github.com/ppiankov/tweetkeep/internal/privacy"
	"github.com/ppiankov/tweetkeep/internal/source"
	"github.com/ppiankov/tweetkeep/internal/xapi"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	threadPreviewRunes = 100
	textPreviewRunes   = 200
)

var (
	fetchTag      string
	fetchNote     string
	fetchFollow   bool
	fetchBookmark bool
)

func registerFetchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&fetchTag, "tag", "", "category tag: "+strings.Join(config.Tags, "|")+" (default from config, else other)")
	f.StringVar(&fetchNote, "note", "", "free-text note stored with the entry")
	f.BoolVar(&fetchFollow, "follow", false, "follow the post's author (needs OAuth1 keys and a bearer token)")
	f.BoolVar(&fetchBookmark, "bookmark", false, "bookmark the post (needs an OAuth2 user token)")
}

func fetchAction(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageError("missing post URL (usage: %s)", cmd.UseLine())
	}
	rawURL := strings.TrimSpace(args[0])
	out := cmd.OutOrStdout()
	log := newLogger(cmd.ErrOrStderr())

	cfg, err := config.Load(workspaceDir)
	if err != nil {
		return usageError("load config: %w", err)
	}

	tag := cfg.Archive.DefaultTag
	if cmd.Flags().Changed("tag") {
		tag = fetchTag
	}
	if !config.ValidTag(tag) {
		return usageError("invalid tag %q (want one of %s)", tag, strings.Join(config.Tags, ", "))
	}

	var redactor *privacy.Redactor
	if cfg.Archive.Redact.Enabled {
		redactor, err = privacy.New(cfg.Archive.Redact.Patterns)
		if err != nil {
			return usageError("archive.redact: %w", err)
		}
	}

	id, ok := source.ExtractID(rawURL)
	if !ok {
		return usageError("could not extract tweet ID from URL: %s", rawURL)
	}
	fmt.Fprintf(out, "Tweet ID: %s\n", id)

	ctx := cmd.Context()
	creds := credentials.New(cfg.SecretsDir, cfg.EnvFile)
	bearer, err := creds.Bearer()
	if err != nil {
		log.WithError(err).Warn("bearer token unreadable; skipping X API")
		bearer = ""
	}

	chain := buildChain(cfg, bearer, log, out)
	rec, err := chain.Fetch(ctx, source.Ref{URL: rawURL, ID: id})
	if errors.Is(err, source.ErrNoSource) {
		return &ExitError{
			Code: ExitNoSource,
			Err:  errors.New("could not fetch tweet; refusing to archive without real content"),
		}
	}
	if err != nil {
		return err
	}

	arch := archive.New(cfg.LinksDir, redactor)
	path, err := arch.Append(archive.Entry{URL: rawURL, Record: rec, Tag: tag, Note: fetchNote})
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	printSummary(out, path, rec, time.Now())

	if fetchFollow {
		runFollow(ctx, cfg, creds, bearer, rec, log, out)
	}
	if fetchBookmark {
		runBookmark(ctx, cfg, creds, id, log, out)
	}
	return nil
}

// buildChain assembles fetchers in priority order. The API fetcher is
// included only when a bearer token is available.
func buildChain(cfg *config.Config, bearer string, log *logrus.Logger, out io.Writer) *source.Chain {
	timeout := cfg.Timeout.Duration

	var fetchers []source.Fetcher
	if bearer != "" {
		client := xapi.NewBearer(bearer, apiOptions(cfg)...)
		fetchers = append(fetchers, source.NewAPI(client, log.WithField("source", string(source.KindAPI))))
	}
	fetchers = append(fetchers,
		source.NewEmbed(cfg.Embed.Endpoint, timeout, cfg.UserAgent),
		source.NewScrape(cfg.Scrape.Mirrors, timeout, cfg.UserAgent, log.WithField("source", string(source.KindScrape))),
	)
	return source.NewChain(log, out, fetchers...)
}

func apiOptions(cfg *config.Config) []xapi.Option {
	return []xapi.Option{
		xapi.WithBaseURL(cfg.API.BaseURL),
		xapi.WithTimeout(cfg.Timeout.Duration),
		xapi.WithUserAgent(cfg.UserAgent),
	}
}

func printSummary(w io.Writer, path string, rec *source.Record, now time.Time) {
	fmt.Fprintf(w, "Archived → %s\n", path)
	fmt.Fprintf(w, "Author: %s (%s)\n", rec.AuthorName, rec.AuthorHandle)
	if rec.IsThread() {
		fmt.Fprintf(w, "Thread: %d tweets\n", len(rec.Thread))
		for i, t := range rec.Thread {
			fmt.Fprintf(w, "  %d. %s\n", i+1, preview(t, threadPreviewRunes, "..."))
		}
	} else {
		fmt.Fprintf(w, "Text: %s\n", preview(rec.Text, textPreviewRunes, ""))
	}
	fmt.Fprintf(w, "Source: %s\n", rec.Source)
	if rec.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, rec.CreatedAt); err == nil {
			fmt.Fprintf(w, "Posted: %s (%s)\n", rec.CreatedAt, humanize.RelTime(t, now, "ago", "from now"))
		} else {
			fmt.Fprintf(w, "Posted: %s\n", rec.CreatedAt)
		}
	}
}

// preview cuts s to limit runes, appending suffix when it was cut.
func preview(s string, limit int, suffix string) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + suffix
}

func runFollow(ctx context.Context, cfg *config.Config, creds *credentials.Loader, bearer string,
	rec *source.Record, log *logrus.Logger, out io.Writer,
) {
	flog := log.WithField("action", "follow")
	if rec.AuthorHandle == "" {
		flog.Warn("post has no author handle; skipping follow")
		return
	}

	keys, err := creds.OAuth1()
	if err != nil {
		flog.WithError(err).Error("OAuth1 credentials unreadable")
		return
	}
	if keys == nil || bearer == "" {
		flog.Error("missing OAuth credentials")
		return
	}

	users := xapi.NewBearer(bearer, apiOptions(cfg)...)
	signed := xapi.NewOAuth1(oauth1.NewSigner(*keys), apiOptions(cfg)...)
	actions.NewFollow(users, signed, keys.AccessToken, log, out).Follow(ctx, rec.AuthorHandle)
}

func runBookmark(ctx context.Context, cfg *config.Config, creds *credentials.Loader, tweetID string,
	log *logrus.Logger, out io.Writer,
) {
	blog := log.WithField("action", "bookmark")
	token, err := creds.OAuth2()
	if err != nil {
		blog.WithError(err).Error("OAuth2 token unreadable")
		return
	}
	if token == "" {
		blog.Errorf("no OAuth 2.0 token (%s) in %s", credentials.OAuth2TokenFile, cfg.SecretsDir)
		return
	}

	client := xapi.NewBearer(token, apiOptions(cfg)...)
	actions.NewBookmark(client, log, out).Bookmark(ctx, tweetID)
}
