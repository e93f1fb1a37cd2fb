package actions

import (
	"context"
	"fmt"
	"io"

	"github.com/ppiankov/tweetkeep/internal/xapi"
	"github.com/sirupsen/logrus"
)

// BookmarkAPI is satisfied by an xapi.Client holding an OAuth 2.0 user token.
type BookmarkAPI interface {
	Me(ctx context.Context) (*xapi.User, error)
	Bookmark(ctx context.Context, userID, tweetID string) (bool, error)
}

type BookmarkClient struct {
	api BookmarkAPI
	log logrus.FieldLogger
	out io.Writer
}

func NewBookmark(api BookmarkAPI, log logrus.FieldLogger, out io.Writer) *BookmarkClient {
	return &BookmarkClient{api: api, log: log.WithField("action", "bookmark"), out: out}
}

// Bookmark adds tweetID to the token owner's bookmarks and reports success.
func (b *BookmarkClient) Bookmark(ctx context.Context, tweetID string) bool {
	me, err := b.api.Me(ctx)
	if err != nil {
		b.log.WithError(err).Error("could not get user id")
		return false
	}

	ok, err := b.api.Bookmark(ctx, me.ID, tweetID)
	if err != nil {
		b.log.WithError(err).Errorf("bookmark %s failed", tweetID)
		return false
	}
	if !ok {
		b.log.Errorf("bookmark %s not confirmed by API", tweetID)
		return false
	}

	fmt.Fprintf(b.out, "[bookmark] 🔖 Bookmarked tweet %s\n", tweetID)
	return true
}
