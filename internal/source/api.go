package source

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ppiankov/tweetkeep/internal/xapi"
	"github.com/sirupsen/logrus"
)

// TweetReader is the part of the X API client the API fetcher needs.
type TweetReader interface {
	Tweet(ctx context.Context, id string) (*xapi.TweetLookup, error)
	SearchRecent(ctx context.Context, query string) ([]xapi.Tweet, error)
}

// APIFetcher reads posts from the authenticated X API and reconstructs
// same-author threads from the post's conversation.
type APIFetcher struct {
	client TweetReader
	log    logrus.FieldLogger
}

// NewAPI creates an API fetcher. log receives thread-search warnings.
func NewAPI(client TweetReader, log logrus.FieldLogger) *APIFetcher {
	return &APIFetcher{client: client, log: log}
}

func (a *APIFetcher) Name() Kind {
	return KindAPI
}

func (a *APIFetcher) Fetch(ctx context.Context, ref Ref) (*Record, error) {
	res, err := a.client.Tweet(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	tw := res.Tweet
	if tw.Text == "" {
		return nil, errors.New("api: post has no text")
	}

	rec := &Record{
		ID:           idOrUnknown(ref.ID),
		Text:         tw.Text,
		AuthorName:   nameOrUnknown(res.Author.Name),
		AuthorHandle: res.Author.Username,
		CreatedAt:    tw.CreatedAt,
		Source:       KindAPI,
	}

	conversationID := tw.ConversationID
	if conversationID == "" {
		conversationID = ref.ID
	}
	if tw.AuthorID == "" {
		return rec, nil
	}

	thread, err := a.thread(ctx, conversationID, tw.AuthorID, tw.Text)
	if err != nil {
		a.log.WithError(err).Warn("thread lookup failed; keeping single post")
		return rec, nil
	}
	rec.Thread = thread
	return rec, nil
}

// thread returns the author's posts in the conversation, oldest first,
// with rootText prepended when the search did not return it. A result
// with fewer than two entries is not a thread and yields nil.
func (a *APIFetcher) thread(ctx context.Context, conversationID, authorID, rootText string) ([]string, error) {
	query := fmt.Sprintf("conversation_id:%s from:%s -is:retweet", conversationID, authorID)
	tweets, err := a.client.SearchRecent(ctx, query)
	if err != nil {
		return nil, err
	}

	sortByID(tweets)

	texts := make([]string, 0, len(tweets)+1)
	hasRoot := false
	for _, t := range tweets {
		if t.Text == rootText {
			hasRoot = true
		}
		texts = append(texts, t.Text)
	}
	if !hasRoot {
		texts = append([]string{rootText}, texts...)
	}

	if len(texts) < 2 {
		return nil, nil
	}
	return texts, nil
}

// sortByID orders tweets by ascending numeric ID. IDs are unsigned
// decimal strings, so a shorter string is always the smaller number.
func sortByID(tweets []xapi.Tweet) {
	sort.SliceStable(tweets, func(i, j int) bool {
		return idLess(tweets[i].ID, tweets[j].ID)
	})
}

func idLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
