package xapi

import (
	"context"
	"fmt"
	"net/url"
)

const (
	lookupTweetFields = "created_at,author_id,text,entities,public_metrics,conversation_id"
	searchTweetFields = "created_at,author_id,text,id"
	userFields        = "name,username"
	searchMaxResults  = "100"
)

// Tweet is the subset of a v2 tweet object this client reads.
type Tweet struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	AuthorID       string `json:"author_id"`
	ConversationID string `json:"conversation_id"`
	CreatedAt      string `json:"created_at"`
}

// User is the subset of a v2 user object this client reads.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type includes struct {
	Users []User `json:"users"`
}

// TweetLookup is a tweet together with its expanded author.
type TweetLookup struct {
	Tweet  Tweet
	Author User // zero value when the author was not expanded
}

// Tweet fetches a single tweet with its author expansion.
func (c *Client) Tweet(ctx context.Context, id string) (*TweetLookup, error) {
	q := url.Values{}
	q.Set("tweet.fields", lookupTweetFields)
	q.Set("expansions", "author_id")
	q.Set("user.fields", userFields)

	var raw struct {
		Data     *Tweet       `json:"data"`
		Includes includes     `json:"includes"`
		Errors   []apiProblem `json:"errors"`
	}
	if err := c.get(ctx, "/tweets/"+url.PathEscape(id), q, &raw); err != nil {
		return nil, fmt.Errorf("lookup tweet %s: %w", id, err)
	}
	if raw.Data == nil || raw.Data.ID == "" {
		return nil, problemsError("lookup tweet "+id, raw.Errors)
	}

	out := &TweetLookup{Tweet: *raw.Data}
	for _, u := range raw.Includes.Users {
		if u.ID == raw.Data.AuthorID {
			out.Author = u
			break
		}
	}
	return out, nil
}

// SearchRecent runs a recent-search query and returns up to 100 matches
// in the order the API returned them.
func (c *Client) SearchRecent(ctx context.Context, query string) ([]Tweet, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("max_results", searchMaxResults)
	q.Set("tweet.fields", searchTweetFields)
	q.Set("expansions", "author_id")
	q.Set("user.fields", userFields)
	q.Set("sort_order", "recency")

	var raw struct {
		Data []Tweet `json:"data"`
	}
	if err := c.get(ctx, "/tweets/search/recent", q, &raw); err != nil {
		return nil, fmt.Errorf("search recent: %w", err)
	}
	return raw.Data, nil
}
