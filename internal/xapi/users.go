package xapi

import (
	"context"
	"fmt"
	"net/url"
)

// FollowResult reports the relationship state after a follow request.
type FollowResult struct {
	Following     bool `json:"following"`
	PendingFollow bool `json:"pending_follow"`
}

// UserByUsername resolves a handle (without @) to a user.
func (c *Client) UserByUsername(ctx context.Context, username string) (*User, error) {
	var raw struct {
		Data   *User        `json:"data"`
		Errors []apiProblem `json:"errors"`
	}
	if err := c.get(ctx, "/users/by/username/"+url.PathEscape(username), nil, &raw); err != nil {
		return nil, fmt.Errorf("lookup user @%s: %w", username, err)
	}
	if raw.Data == nil || raw.Data.ID == "" {
		return nil, problemsError("lookup user @"+username, raw.Errors)
	}
	return raw.Data, nil
}

// Me returns the user the client's credentials belong to.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var raw struct {
		Data   *User        `json:"data"`
		Errors []apiProblem `json:"errors"`
	}
	if err := c.get(ctx, "/users/me", nil, &raw); err != nil {
		return nil, fmt.Errorf("lookup me: %w", err)
	}
	if raw.Data == nil || raw.Data.ID == "" {
		return nil, problemsError("lookup me", raw.Errors)
	}
	return raw.Data, nil
}

// Follow makes sourceUserID follow targetUserID.
func (c *Client) Follow(ctx context.Context, sourceUserID, targetUserID string) (*FollowResult, error) {
	body := map[string]string{"target_user_id": targetUserID}
	var raw struct {
		Data FollowResult `json:"data"`
	}
	if err := c.post(ctx, "/users/"+url.PathEscape(sourceUserID)+"/following", body, &raw); err != nil {
		return nil, fmt.Errorf("follow %s: %w", targetUserID, err)
	}
	return &raw.Data, nil
}

// Bookmark adds tweetID to userID's bookmarks and reports whether the
// API confirmed it.
func (c *Client) Bookmark(ctx context.Context, userID, tweetID string) (bool, error) {
	body := map[string]string{"tweet_id": tweetID}
	var raw struct {
		Data struct {
			Bookmarked bool `json:"bookmarked"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/users/"+url.PathEscape(userID)+"/bookmarks", body, &raw); err != nil {
		return false, fmt.Errorf("bookmark %s: %w", tweetID, err)
	}
	return raw.Data.Bookmarked, nil
}
