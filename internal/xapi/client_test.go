package xapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/tweetkeep/internal/oauth1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTweet_LookupWithAuthor(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tweets/123", r.URL.Path)
		assert.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))
		assert.Equal(t, lookupTweetFields, r.URL.Query().Get("tweet.fields"))
		assert.Equal(t, "author_id", r.URL.Query().Get("expansions"))
		assert.Equal(t, "name,username", r.URL.Query().Get("user.fields"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"data": {"id": "123", "text": "hello", "author_id": "9", "conversation_id": "100", "created_at": "2024-05-01T10:00:00.000Z"},
			"includes": {"users": [{"id": "8", "name": "Other", "username": "other"}, {"id": "9", "name": "Alice", "username": "alice"}]}
		}`)
	}))
	defer ts.Close()

	c := NewBearer("app-token", WithBaseURL(ts.URL))
	got, err := c.Tweet(context.Background(), "123")
	require.NoError(t, err)

	assert.Equal(t, "123", got.Tweet.ID)
	assert.Equal(t, "hello", got.Tweet.Text)
	assert.Equal(t, "100", got.Tweet.ConversationID)
	assert.Equal(t, "2024-05-01T10:00:00.000Z", got.Tweet.CreatedAt)
	assert.Equal(t, User{ID: "9", Name: "Alice", Username: "alice"}, got.Author)
}

func TestTweet_NotFoundInBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"errors": [{"title": "Not Found Error", "detail": "Could not find tweet with id: [1]."}]}`)
	}))
	defer ts.Close()

	c := NewBearer("t", WithBaseURL(ts.URL))
	_, err := c.Tweet(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not find tweet")
}

func TestTweet_HTTPErrorTruncated(t *testing.T) {
	long := strings.Repeat("x", 500)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, long)
	}))
	defer ts.Close()

	c := NewBearer("bad", WithBaseURL(ts.URL))
	_, err := c.Tweet(context.Background(), "1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "want *APIError, got %T", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Len(t, apiErr.Body, maxErrorBody)
}

func TestTweet_MalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{not json`)
	}))
	defer ts.Close()

	c := NewBearer("t", WithBaseURL(ts.URL))
	_, err := c.Tweet(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestTweet_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	c := NewBearer("t", WithBaseURL(ts.URL), WithTimeout(50*time.Millisecond))
	_, err := c.Tweet(context.Background(), "1")
	assert.Error(t, err)
}

func TestSearchRecent_Query(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tweets/search/recent", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "conversation_id:100 from:9 -is:retweet", q.Get("query"))
		assert.Equal(t, "100", q.Get("max_results"))
		assert.Equal(t, searchTweetFields, q.Get("tweet.fields"))
		assert.Equal(t, "recency", q.Get("sort_order"))

		_, _ = io.WriteString(w, `{"data": [{"id": "102", "text": "b"}, {"id": "101", "text": "a"}]}`)
	}))
	defer ts.Close()

	c := NewBearer("t", WithBaseURL(ts.URL))
	got, err := c.SearchRecent(context.Background(), "conversation_id:100 from:9 -is:retweet")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "102", got[0].ID)
	assert.Equal(t, "a", got[1].Text)
}

func TestSearchRecent_NoResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"meta": {"result_count": 0}}`)
	}))
	defer ts.Close()

	c := NewBearer("t", WithBaseURL(ts.URL))
	got, err := c.SearchRecent(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserByUsername(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/by/username/alice", r.URL.Path)
		_, _ = io.WriteString(w, `{"data": {"id": "42", "name": "Alice", "username": "alice"}}`)
	}))
	defer ts.Close()

	c := NewBearer("t", WithBaseURL(ts.URL))
	u, err := c.UserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "42", u.ID)
}

func TestMe(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data": {"id": "7", "name": "Me", "username": "me"}}`)
	}))
	defer ts.Close()

	c := NewBearer("user-token", WithBaseURL(ts.URL))
	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", u.ID)
}

func TestFollow_SignedJSONPost(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/111/following", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "OAuth "), "authorization = %q", auth)
		assert.Contains(t, auth, `oauth_token="111-abc"`)
		assert.Contains(t, auth, "oauth_signature=")

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "42", body["target_user_id"])

		_, _ = io.WriteString(w, `{"data": {"following": false, "pending_follow": true}}`)
	}))
	defer ts.Close()

	signer := oauth1.NewSigner(oauth1.Credentials{
		ConsumerKey: "ck", ConsumerSecret: "cs", AccessToken: "111-abc", AccessSecret: "as",
	})
	c := NewOAuth1(signer, WithBaseURL(ts.URL), WithUserAgent("tk-test"))
	res, err := c.Follow(context.Background(), "111", "42")
	require.NoError(t, err)
	assert.False(t, res.Following)
	assert.True(t, res.PendingFollow)
}

func TestBookmark(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/7/bookmarks", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "555", body["tweet_id"])

		_, _ = io.WriteString(w, `{"data": {"bookmarked": true}}`)
	}))
	defer ts.Close()

	c := NewBearer("user-token", WithBaseURL(ts.URL))
	ok, err := c.Bookmark(context.Background(), "7", "555")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserAgentHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tk-test", r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, `{"data": {"id": "1", "username": "u"}}`)
	}))
	defer ts.Close()

	c := NewBearer("t", WithBaseURL(ts.URL+"/"), WithUserAgent("tk-test"))
	_, err := c.Me(context.Background())
	require.NoError(t, err)
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{StatusCode: 403, Body: "forbidden"}
	assert.Equal(t, "x api: HTTP 403: forbidden", err.Error())
}
