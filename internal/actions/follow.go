// Package actions performs the optional account side effects that follow
// archiving: following a post's author and bookmarking the post. Every
// failure is logged and reported as a result value, never returned as an
// error.
package actions

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/tweetkeep/internal/xapi"
	"github.com/sirupsen/logrus"
)

// Outcome is the result of a follow attempt.
type Outcome int

const (
	FollowFailed Outcome = iota
	Followed
	FollowPending // private account; request awaits approval
)

// OK reports whether the attempt counts as a success.
func (o Outcome) OK() bool {
	return o == Followed || o == FollowPending
}

func (o Outcome) String() string {
	switch o {
	case Followed:
		return "followed"
	case FollowPending:
		return "pending"
	default:
		return "failed"
	}
}

// UserLookup resolves handles; satisfied by a bearer-token xapi.Client.
type UserLookup interface {
	UserByUsername(ctx context.Context, username string) (*xapi.User, error)
}

// Follower creates follow relationships; satisfied by an OAuth1 xapi.Client.
type Follower interface {
	Follow(ctx context.Context, sourceUserID, targetUserID string) (*xapi.FollowResult, error)
}

// FollowClient follows users on behalf of the OAuth1 access token owner.
type FollowClient struct {
	users       UserLookup
	follower    Follower
	accessToken string
	log         logrus.FieldLogger
	out         io.Writer
}

// NewFollow creates a follow client. accessToken is the OAuth1 access
// token whose numeric prefix identifies the acting user.
func NewFollow(users UserLookup, follower Follower, accessToken string, log logrus.FieldLogger, out io.Writer) *FollowClient {
	return &FollowClient{
		users:       users,
		follower:    follower,
		accessToken: accessToken,
		log:         log.WithField("action", "follow"),
		out:         out,
	}
}

// AuthUserID returns the user id embedded in an OAuth1 access token
// ("<user id>-<random>").
func AuthUserID(accessToken string) string {
	id, _, _ := strings.Cut(accessToken, "-")
	return id
}

// Follow follows handle (without @).
func (f *FollowClient) Follow(ctx context.Context, handle string) Outcome {
	target, err := f.users.UserByUsername(ctx, handle)
	if err != nil {
		f.log.WithError(err).Errorf("could not look up @%s", handle)
		return FollowFailed
	}

	self := AuthUserID(f.accessToken)
	if self == "" {
		f.log.Error("access token does not carry a user id")
		return FollowFailed
	}

	res, err := f.follower.Follow(ctx, self, target.ID)
	if err != nil {
		f.log.WithError(err).Errorf("follow @%s failed", handle)
		return FollowFailed
	}

	switch {
	case res.Following:
		fmt.Fprintf(f.out, "[follow] ✅ Now following @%s\n", handle)
		return Followed
	case res.PendingFollow:
		fmt.Fprintf(f.out, "[follow] ⏳ Follow request sent to @%s (private account)\n", handle)
		return FollowPending
	default:
		f.log.Errorf("follow @%s not confirmed by API", handle)
		return FollowFailed
	}
}
