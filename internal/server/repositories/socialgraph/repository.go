package socialgraph

import "context"

type Repository interface {
	// Follow writes the directed edge follower -> followee. An existing edge
	// surfaces as common.ErrorDuplicate.
	Follow(ctx context.Context, follower, followee string) error
	// Unfollow removes the edge; removing an absent edge is not an error.
	Unfollow(ctx context.Context, follower, followee string) error
	Following(ctx context.Context, username string) ([]string, error)
	Followers(ctx context.Context, username string) ([]string, error)
	IsFollowing(ctx context.Context, follower, followee string) (bool, error)

	// Block adds target to username's block set; re-blocking is a no-op.
	Block(ctx context.Context, username, target string) error
	Unblock(ctx context.Context, username, target string) error
	Blocked(ctx context.Context, username string) ([]string, error)
}
