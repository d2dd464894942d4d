package models

import "time"

// FollowEdge is one directed follow relation. A single row is the source of
// truth for both the follower's "following" list and the followee's
// "followers" list, so the two views can never disagree.
type FollowEdge struct {
	FollowerUsername string
	FolloweeUsername string
	CreatedAt        time.Time
}

// Block is one directed block relation. Blocks are asymmetric and
// independent of follow edges.
type Block struct {
	Username       string
	TargetUsername string
	CreatedAt      time.Time
}
