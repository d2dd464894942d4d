// Package feed computes which posts a viewer is allowed to see. The resolver
// is a pure function over in-memory snapshots; it holds no state and touches
// no storage, so every view (feed, progress, friend profile) filters through
// the same rules.
package feed

import "sweatstreak/internal/server/models"

// Scope selects the feed view mode.
type Scope string

const (
	// ScopeFollowing shows posts from accounts the viewer follows, plus the
	// viewer's own.
	ScopeFollowing Scope = "following"

	// ScopePublic shows public posts from non-private accounts.
	ScopePublic Scope = "public"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeFollowing || s == ScopePublic
}

// Resolve filters posts down to the subset visible to viewer under scope.
// Input order is preserved, so callers pass posts newest-first and get
// newest-first back. Per post:
//
//  1. blocked authors are excluded regardless of scope;
//  2. in the following scope a post is visible when its author is the viewer
//     or someone the viewer follows, private accounts included;
//  3. in the public scope a post is visible only when the author's account is
//     not private and the post itself is public. The viewer's own posts get
//     no exemption here.
func Resolve(viewer string, scope Scope, posts []*models.Post, accounts map[string]*models.Account, following, blocked []string) []*models.Post {
	followingSet := toSet(following)
	blockedSet := toSet(blocked)

	result := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if blockedSet[p.AuthorUsername] {
			continue
		}
		switch scope {
		case ScopeFollowing:
			if p.AuthorUsername == viewer || followingSet[p.AuthorUsername] {
				result = append(result, p)
			}
		case ScopePublic:
			author, ok := accounts[p.AuthorUsername]
			if !ok || author.IsPrivate {
				continue
			}
			if p.Visibility == models.VisibilityPublic {
				result = append(result, p)
			}
		}
	}
	return result
}

func toSet(usernames []string) map[string]bool {
	set := make(map[string]bool, len(usernames))
	for _, u := range usernames {
		set[u] = true
	}
	return set
}
