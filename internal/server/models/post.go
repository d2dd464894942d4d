package models

import "time"

// Visibility is a per-post flag: private posts are hidden from the public
// scope even when the author's account is not private.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Post is one daily photo post. At most one exists per author per calendar
// day (UTC); the uniqueness lives in the database schema.
type Post struct {
	ID             string
	AuthorUsername string
	ImageURL       string
	Caption        string

	// Date is the calendar day of the post in YYYY-MM-DD form.
	Date string

	Visibility Visibility

	// Likes holds the usernames that currently like the post.
	Likes []string

	// Comments preserves insertion order; comments are never edited or deleted.
	Comments []Comment

	CreatedAt time.Time
}

// Comment is one immutable comment on a post.
type Comment struct {
	Username  string
	Text      string
	CreatedAt time.Time
}

// LikedBy reports whether username currently likes the post.
func (p *Post) LikedBy(username string) bool {
	for _, u := range p.Likes {
		if u == username {
			return true
		}
	}
	return false
}
