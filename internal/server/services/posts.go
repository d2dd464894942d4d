package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sweatstreak/internal/common"
	"sweatstreak/internal/dbx"
	"sweatstreak/internal/server/feed"
	"sweatstreak/internal/server/models"
	"sweatstreak/internal/server/repositories/repomanager"
)

const (
	// defaultCaption fills in when the author submits an empty caption.
	defaultCaption = "Just finished today's workout 💪"

	// newPostNotification is the fan-out message sent to followers.
	newPostNotification = "%s just posted their SweatStreak! 🔥"

	// feedLimit caps how many recent posts a single feed request considers.
	feedLimit = 100
)

// timeNow is a seam for tests that pin the calendar day.
var timeNow = time.Now

type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager) *PostService {
	return &PostService{db: db, repomanager: m}
}

// CreatePost records the author's daily post. The calendar day is taken in
// UTC so the one-post-per-day rule does not drift with client timezones.
// The day check, the insert and the follower fan-out run in one transaction;
// a concurrent double-submission loses on the posts table's per-day unique
// constraint and surfaces as ErrorAlreadyPostedToday.
func (s *PostService) CreatePost(ctx context.Context, author, imageURL, caption string, visibility models.Visibility) (*models.Post, error) {

	if imageURL == "" {
		return nil, fmt.Errorf("%w: image is required", common.ErrorValidation)
	}
	if visibility != models.VisibilityPublic && visibility != models.VisibilityPrivate {
		return nil, fmt.Errorf("%w: unknown visibility %q", common.ErrorValidation, visibility)
	}
	if strings.TrimSpace(caption) == "" {
		caption = defaultCaption
	}

	day := timeNow().UTC().Format("2006-01-02")

	post := &models.Post{
		ID:             uuid.NewString(),
		AuthorUsername: author,
		ImageURL:       imageURL,
		Caption:        caption,
		Date:           day,
		Visibility:     visibility,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		postRepo := s.repomanager.Posts(tx)

		exists, err := postRepo.ExistsForDay(ctx, author, day)
		if err != nil {
			return fmt.Errorf("error checking daily post: %v", err)
		}
		if exists {
			return common.ErrorAlreadyPostedToday
		}

		post, err = postRepo.Create(ctx, post)
		if err != nil {
			if errors.Is(err, common.ErrorDuplicate) {
				return common.ErrorAlreadyPostedToday
			}
			return fmt.Errorf("error creating post: %v", err)
		}

		if visibility == models.VisibilityPublic {
			if err := s.notifyFollowers(ctx, tx, author); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return post, nil
}

// notifyFollowers appends a new-post notification for every follower who has
// notifications enabled.
func (s *PostService) notifyFollowers(ctx context.Context, tx dbx.DBTX, author string) error {
	followers, err := s.repomanager.SocialGraph(tx).Followers(ctx, author)
	if err != nil {
		return fmt.Errorf("error listing followers: %v", err)
	}

	accountRepo := s.repomanager.Accounts(tx)
	notificationRepo := s.repomanager.Notifications(tx)
	message := fmt.Sprintf(newPostNotification, author)

	for _, follower := range followers {
		account, err := accountRepo.GetByUsername(ctx, follower)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			return fmt.Errorf("error loading follower %s: %v", follower, err)
		}
		if !account.NotificationsEnabled {
			continue
		}
		if _, err := notificationRepo.Append(ctx, follower, message); err != nil {
			return fmt.Errorf("error notifying %s: %v", follower, err)
		}
	}
	return nil
}

// ToggleLike flips username's membership in the post's like set and reports
// whether the post is liked after the call.
func (s *PostService) ToggleLike(ctx context.Context, postID, username string) (bool, error) {
	var liked bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)

		if _, err := repo.GetByID(ctx, postID); err != nil {
			return err
		}

		has, err := repo.HasLike(ctx, postID, username)
		if err != nil {
			return err
		}
		if has {
			liked = false
			return repo.DeleteLike(ctx, postID, username)
		}
		liked = true
		return repo.InsertLike(ctx, postID, username)
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

// AddComment appends an immutable comment. Empty or whitespace-only text is
// rejected before anything is written.
func (s *PostService) AddComment(ctx context.Context, postID, username, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.ErrorEmptyComment
	}

	repo := s.repomanager.Posts(s.db)
	if _, err := repo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return repo.InsertComment(ctx, postID, username, text)
}

// Feed returns the posts visible to viewer under the requested scope,
// newest first.
func (s *PostService) Feed(ctx context.Context, viewer string, scope feed.Scope) ([]*models.Post, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: unknown scope %q", common.ErrorValidation, scope)
	}

	posts, err := s.repomanager.Posts(s.db).SelectRecent(ctx, feedLimit)
	if err != nil {
		return nil, err
	}

	accounts, err := s.authorAccounts(ctx, posts)
	if err != nil {
		return nil, err
	}

	graph := s.repomanager.SocialGraph(s.db)
	following, err := graph.Following(ctx, viewer)
	if err != nil {
		return nil, err
	}
	blocked, err := graph.Blocked(ctx, viewer)
	if err != nil {
		return nil, err
	}

	return feed.Resolve(viewer, scope, posts, accounts, following, blocked), nil
}

// Progress returns the viewer's own post history, newest first.
func (s *PostService) Progress(ctx context.Context, viewer string) ([]*models.Post, error) {
	return s.repomanager.Posts(s.db).SelectByAuthor(ctx, viewer)
}

// FriendProfile returns the posts on username's profile that viewer may see.
// Profiles are reachable without a follow edge (search opens them), so the
// view does not gate on following: any viewer gets the target's non-private
// posts unless the viewer has blocked the target. The owner sees everything.
func (s *PostService) FriendProfile(ctx context.Context, viewer, username string) ([]*models.Post, error) {
	posts, err := s.repomanager.Posts(s.db).SelectByAuthor(ctx, username)
	if err != nil {
		return nil, err
	}
	if viewer == username {
		return posts, nil
	}

	blocked, err := s.repomanager.SocialGraph(s.db).Blocked(ctx, viewer)
	if err != nil {
		return nil, err
	}
	for _, b := range blocked {
		if b == username {
			return []*models.Post{}, nil
		}
	}

	result := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Visibility == models.VisibilityPrivate {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// authorAccounts loads the account record for every distinct author in posts.
func (s *PostService) authorAccounts(ctx context.Context, posts []*models.Post) (map[string]*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)
	accounts := make(map[string]*models.Account)
	for _, p := range posts {
		if _, ok := accounts[p.AuthorUsername]; ok {
			continue
		}
		account, err := repo.GetByUsername(ctx, p.AuthorUsername)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			return nil, err
		}
		accounts[p.AuthorUsername] = account
	}
	return accounts, nil
}
