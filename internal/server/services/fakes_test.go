package services

import (
	"context"
	"database/sql"
	"time"

	"sweatstreak/internal/common"
	"sweatstreak/internal/dbx"
	"sweatstreak/internal/server/models"
	accountsrepo "sweatstreak/internal/server/repositories/accounts"
	notificationsrepo "sweatstreak/internal/server/repositories/notifications"
	postsrepo "sweatstreak/internal/server/repositories/posts"
	refreshtokensrepo "sweatstreak/internal/server/repositories/refreshtokens"
	socialgraphrepo "sweatstreak/internal/server/repositories/socialgraph"
)

// --- fakes ---

type fakeAccountsRepo struct {
	byUsername map[string]*models.Account
	byID       map[string]*models.Account

	createErr error
	created   []*models.Account

	profileUpdates  int
	settingsUpdates int
}

func newFakeAccountsRepo(accounts ...*models.Account) *fakeAccountsRepo {
	f := &fakeAccountsRepo{
		byUsername: map[string]*models.Account{},
		byID:       map[string]*models.Account{},
	}
	for _, a := range accounts {
		f.byUsername[a.Username] = a
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byUsername[a.Username]; ok {
		return nil, common.ErrorDuplicate
	}
	a.ID = "id-" + a.Username
	f.byUsername[a.Username] = a
	f.byID[a.ID] = a
	f.created = append(f.created, a)
	return a, nil
}

func (f *fakeAccountsRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccountsRepo) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	if a, ok := f.byUsername[username]; ok {
		return a, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccountsRepo) GetByLogin(ctx context.Context, identifier string) (*models.Account, error) {
	for _, a := range f.byUsername {
		if a.Username == identifier || a.Email == identifier {
			return a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccountsRepo) UpdateProfile(ctx context.Context, username, bio, avatarURL, location string) error {
	f.profileUpdates++
	return nil
}

func (f *fakeAccountsRepo) UpdateSettings(ctx context.Context, username string, isPrivate, notificationsEnabled bool) error {
	f.settingsUpdates++
	return nil
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr    error
	deleted   []string
	createErr error
	created   []string
}

func (f *fakeRefreshRepo) Create(ctx context.Context, accountID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

type edge struct{ follower, followee string }

type fakeGraphRepo struct {
	edges     map[edge]bool
	blocked   map[edge]bool
	followErr error
}

func newFakeGraphRepo() *fakeGraphRepo {
	return &fakeGraphRepo{edges: map[edge]bool{}, blocked: map[edge]bool{}}
}

func (f *fakeGraphRepo) Follow(ctx context.Context, follower, followee string) error {
	if f.followErr != nil {
		return f.followErr
	}
	e := edge{follower, followee}
	if f.edges[e] {
		return common.ErrorDuplicate
	}
	f.edges[e] = true
	return nil
}

func (f *fakeGraphRepo) Unfollow(ctx context.Context, follower, followee string) error {
	delete(f.edges, edge{follower, followee})
	return nil
}

func (f *fakeGraphRepo) Following(ctx context.Context, username string) ([]string, error) {
	var out []string
	for e := range f.edges {
		if e.follower == username {
			out = append(out, e.followee)
		}
	}
	return out, nil
}

func (f *fakeGraphRepo) Followers(ctx context.Context, username string) ([]string, error) {
	var out []string
	for e := range f.edges {
		if e.followee == username {
			out = append(out, e.follower)
		}
	}
	return out, nil
}

func (f *fakeGraphRepo) IsFollowing(ctx context.Context, follower, followee string) (bool, error) {
	return f.edges[edge{follower, followee}], nil
}

func (f *fakeGraphRepo) Block(ctx context.Context, username, target string) error {
	f.blocked[edge{username, target}] = true
	return nil
}

func (f *fakeGraphRepo) Unblock(ctx context.Context, username, target string) error {
	delete(f.blocked, edge{username, target})
	return nil
}

func (f *fakeGraphRepo) Blocked(ctx context.Context, username string) ([]string, error) {
	var out []string
	for e := range f.blocked {
		if e.follower == username {
			out = append(out, e.followee)
		}
	}
	return out, nil
}

type likeKey struct{ postID, username string }

type fakePostsRepo struct {
	posts  map[string]*models.Post
	recent []*models.Post

	createErr error
	existsErr error

	likes    map[likeKey]bool
	comments map[string][]models.Comment
}

func newFakePostsRepo(posts ...*models.Post) *fakePostsRepo {
	f := &fakePostsRepo{
		posts:    map[string]*models.Post{},
		likes:    map[likeKey]bool{},
		comments: map[string][]models.Comment{},
	}
	for _, p := range posts {
		f.posts[p.ID] = p
		f.recent = append(f.recent, p)
	}
	return f
}

func (f *fakePostsRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.posts {
		if existing.AuthorUsername == p.AuthorUsername && existing.Date == p.Date {
			return nil, common.ErrorDuplicate
		}
	}
	p.CreatedAt = time.Now()
	f.posts[p.ID] = p
	f.recent = append([]*models.Post{p}, f.recent...)
	return p, nil
}

func (f *fakePostsRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if p, ok := f.posts[id]; ok {
		return p, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakePostsRepo) SelectRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	return f.recent, nil
}

func (f *fakePostsRepo) SelectByAuthor(ctx context.Context, author string) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range f.recent {
		if p.AuthorUsername == author {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostsRepo) ExistsForDay(ctx context.Context, author, day string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, p := range f.posts {
		if p.AuthorUsername == author && p.Date == day {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePostsRepo) HasLike(ctx context.Context, postID, username string) (bool, error) {
	return f.likes[likeKey{postID, username}], nil
}

func (f *fakePostsRepo) InsertLike(ctx context.Context, postID, username string) error {
	k := likeKey{postID, username}
	if f.likes[k] {
		return common.ErrorDuplicate
	}
	f.likes[k] = true
	return nil
}

func (f *fakePostsRepo) DeleteLike(ctx context.Context, postID, username string) error {
	delete(f.likes, likeKey{postID, username})
	return nil
}

func (f *fakePostsRepo) InsertComment(ctx context.Context, postID, username, body string) (*models.Comment, error) {
	c := models.Comment{Username: username, Text: body, CreatedAt: time.Now()}
	f.comments[postID] = append(f.comments[postID], c)
	return &c, nil
}

type fakeNotificationsRepo struct {
	log     []*models.Notification
	cursors map[string]int64
	nextID  int64

	appendErr error
}

func newFakeNotificationsRepo() *fakeNotificationsRepo {
	return &fakeNotificationsRepo{cursors: map[string]int64{}}
}

func (f *fakeNotificationsRepo) Append(ctx context.Context, recipient, message string) (*models.Notification, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	f.nextID++
	n := &models.Notification{ID: f.nextID, Recipient: recipient, Message: message, CreatedAt: time.Now()}
	f.log = append(f.log, n)
	return n, nil
}

func (f *fakeNotificationsRepo) SelectAfter(ctx context.Context, recipient string, afterID int64) ([]*models.Notification, error) {
	var out []*models.Notification
	for _, n := range f.log {
		if n.Recipient == recipient && n.ID > afterID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationsRepo) Cursor(ctx context.Context, recipient string) (int64, error) {
	return f.cursors[recipient], nil
}

func (f *fakeNotificationsRepo) AdvanceCursor(ctx context.Context, recipient string, lastSeenID int64) error {
	f.cursors[recipient] = lastSeenID
	return nil
}

type fakeRepoManager struct {
	accounts      *fakeAccountsRepo
	refreshTokens *fakeRefreshRepo
	graph         *fakeGraphRepo
	posts         *fakePostsRepo
	notifications *fakeNotificationsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository {
	return m.accounts
}
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.refreshTokens
}
func (m *fakeRepoManager) SocialGraph(db dbx.DBTX) socialgraphrepo.Repository {
	return m.graph
}
func (m *fakeRepoManager) Posts(db dbx.DBTX) postsrepo.Repository {
	return m.posts
}
func (m *fakeRepoManager) Notifications(db dbx.DBTX) notificationsrepo.Repository {
	return m.notifications
}
