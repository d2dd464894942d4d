package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"sweatstreak/internal/common"
	"sweatstreak/internal/server/feed"
	"sweatstreak/internal/server/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

type signUpRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type accountResponse struct {
	Email                string `json:"email"`
	Username             string `json:"username"`
	Bio                  string `json:"bio"`
	AvatarURL            string `json:"avatar_url"`
	Location             string `json:"location"`
	IsPrivate            bool   `json:"is_private"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

type profileRequest struct {
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	Location  string `json:"location"`
}

type settingsRequest struct {
	IsPrivate            bool `json:"is_private"`
	NotificationsEnabled bool `json:"notifications_enabled"`
}

type followRequest struct {
	Username string `json:"username"`
}

type createPostRequest struct {
	ImageURL   string `json:"image_url"`
	Caption    string `json:"caption"`
	Visibility string `json:"visibility"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type commentResponse struct {
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type postResponse struct {
	ID            string            `json:"id"`
	Author        string            `json:"author"`
	ImageURL      string            `json:"image_url"`
	Caption       string            `json:"caption"`
	Date          string            `json:"date"`
	Visibility    string            `json:"visibility"`
	Likes         []string          `json:"likes"`
	LikedByViewer bool              `json:"liked_by_viewer"`
	Comments      []commentResponse `json:"comments"`
	CreatedAt     time.Time         `json:"created_at"`
}

type likeResponse struct {
	Liked bool `json:"liked"`
}

type notificationResponse struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type uploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

type downloadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		Email:                a.Email,
		Username:             a.Username,
		Bio:                  a.Bio,
		AvatarURL:            a.AvatarURL,
		Location:             a.Location,
		IsPrivate:            a.IsPrivate,
		NotificationsEnabled: a.NotificationsEnabled,
	}
}

func toPostResponse(p *models.Post, viewer string) postResponse {
	comments := make([]commentResponse, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, commentResponse{Username: c.Username, Text: c.Text, CreatedAt: c.CreatedAt})
	}
	likes := p.Likes
	if likes == nil {
		likes = []string{}
	}
	return postResponse{
		ID:            p.ID,
		Author:        p.AuthorUsername,
		ImageURL:      p.ImageURL,
		Caption:       p.Caption,
		Date:          p.Date,
		Visibility:    string(p.Visibility),
		Likes:         likes,
		LikedByViewer: p.LikedBy(viewer),
		Comments:      comments,
		CreatedAt:     p.CreatedAt,
	}
}

func toPostResponses(posts []*models.Post, viewer string) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p, viewer))
	}
	return out
}

func (s *HTTPServer) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(ctx, "response encoding error", "error", err.Error())
	}
}

func (s *HTTPServer) writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	s.writeJSON(ctx, w, status, errorResponse{Error: msg})
}

// writeServiceError translates sentinel errors into status codes; everything
// unrecognized is logged and reported as a 500 without leaking detail.
func (s *HTTPServer) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorWeakPassword),
		errors.Is(err, common.ErrorSelfFollow),
		errors.Is(err, common.ErrorEmptyComment):
		s.writeError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorAccountTaken),
		errors.Is(err, common.ErrorAlreadyFollowing),
		errors.Is(err, common.ErrorAlreadyPostedToday),
		errors.Is(err, common.ErrorDuplicate):
		s.writeError(ctx, w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		s.writeError(ctx, w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorInvalidCredentials),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		s.writeError(ctx, w, http.StatusUnauthorized, err.Error())
	default:
		s.logger.Error(ctx, "request failed", "error", err.Error())
		s.writeError(ctx, w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.ErrorValidation
	}
	return nil
}

func (s *HTTPServer) handlePing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *HTTPServer) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	account, err := s.accounts.SignUp(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "account created", "username", account.Username)
	s.writeJSON(r.Context(), w, http.StatusCreated, toAccountResponse(account))
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	_, pair, err := s.accounts.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	pair, err := s.accounts.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *HTTPServer) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.FindAccount(r.Context(), currentUsername(r))
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, toAccountResponse(account))
}

func (s *HTTPServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	if err := s.accounts.UpdateProfile(r.Context(), currentUsername(r), req.Bio, req.AvatarURL, req.Location); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	if err := s.accounts.UpdateSettings(r.Context(), currentUsername(r), req.IsPrivate, req.NotificationsEnabled); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.FindAccount(r.Context(), r.PathValue("username"))
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, toAccountResponse(account))
}

func (s *HTTPServer) handleFollow(w http.ResponseWriter, r *http.Request) {
	var req followRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	if err := s.graph.Follow(r.Context(), currentUsername(r), req.Username); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	if err := s.graph.Unfollow(r.Context(), currentUsername(r), r.PathValue("username")); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleBlock(w http.ResponseWriter, r *http.Request) {
	var req followRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	if err := s.graph.Block(r.Context(), currentUsername(r), req.Username); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleUnblock(w http.ResponseWriter, r *http.Request) {
	if err := s.graph.Unblock(r.Context(), currentUsername(r), r.PathValue("username")); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	scope := feed.Scope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = feed.ScopeFollowing
	}

	viewer := currentUsername(r)
	posts, err := s.posts.Feed(r.Context(), viewer, scope)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, toPostResponses(posts, viewer))
}

func (s *HTTPServer) handleProgress(w http.ResponseWriter, r *http.Request) {
	viewer := currentUsername(r)
	posts, err := s.posts.Progress(r.Context(), viewer)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, toPostResponses(posts, viewer))
}

func (s *HTTPServer) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	viewer := currentUsername(r)
	posts, err := s.posts.FriendProfile(r.Context(), viewer, r.PathValue("username"))
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, toPostResponses(posts, viewer))
}

func (s *HTTPServer) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	viewer := currentUsername(r)
	post, err := s.posts.CreatePost(r.Context(), viewer, req.ImageURL, req.Caption, models.Visibility(req.Visibility))
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "post created", "author", post.AuthorUsername, "date", post.Date)
	s.writeJSON(r.Context(), w, http.StatusCreated, toPostResponse(post, viewer))
}

func (s *HTTPServer) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	liked, err := s.posts.ToggleLike(r.Context(), r.PathValue("id"), currentUsername(r))
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, likeResponse{Liked: liked})
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	comment, err := s.posts.AddComment(r.Context(), r.PathValue("id"), currentUsername(r), req.Text)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusCreated, commentResponse{
		Username:  comment.Username,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	})
}

func (s *HTTPServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	drained, err := s.notifications.Drain(r.Context(), currentUsername(r))
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	out := make([]notificationResponse, 0, len(drained))
	for _, n := range drained {
		out = append(out, notificationResponse{Message: n.Message, CreatedAt: n.CreatedAt})
	}
	s.writeJSON(r.Context(), w, http.StatusOK, out)
}

func (s *HTTPServer) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.media.AvatarUploadURL(r.Context(), currentUsername(r))
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, uploadResponse{Key: key, UploadURL: url})
}

func (s *HTTPServer) handlePostImageUpload(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.media.PostImageUploadURL(r.Context(), currentUsername(r))
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, uploadResponse{Key: key, UploadURL: url})
}

func (s *HTTPServer) handlePostImageDownload(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		s.writeError(r.Context(), w, http.StatusBadRequest, "image key is required")
		return
	}
	url, err := s.media.PostImageURL(r.Context(), key)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, downloadResponse{Key: key, URL: url})
}
