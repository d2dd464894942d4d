// Package httpapi exposes the JSON-over-HTTP API consumed by the view shell.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"sweatstreak/internal/logging"
	"sweatstreak/internal/server/services"
)

type HTTPServer struct {
	address       string
	logger        logging.Logger
	accounts      *services.AccountService
	graph         *services.GraphService
	posts         *services.PostService
	notifications *services.NotificationService
	media         *services.MediaService
	jwtSecret     []byte
}

func NewHTTPServer(address string, l logging.Logger,
	accounts *services.AccountService, graph *services.GraphService,
	posts *services.PostService, notifications *services.NotificationService,
	media *services.MediaService, secretKey string) (*HTTPServer, error) {
	return &HTTPServer{
		address:       address,
		logger:        l.With("module", "http_server"),
		accounts:      accounts,
		graph:         graph,
		posts:         posts,
		notifications: notifications,
		media:         media,
		jwtSecret:     []byte(secretKey),
	}, nil
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", s.handlePing)
	mux.HandleFunc("POST /api/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	mux.Handle("GET /api/profile", s.requireAuth(s.handleGetProfile))
	mux.Handle("PUT /api/profile", s.requireAuth(s.handleUpdateProfile))
	mux.Handle("PUT /api/settings", s.requireAuth(s.handleUpdateSettings))
	mux.Handle("GET /api/users/{username}", s.requireAuth(s.handleGetUser))

	mux.Handle("POST /api/follow", s.requireAuth(s.handleFollow))
	mux.Handle("DELETE /api/follow/{username}", s.requireAuth(s.handleUnfollow))
	mux.Handle("POST /api/block", s.requireAuth(s.handleBlock))
	mux.Handle("DELETE /api/block/{username}", s.requireAuth(s.handleUnblock))

	mux.Handle("GET /api/feed", s.requireAuth(s.handleFeed))
	mux.Handle("GET /api/progress", s.requireAuth(s.handleProgress))
	mux.Handle("GET /api/users/{username}/posts", s.requireAuth(s.handleUserPosts))

	mux.Handle("POST /api/posts", s.requireAuth(s.handleCreatePost))
	mux.Handle("POST /api/posts/{id}/like", s.requireAuth(s.handleToggleLike))
	mux.Handle("POST /api/posts/{id}/comments", s.requireAuth(s.handleAddComment))

	mux.Handle("GET /api/notifications", s.requireAuth(s.handleNotifications))

	mux.Handle("POST /api/media/avatar", s.requireAuth(s.handleAvatarUpload))
	mux.Handle("POST /api/media/post-image", s.requireAuth(s.handlePostImageUpload))
	mux.Handle("GET /api/media/post-image/{key...}", s.requireAuth(s.handlePostImageDownload))

	return mux
}

func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.routes()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
