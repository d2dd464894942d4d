package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"sweatstreak/internal/logging"
	"sweatstreak/internal/server/auth"
	"sweatstreak/internal/server/config"
	"sweatstreak/internal/server/repositories/repomanager"
	"sweatstreak/internal/server/services"
)

const testSecret = "test-secret"

type noopLogger struct{}

func (noopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (noopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (noopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (noopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l noopLogger) With(args ...any) logging.Logger                  { return l }

func duplicateKeyError() error {
	return &pgconn.PgError{Code: "23505"}
}

type testServer struct {
	srv  *HTTPServer
	mock sqlmock.Sqlmock
	db   *sql.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		SecretKey:                    testSecret,
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		AvatarBucket:                 "avatars",
		PostImageBucket:              "posts",
		S3Region:                     "us-east-1",
		S3RootUser:                   "minioadmin",
		S3RootPassword:               "minioadmin",
		S3BaseEndpoint:               "http://127.0.0.1:9000",
	}
	rm := &repomanager.PostgresRepositoryManager{}

	accounts := services.NewAccountService(db, rm, cfg)
	graph := services.NewGraphService(db, rm)
	posts := services.NewPostService(db, rm)
	notifications := services.NewNotificationService(db, rm)
	media := services.NewMediaService(cfg)

	srv, err := NewHTTPServer(":0", noopLogger{}, accounts, graph, posts, notifications, media, testSecret)
	if err != nil {
		t.Fatalf("NewHTTPServer error: %v", err)
	}
	return &testServer{srv: srv, mock: mock, db: db}
}

func (ts *testServer) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.srv.routes().ServeHTTP(rec, req)
	return rec
}

// expectAccountLookup satisfies the requireAuth account resolution.
func (ts *testServer) expectAccountLookup(username string) {
	ts.mock.ExpectQuery(`SELECT\s+.*\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "username", "password_hash", "bio", "avatar_url",
			"location", "is_private", "notifications_enabled", "created_at",
		}).AddRow("id-"+username, username+"@example.com", username, []byte("x"), "", "", "", false, true, time.Now()))
}

func accessTokenFor(t *testing.T, accountID string) string {
	t.Helper()
	token, err := auth.GenerateToken(accountID, []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return token
}

func TestPing(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/ping", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body["status"] != "OK" {
		t.Fatalf("body = %v", body)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/feed", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuth_GarbageToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/feed", "", "not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	ts := newTestServer(t)

	token, err := auth.GenerateToken("id-alice", []byte(testSecret), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	rec := ts.do(t, http.MethodGet, "/api/feed", "", token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSignUp_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/signup", "{not json", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSignUp_WeakPassword(t *testing.T) {
	ts := newTestServer(t)

	body := `{"email":"alice@example.com","username":"alice","password":"weak"}`
	rec := ts.do(t, http.MethodPost, "/api/signup", body, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSignUp_DuplicateUsername(t *testing.T) {
	ts := newTestServer(t)

	ts.mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).
		WillReturnError(duplicateKeyError())

	body := `{"email":"alice@example.com","username":"alice","password":"Sweat123"}`
	rec := ts.do(t, http.MethodPost, "/api/signup", body, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestLogin_UnknownAccount(t *testing.T) {
	ts := newTestServer(t)

	ts.mock.ExpectQuery(`SELECT\s+.*\s+FROM\s+accounts\s+WHERE\s+username\s*=\s*\$1\s+OR\s+email\s*=\s*\$1`).
		WillReturnError(sql.ErrNoRows)

	body := `{"identifier":"ghost","password":"Sweat123"}`
	rec := ts.do(t, http.MethodPost, "/api/login", body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestFollow_Self(t *testing.T) {
	ts := newTestServer(t)
	ts.expectAccountLookup("alice")

	rec := ts.do(t, http.MethodPost, "/api/follow", `{"username":"alice"}`,
		accessTokenFor(t, "id-alice"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCreatePost_MissingImage(t *testing.T) {
	ts := newTestServer(t)
	ts.expectAccountLookup("alice")

	rec := ts.do(t, http.MethodPost, "/api/posts", `{"caption":"x","visibility":"public"}`,
		accessTokenFor(t, "id-alice"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestFeed_UnknownScope(t *testing.T) {
	ts := newTestServer(t)
	ts.expectAccountLookup("alice")

	rec := ts.do(t, http.MethodGet, "/api/feed?scope=friends", "",
		accessTokenFor(t, "id-alice"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestAvatarUpload_ReturnsPresignedPut(t *testing.T) {
	ts := newTestServer(t)
	ts.expectAccountLookup("alice")

	// Presigning is local request signing; no S3 round trip happens.
	rec := ts.do(t, http.MethodPost, "/api/media/avatar", "",
		accessTokenFor(t, "id-alice"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body["key"] != "avatars/alice/avatar.png" || body["upload_url"] == "" {
		t.Fatalf("body = %v", body)
	}
}

func TestPostImageDownload_ReturnsPresignedGet(t *testing.T) {
	ts := newTestServer(t)
	ts.expectAccountLookup("alice")

	rec := ts.do(t, http.MethodGet, "/api/media/post-image/posts/alice/pic.jpg", "",
		accessTokenFor(t, "id-alice"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body["key"] != "posts/alice/pic.jpg" {
		t.Fatalf("key = %q", body["key"])
	}
	if !strings.Contains(body["url"], "posts/alice/pic.jpg") {
		t.Fatalf("url = %q", body["url"])
	}
}
