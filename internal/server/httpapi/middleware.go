package httpapi

import (
	"context"
	"net/http"
	"strings"

	"sweatstreak/internal/server/auth"
)

type ctxKey string

const usernameKey ctxKey = "username"

// requireAuth validates the Bearer access token and resolves the calling
// account; handlers downstream read the username from the context.
func (s *HTTPServer) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(r.Context(), w, http.StatusUnauthorized, "missing token")
			return
		}

		accountID, err := auth.GetAccountIDFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(r.Context(), w, http.StatusUnauthorized, "invalid token")
			return
		}

		account, err := s.accounts.CurrentAccount(r.Context(), accountID)
		if err != nil {
			s.writeError(r.Context(), w, http.StatusUnauthorized, "unknown account")
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, account.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUsername returns the username placed in the context by requireAuth.
func currentUsername(r *http.Request) string {
	username, _ := r.Context().Value(usernameKey).(string)
	return username
}
