package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"literacylead/internal/models"
	"literacylead/internal/security"
	"literacylead/internal/service"
)

type contextKey string

const userContextKey contextKey = "user"

// Middleware holds dependencies shared by the HTTP middleware chain.
type Middleware struct {
	authService *service.AuthService
}

// NewMiddleware creates a new middleware set.
func NewMiddleware(authService *service.AuthService) *Middleware {
	return &Middleware{authService: authService}
}

// RequireAuth gates an endpoint on a valid session cookie. Unauthenticated
// requests get a 401 JSON body, never a redirect; the frontend decides what
// to show.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session_id")
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Not authenticated", nil)
			return
		}

		user, err := m.authService.ValidateSession(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.DeleteCookie(r, "session_id"))
			respondError(w, http.StatusUnauthorized, "Not authenticated", nil)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// GetUserFromContext retrieves the authenticated user placed by RequireAuth.
func GetUserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// RateLimit rejects requests over the per-client budget with a 429.
func RateLimit(limiter *security.RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(security.ClientIP(r)) {
			respondError(w, http.StatusTooManyRequests, "Too many requests, slow down", nil)
			return
		}
		next(w, r)
	}
}

// Logging logs each request with its duration.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}
