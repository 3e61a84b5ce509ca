package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	UserKey  contextKey = "user"
	EmailKey contextKey = "email"
)

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	writeError(w, http.StatusUnauthorized, message, "UNAUTHORIZED")
}

// AuthMiddleware validates bearer tokens and sets the user identity in
// context. With a JWT secret configured, tokens are verified as HS256 JWTs
// and the user ID comes from the sub claim. Without a secret the server runs
// in demo mode: any plausible token maps to the shared demo user.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeAuthError(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeAuthError(w, "invalid authorization format")
				return
			}

			userID, email, err := userFromToken(parts[1], jwtSecret)
			if err != nil {
				writeAuthError(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, userID)
			ctx = context.WithValue(ctx, EmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userFromToken(token, jwtSecret string) (string, string, error) {
	if jwtSecret == "" {
		// Demo mode: accept any non-trivial token
		if len(token) > 10 {
			return "demo-user-123", "demo@example.com", nil
		}
		return "", "", fmt.Errorf("token too short")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return "", "", fmt.Errorf("parsing token: %w", err)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", "", fmt.Errorf("token missing subject claim")
	}

	var email string
	if claims, ok := parsed.Claims.(jwt.MapClaims); ok {
		email, _ = claims["email"].(string)
	}
	return sub, email, nil
}

// GetUser retrieves the authenticated user ID from the request context
func GetUser(r *http.Request) string {
	userID, _ := r.Context().Value(UserKey).(string)
	return userID
}

// GetEmail retrieves the authenticated user's email from the request context
func GetEmail(r *http.Request) string {
	email, _ := r.Context().Value(EmailKey).(string)
	return email
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, wrapped.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// JSONContentType sets the Content-Type header to application/json
func JSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
