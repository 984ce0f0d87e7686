package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wealthpath/notifications/internal/apperror"
	"github.com/wealthpath/notifications/internal/logger"
)

type contextKey string

const UserIDKey contextKey = "userID"

var errInvalidToken = errors.New("invalid token")

// AuthMiddleware requires a valid HS256 bearer token and stores its subject
// in the request context under UserIDKey.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondAppError(w, apperror.Unauthorized("missing or malformed authorization header"))
			return
		}

		userID, err := ValidateToken(token)
		if err != nil {
			respondAppError(w, apperror.Unauthorized("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = logger.WithUserID(ctx, userID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ValidateToken parses a token signed with JWT_SECRET and returns its subject.
func ValidateToken(tokenString string) (uuid.UUID, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-in-production"
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, errInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, errInvalidToken
	}
	return userID, nil
}

// GetUserID returns the authenticated user, or uuid.Nil outside AuthMiddleware.
func GetUserID(ctx context.Context) uuid.UUID {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// ServiceTokenMiddleware guards machine-to-machine endpoints such as the
// daily job trigger. An empty token disables the check.
func ServiceTokenMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := bearerToken(r)
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				respondAppError(w, apperror.Unauthorized(""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogContext copies chi's request id into the logging context.
// It must run after middleware.RequestID.
func RequestLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(logger.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
