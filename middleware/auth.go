package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userContextKey contextKey = "user"

const (
	jwtClaimUserID = "user_id"
	jwtClaimName   = "name"
)

var ErrNoUserInContext = errors.New("user claims not found in context")

// Authenticate rejects requests without a valid HS256 bearer token and stores
// the token claims in the request context.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, keyFunc)
			if err != nil || !token.Valid {
				unauthorized(w, "invalid or expired token")
				return
			}
			if _, err := userIDFromClaims(claims); err != nil {
				unauthorized(w, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetUserIDFromContext returns the user_id claim of the authenticated caller.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", ErrNoUserInContext
	}
	return userIDFromClaims(claims)
}

func userIDFromClaims(claims jwt.MapClaims) (string, error) {
	raw, ok := claims[jwtClaimUserID]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}

	var id string
	switch v := raw.(type) {
	case string:
		id = strings.TrimSpace(v)
	case float64:
		if v != float64(int64(v)) {
			return "", fmt.Errorf("'%s' claim is not an integer: %f", jwtClaimUserID, v)
		}
		id = strconv.FormatInt(int64(v), 10)
	default:
		return "", fmt.Errorf("invalid type for '%s' claim: %T", jwtClaimUserID, raw)
	}
	if id == "" {
		return "", fmt.Errorf("empty '%s' claim", jwtClaimUserID)
	}
	return id, nil
}

// IssueToken signs an HS256 token for userID valid for ttl from now.
func IssueToken(secret []byte, userID, name string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		jwtClaimUserID: userID,
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	}
	if name != "" {
		claims[jwtClaimName] = name
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
