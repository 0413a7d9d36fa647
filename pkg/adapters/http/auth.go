package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const sessionCtxKey contextKey = "session_id"

const sessionClaim = "session_id"

var errInvalidToken = errors.New("invalid or expired token")

// issueToken signs a token that grants access to one session.
func (s *Server) issueToken(sessionID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		sessionClaim: sessionID,
		"iat":        jwt.NewNumericDate(s.now()),
		"exp":        jwt.NewNumericDate(s.now().Add(s.tokenTTL)),
	})
	return token.SignedString(s.secret)
}

// parseToken returns the session id a token grants access to.
func (s *Server) parseToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errInvalidToken
	}
	id, ok := claims[sessionClaim].(string)
	if !ok || id == "" {
		return "", errInvalidToken
	}
	return id, nil
}

// authorize requires a bearer token issued for the {id} of the route.
// Event streams may pass it as ?token= since EventSource cannot set headers.
func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("token")
		if header := r.Header.Get("Authorization"); header != "" {
			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}
			raw = parts[1]
		}
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		sessionID, err := s.parseToken(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if sessionID != chi.URLParam(r, "id") {
			writeError(w, http.StatusForbidden, "token does not grant access to this session")
			return
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionCtxKey).(string)
	return id
}

// DefaultTokenTTL bounds how long a widget may resume a session.
const DefaultTokenTTL = 24 * time.Hour
