package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-blog-server/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
	// ContextKeyUserEmail stores the authenticated user email
	ContextKeyUserEmail ContextKey = "user_email"
)

// RequireAuth is middleware that validates a Bearer access token and injects
// the authenticated identity into the request context. It depends only on the
// auth service's token verification, not on any particular web framework.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			payload, ok := s.bearerPayload(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid or missing access token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, payload.Subject)
			ctx = context.WithValue(ctx, ContextKeyUserEmail, payload.Email)
			next(w, r.WithContext(ctx))
		}
	}
}

func (s *Server) bearerPayload(r *http.Request) (token.Payload, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return token.Payload{}, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return token.Payload{}, false
	}

	payload, err := s.auth.VerifyAccessToken(parts[1])
	if err != nil {
		s.log.Debug().Err(err).Msg("bearer token rejected")
		return token.Payload{}, false
	}
	return payload, true
}

// authenticatedUserID returns the user id injected by RequireAuth.
func authenticatedUserID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyUserID).(string)
	return id
}
