package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	nexus "github.com/pixelforge/nexus"
)

type principalContextKey struct{}

// PrincipalFromContext returns the principal resolved by [Authenticate].
func PrincipalFromContext(ctx context.Context) (*nexus.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*nexus.Principal)
	return p, ok
}

// Authenticate resolves the Authorization: Bearer token on every request
// and stores the principal in the request context, rejecting with 401 when
// the header is missing or the token does not resolve. It also attaches
// the client IP for audit records downstream.
func Authenticate(engine *nexus.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeError(w, nexus.ErrInvalidToken)
				return
			}

			bearer, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, nexus.ErrInvalidToken)
				return
			}

			ctx := nexus.WithClientIP(r.Context(), clientIP(r))
			p, err := engine.ResolvePrincipal(ctx, bearer)
			if err != nil {
				writeError(w, nexus.ErrInvalidToken)
				return
			}

			ctx = context.WithValue(ctx, principalContextKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles gates a route on the resolved principal's role, rejecting
// with 403 when the role is not in the allowed set. Must run after
// [Authenticate].
func RequireRoles(roles ...nexus.Role) func(http.Handler) http.Handler {
	allowed := make(map[nexus.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, nexus.ErrInvalidToken)
				return
			}
			if _, ok := allowed[p.Role]; !ok {
				writeError(w, nexus.ErrAccessDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError renders an engine error as the JSON envelope the clients
// expect, with the status from [nexus.HTTPStatus].
func WriteError(w http.ResponseWriter, err error) {
	writeError(w, err)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(nexus.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": err.Error(),
	})
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	token := value[len(bearer):]
	if token == "" {
		return "", false
	}
	return token, true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
