package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/chertoha/contacthub/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// requireAuth resolves the bearer token and stashes the authenticated user
// in the request context. Requests without a valid token never reach the
// wrapped handler.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		user, err := h.authn.Authenticate(r.Context(), token)
		if err != nil {
			h.respondError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit throttles per client address; exceeding the limit yields 429.
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.allow(clientAddr(r)) {
			writeJSON(w, http.StatusTooManyRequests,
				map[string]string{"error": "Request limit exceeded. Try again later."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userFrom returns the user placed in the context by requireAuth.
func userFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
