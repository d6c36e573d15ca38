package auth

import (
	"log"
	"net/http"
	"strings"
)

// Middleware validates bearer tokens on every route except the exempt ones.
type Middleware struct {
	Secret []byte
	Exempt []string
}

// NewMiddleware returns nil when secret is empty, which disables auth.
func NewMiddleware(secret string) *Middleware {
	if strings.TrimSpace(secret) == "" {
		return nil
	}
	return &Middleware{
		Secret: []byte(secret),
		Exempt: []string{"/health", "/metrics"},
	}
}

func (m *Middleware) isExempt(r *http.Request) bool {
	for _, p := range m.Exempt {
		if r.URL.Path == p {
			return true
		}
	}
	return false
}

func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isExempt(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := ParseJWT(extractBearer(r), m.Secret)
		if err != nil {
			log.Printf("auth rejected path=%s err=%v", r.URL.Path, err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		role, _ := NormalizeRole(claims.Role)
		ctx := WithIdentity(r.Context(), role, claims.DriverID, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
