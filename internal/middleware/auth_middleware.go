package middleware

import (
	"net/http"
	"strings"

	"exam-service/pkg/jwtutil"
	"exam-service/pkg/response"
)

// AuthMiddleware resolves the bearer credential into a stable candidate
// identity before any handler runs. Handlers only ever see the resolved
// identity on the request context, never the raw credential.
type AuthMiddleware struct {
	Verifier *jwtutil.Verifier
}

func NewAuthMiddleware(verifier *jwtutil.Verifier) *AuthMiddleware {
	return &AuthMiddleware{Verifier: verifier}
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (am *AuthMiddleware) resolve(r *http.Request, w http.ResponseWriter) (*jwtutil.Claims, string, bool) {
	token := extractBearer(r)
	if token == "" {
		response.Error(w, http.StatusUnauthorized, "Missing bearer token")
		return nil, "", false
	}

	claims, err := am.Verifier.ParseAndValidate(token)
	if err != nil {
		response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
		return nil, "", false
	}

	return claims, token, true
}

// Require authenticates any candidate.
func (am *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, token, ok := am.resolve(r, w)
		if !ok {
			return
		}
		next.ServeHTTP(w, setContextValues(r, claims, token))
	})
}

// RequireRole additionally restricts to the listed roles (e.g. hr review).
func (am *AuthMiddleware) RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, token, ok := am.resolve(r, w)
			if !ok {
				return
			}
			if !contains(allowedRoles, claims.Role) {
				response.Error(w, http.StatusForbidden, "Insufficient role")
				return
			}
			next.ServeHTTP(w, setContextValues(r, claims, token))
		})
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
