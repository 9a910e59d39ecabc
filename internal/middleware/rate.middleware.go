package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"exam-service/pkg/cache"
	"exam-service/pkg/response"
)

// RateLimiter throttles per candidate (or per IP before authentication).
// Fails open when redis is unavailable so a cache outage never blocks an
// exam in progress.
func RateLimiter(store *cache.Cache, limit int, window, blockDuration time.Duration, keyPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.Background()

			// 1. Prefer candidate identity if authenticated
			var clientID string
			candidateID := r.Context().Value(ContextCandidateID)
			if idStr, ok := candidateID.(string); ok && idStr != "" {
				clientID = "cid:" + idStr
			} else {
				// 2. Fallback: IP (check proxy headers first)
				ip := r.Header.Get("X-Forwarded-For")
				if ip == "" {
					ip = r.RemoteAddr
				}
				clientID = "ip:" + strings.Split(ip, ",")[0]
			}

			blockKey := clientID + ":blocked"

			// Check if already blocked
			blocked, _ := store.Get(ctx, keyPrefix, blockKey)
			if blocked == "1" {
				ttl, _ := store.GetTTL(ctx, keyPrefix, blockKey)
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Try again in "+ttl.String())
				return
			}

			count, err := store.IncrWithExpire(ctx, keyPrefix, clientID, window)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Over the limit
			if count > int64(limit) {
				_ = store.Set(ctx, keyPrefix, blockKey, "1", blockDuration)
				w.Header().Set("Retry-After", strconv.Itoa(int(blockDuration.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Blocked for "+blockDuration.String())
				return
			}

			ttl, _ := store.GetTTL(ctx, keyPrefix, clientID)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-int(count)))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

			next.ServeHTTP(w, r)
		})
	}
}
