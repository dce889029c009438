package gateway

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dharohar/dharohar/internal/httpx"
)

var sensitivePrefixes = []string{"/api/auth", "/api/media", "/login", "/signup"}

func sensitivePath(path string) bool {
	for _, p := range sensitivePrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// BotCheck enforces the upstream proxy's bot score on sensitive paths.
// A missing or unparsable score means the proxy didn't classify the
// request and must not be treated as "definitely a bot"; only a score
// below the threshold is rejected.
func BotCheck(header string, threshold int, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sensitivePath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			raw := r.Header.Get(header)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			score, err := strconv.Atoi(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if score < threshold {
				logger.Warn("blocked likely bot",
					zap.String("path", r.URL.Path),
					zap.Int("score", score),
					zap.String("ip", ClientIPFromContext(r.Context())),
				)
				httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
					Code:    httpx.ErrForbidden,
					Message: "automated traffic is not allowed",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
