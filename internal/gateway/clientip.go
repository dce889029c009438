package gateway

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type ipCtxKey struct{}

// ClientIP resolves the caller's address once per request and stashes
// it in the context for the limiter and the logs. X-Forwarded-For is
// only honored behind a trusted proxy; anyone can forge the header
// otherwise.
func ClientIP(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteIP(r)
			if trustProxy {
				if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
					first, _, _ := strings.Cut(fwd, ",")
					if first = strings.TrimSpace(first); first != "" {
						ip = first
					}
				}
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ipCtxKey{}, ip)))
		})
	}
}

func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ipCtxKey{}).(string)
	return ip
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
