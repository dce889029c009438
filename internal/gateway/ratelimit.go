package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"github.com/dharohar/dharohar/internal/httpx"
)

type bucket int

const (
	bucketGeneral bucket = iota
	bucketAuth
	bucketUpload
	bucketAPI
)

func (b bucket) String() string {
	switch b {
	case bucketAuth:
		return "auth"
	case bucketUpload:
		return "upload"
	case bucketAPI:
		return "api"
	default:
		return "general"
	}
}

func classify(path string) bucket {
	switch {
	case strings.HasPrefix(path, "/api/auth/"), path == "/login", path == "/signup":
		return bucketAuth
	case path == "/api/media", strings.HasPrefix(path, "/api/media/"):
		return bucketUpload
	case strings.HasPrefix(path, "/api/"):
		return bucketAPI
	default:
		return bucketGeneral
	}
}

// RateLimitPolicy carries the per-bucket request budgets, all per
// minute per client.
type RateLimitPolicy struct {
	AuthRPM    int
	UploadRPM  int
	APIRPM     int
	GeneralRPM int
}

// RateLimit throttles per client with separate budgets per path class.
// The counter store is injected: nil gets httprate's in-memory counter
// (single instance, resets on restart), and a factory can supply a
// shared Redis counter for horizontally scaled deployments. Either way
// this is a soft best-effort throttle, not a hard security boundary.
func RateLimit(policy RateLimitPolicy, newCounter func(bucket string) httprate.LimitCounter) func(http.Handler) http.Handler {
	limit := func(rpm int, name string) func(http.Handler) http.Handler {
		opts := []httprate.Option{
			httprate.WithKeyFuncs(keyByClientIP),
			httprate.WithLimitHandler(limitExceeded),
		}
		if newCounter != nil {
			opts = append(opts, httprate.WithLimitCounter(newCounter(name)))
		}
		return httprate.Limit(rpm, time.Minute, opts...)
	}

	auth := limit(policy.AuthRPM, bucketAuth.String())
	upload := limit(policy.UploadRPM, bucketUpload.String())
	api := limit(policy.APIRPM, bucketAPI.String())
	general := limit(policy.GeneralRPM, bucketGeneral.String())

	return func(next http.Handler) http.Handler {
		byBucket := map[bucket]http.Handler{
			bucketAuth:    auth(next),
			bucketUpload:  upload(next),
			bucketAPI:     api(next),
			bucketGeneral: general(next),
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			byBucket[classify(r.URL.Path)].ServeHTTP(w, r)
		})
	}
}

func keyByClientIP(r *http.Request) (string, error) {
	if ip := ClientIPFromContext(r.Context()); ip != "" {
		return ip, nil
	}
	return httprate.KeyByIP(r)
}

// limitExceeded turns httprate's rejection into the structured error
// envelope, echoing the reset metadata httprate already put on the
// response headers.
func limitExceeded(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(w, http.StatusTooManyRequests, httpx.ErrorResponse[httpx.RateLimitDetails]{
		Code:    httpx.ErrRateLimited,
		Message: "too many requests",
		Details: httpx.RateLimitDetails{
			Limit:      headerInt(w, "X-RateLimit-Limit"),
			Remaining:  headerInt(w, "X-RateLimit-Remaining"),
			ResetAt:    int64(headerInt(w, "X-RateLimit-Reset")),
			RetryAfter: headerInt(w, "Retry-After"),
		},
	})
}

func headerInt(w http.ResponseWriter, key string) int {
	n, _ := strconv.Atoi(w.Header().Get(key))
	return n
}
