package agentapi

import (
	"net/http"
	"time"

	"github.com/zeptools/print-core/requests"
	"github.com/zeptools/print-core/responses"
	"github.com/zeptools/print-core/throttle"
)

// ThrottleWrapper rate-limits an endpoint per client IP through a shared
// throttle bucket group.
type ThrottleWrapper struct {
	Store   *throttle.BucketStore[string]
	GroupID string
}

func (tw *ThrottleWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := requests.GetClientIP(r)
		if !tw.Store.Allow(tw.GroupID, clientIP, time.Now()) {
			responses.WriteSimpleErrorJSON(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		inner.ServeHTTP(w, r)
	})
}
