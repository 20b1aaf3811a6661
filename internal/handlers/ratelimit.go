package handlers

import (
	"net/http"
	"strconv"
)

// RateLimited wraps next with a check against h.rateLimiter, keyed by
// remote address. A nil rate limiter (Redis unset) is a no-op, matching
// the cache's graceful-degradation convention.
func (h *Handlers) RateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.rateLimiter == nil {
			next(w, r)
			return
		}

		result, err := h.rateLimiter.Check(r.Context(), r.RemoteAddr)
		if err != nil {
			next(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Minute-Remaining", strconv.Itoa(result.MinuteRemaining))
		w.Header().Set("X-RateLimit-Hour-Remaining", strconv.Itoa(result.HourRemaining))

		if !result.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next(w, r)
	}
}
