package debug

import (
	"net"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// ClearCache drops every cached menu listing, item and category set.
func (drm *DebugRoutesManager) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := drm.cacheService.InvalidateMenuCaches(r.Context()); err != nil {
		gecho.InternalServerError(w,
			gecho.WithMessage("error.cache.clearFailed"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.cache.cleared"),
		gecho.Send(),
	)
}

// RateLimitStatus reports the caller's counters for both buckets.
func (drm *DebugRoutesManager) RateLimitStatus(w http.ResponseWriter, r *http.Request) {
	client := r.URL.Query().Get("client")
	if client == "" {
		client = r.RemoteAddr
		if host, _, err := net.SplitHostPort(client); err == nil {
			client = host
		}
	}

	status := map[string]any{"client": client}
	for _, bucket := range []string{"read", "write"} {
		counters, err := drm.cacheService.GetRateLimitStatus(r.Context(), client, bucket)
		if err != nil {
			gecho.InternalServerError(w,
				gecho.WithMessage("error.cache.rateLimitStatusFailed"),
				gecho.Send(),
			)
			return
		}
		status[bucket] = counters
	}

	gecho.Success(w,
		gecho.WithData(status),
		gecho.Send(),
	)
}
