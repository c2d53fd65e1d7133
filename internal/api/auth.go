package api

import (
	"crypto/subtle"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"salonbook/internal/config"
	"salonbook/internal/domain"

	"golang.org/x/time/rate"
)

// HTTPAuth validates the API key header and applies a per-key rate
// limit. With auth disabled the limiter keys on the remote address.
// Wizard routes are limited through the shared StateRepository when one
// is provided, so the counters survive restarts and are shared across
// instances while Redis is up; other routes use an in-process limiter.
type HTTPAuth struct {
	cfg      config.APIConfig
	clients  map[string]config.APIClientKey
	states   domain.StateRepository
	limiters sync.Map // map[string]*rate.Limiter
}

func NewHTTPAuth(cfg config.APIConfig, states domain.StateRepository) *HTTPAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}
	return &HTTPAuth{cfg: cfg, clients: m, states: states}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		limiterKey := r.RemoteAddr

		if a.cfg.Auth.Enabled {
			client, err := a.checkAuth(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			limiterKey = client.Name
		}

		if a.cfg.RateLimit.RPS > 0 && !a.allow(r, limiterKey) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) allow(r *http.Request, key string) bool {
	if a.states != nil && strings.HasPrefix(r.URL.Path, "/api/v1/wizard/") {
		limit := int(math.Round(a.cfg.RateLimit.RPS * 60))
		if limit < 1 {
			limit = 1
		}
		allowed, err := a.states.CheckRateLimit(r.Context(), "api_rate:"+key, limit, time.Minute)
		if err == nil {
			return allowed
		}
		// Both repositories are unreachable; the in-process limiter
		// still protects this instance.
	}
	return a.getLimiter(key).Allow()
}

func (a *HTTPAuth) checkAuth(r *http.Request) (config.APIClientKey, error) {
	header := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if header == "" {
		header = "x-api-key"
	}

	apiKey := strings.TrimSpace(r.Header.Get(header))
	if apiKey == "" {
		return config.APIClientKey{}, fmt.Errorf("missing api key header")
	}

	for key, client := range a.clients {
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			return client, nil
		}
	}
	return config.APIClientKey{}, fmt.Errorf("invalid api key")
}

func (a *HTTPAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	actual, _ := a.limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter)
}
