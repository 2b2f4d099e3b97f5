// Package resilience guards calls to upstream data providers with retries and
// a circuit breaker, and keeps per-provider health for the ops endpoints.
package resilience

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker in front of one provider.
type BreakerConfig struct {
	// MinRequests is the request count below which the breaker never trips.
	MinRequests uint32

	// FailureRatio trips the breaker once at least MinRequests were made.
	FailureRatio float64

	// ProbeRequests is how many requests may pass while half-open.
	ProbeRequests uint32

	// CoolDown is how long the breaker stays open before probing again.
	CoolDown time.Duration

	// Window clears the counts periodically while closed. Zero never clears.
	Window time.Duration
}

// DefaultBreakerConfig trips after half of at least five requests fail and
// probes again after a minute.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MinRequests:   5,
		FailureRatio:  0.5,
		ProbeRequests: 1,
		CoolDown:      time.Minute,
	}
}

// Tripped reports whether counts are bad enough to open the breaker.
func (b BreakerConfig) Tripped(counts gobreaker.Counts) bool {
	if counts.Requests == 0 || counts.Requests < b.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= b.FailureRatio
}

func newBreaker(name string, b BreakerConfig, onChange func(string, gobreaker.State, gobreaker.State)) *gobreaker.CircuitBreaker[*http.Response] {
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{ //nolint:bodyclose // type param, not a response
		Name:          name,
		MaxRequests:   b.ProbeRequests,
		Interval:      b.Window,
		Timeout:       b.CoolDown,
		ReadyToTrip:   b.Tripped,
		OnStateChange: onChange,
	})
}
