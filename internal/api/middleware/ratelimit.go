package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/airglance/airglance/internal/api/models"
)

// RateLimit is a fixed budget of requests per client IP and window.
type RateLimit struct {
	Requests int
	Window   time.Duration

	// PerEndpoint gives every path its own budget instead of sharing one
	// across the routes the limiter is mounted on.
	PerEndpoint bool
}

// Route group budgets.
var (
	// SearchRateLimit covers type-ahead search and nearest lookups, which
	// are served from memory and called on every keystroke.
	SearchRateLimit = RateLimit{Requests: 120, Window: time.Minute, PerEndpoint: true}

	// DashboardRateLimit covers calls that may fan out to upstream providers.
	DashboardRateLimit = RateLimit{Requests: 30, Window: time.Minute}

	// StandardRateLimit covers everything else.
	StandardRateLimit = RateLimit{Requests: 100, Window: time.Minute}
)

// Handler returns the limiting middleware. Clients over budget get a 429
// problem with Retry-After set to the window length.
func (l RateLimit) Handler() func(http.Handler) http.Handler {
	keys := []httprate.KeyFunc{httprate.KeyByRealIP}
	if l.PerEndpoint {
		keys = append(keys, httprate.KeyByEndpoint)
	}

	retryAfter := strconv.Itoa(int(l.Window.Round(time.Second).Seconds()))

	return httprate.Limit(l.Requests, l.Window,
		httprate.WithKeyFuncs(keys...),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", retryAfter)
			writeProblem(w, r, models.KindTooManyRequests, "Rate limit exceeded. Please try again later.")
		}),
	)
}
