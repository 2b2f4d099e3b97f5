package resilience

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned without contacting the provider while its
// breaker is open or saturated with half-open probes.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for a provider HTTP client.
type ClientConfig struct {
	// Name identifies the provider in logs, metrics and the registry.
	Name string

	// Timeout bounds each individual attempt (default: 10s).
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt (default: 3).
	MaxRetries uint64

	// InitialInterval and MaxInterval bound the exponential backoff
	// (defaults: 100ms and 5s). MaxInterval also caps Retry-After waits.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// Breaker tunes the circuit breaker. The zero value uses DefaultBreakerConfig.
	Breaker BreakerConfig

	// Registry, when set, tracks this client's health under Name.
	Registry *Registry

	// Observers are called once per Do with the final outcome. A final 5xx
	// response counts as a failure.
	Observers []Observer

	// Logger receives breaker state transitions.
	Logger zerolog.Logger
}

// Observer receives the outcome of a provider request.
type Observer func(name string, duration time.Duration, err error)

// DefaultClientConfig returns the settings used for Open-Meteo endpoints.
func DefaultClientConfig(name string) ClientConfig {
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Breaker:         DefaultBreakerConfig(),
		Logger:          zerolog.Nop(),
	}
}

// Client is an HTTP client for one upstream provider. 5xx responses, network
// errors and 429s are retried with exponential backoff; other responses are
// returned as-is.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewClient creates a provider client, registering it when cfg.Registry is set.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.Breaker == (BreakerConfig{}) {
		cfg.Breaker = DefaultBreakerConfig()
	}

	c := &Client{
		http: &http.Client{Timeout: cfg.Timeout},
	}
	c.breaker = newBreaker(cfg.Name, cfg.Breaker, c.stateChanged)

	if cfg.Registry != nil {
		cfg.Observers = append(cfg.Observers, cfg.Registry.Observe)
		cfg.Registry.Register(cfg.Name, c)
	}
	c.cfg = cfg

	return c
}

func (c *Client) stateChanged(name string, from, to gobreaker.State) {
	event := c.cfg.Logger.Warn()
	if to == gobreaker.StateClosed {
		event = c.cfg.Logger.Info()
	}
	event.
		Str("provider", name).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("provider circuit breaker changed state")

	if c.cfg.Registry != nil {
		c.cfg.Registry.transitioned(name)
	}
}

// Do sends req, retrying transient failures until MaxRetries is exhausted or
// the request context ends. When retries run out on a 5xx or 429 the last
// response is returned with a nil error so callers can inspect it.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.do(req)

	outcome := err
	if err == nil && resp.StatusCode >= http.StatusInternalServerError {
		outcome = &StatusError{StatusCode: resp.StatusCode}
	}
	for _, observe := range c.cfg.Observers {
		observe(c.cfg.Name, time.Since(start), outcome)
	}

	return resp, err
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.cfg.InitialInterval
	exp.MaxInterval = c.cfg.MaxInterval
	exp.MaxElapsedTime = 0
	policy := &retryPolicy{BackOff: exp, limit: c.cfg.MaxInterval}

	var last *http.Response
	attempt := func() error {
		if last != nil {
			discard(last)
			last = nil
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // closed by the caller or discard
			r, err := c.http.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= http.StatusInternalServerError {
				return r, &StatusError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrCircuitOpen)
		}
		last = resp
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			policy.wait = retryAfter(resp.Header.Get("Retry-After"), time.Now())
			return &StatusError{StatusCode: resp.StatusCode}
		}
		return nil
	}

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(policy, c.cfg.MaxRetries), ctx))
	if err != nil && last != nil {
		return last, nil
	}
	return last, err
}

// retryPolicy stretches the next backoff to honor a Retry-After hint.
type retryPolicy struct {
	backoff.BackOff
	wait  time.Duration
	limit time.Duration
}

func (p *retryPolicy) NextBackOff() time.Duration {
	next := p.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if p.wait > next {
		next = min(p.wait, p.limit)
	}
	p.wait = 0
	return next
}

// retryAfter parses a Retry-After header given either as seconds or as an
// HTTP date. Unparseable or past values yield zero.
func retryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// discard drains and closes a response that will not reach the caller so the
// connection can be reused.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

// StatusError reports an upstream response treated as a failure.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return "upstream returned " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.cfg.Name
}

// BreakerState returns the current circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// BreakerCounts returns the circuit breaker counters for the current window.
func (c *Client) BreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}
