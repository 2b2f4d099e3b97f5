package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ProviderHealth is a point-in-time view of one provider.
type ProviderHealth struct {
	Name         string
	CircuitState gobreaker.State
	Counts       gobreaker.Counts

	LastSuccessAt  *time.Time
	LastFailureAt  *time.Time
	LastError      string
	LastLatency    time.Duration
	StateChangedAt *time.Time
}

// Registry tracks provider clients and the outcome of their latest requests.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*tracked
	now       func() time.Time
}

type tracked struct {
	client *Client
	health ProviderHealth
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]*tracked),
		now:       time.Now,
	}
}

// Register adds or replaces the client tracked under name.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = &tracked{client: client, health: ProviderHealth{Name: name}}
}

// Observe records a request outcome. It matches Observer so the registry can
// be attached to ClientConfig.Observers. Unknown names are ignored.
func (r *Registry) Observe(name string, latency time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[name]
	if !ok {
		return
	}

	now := r.now()
	p.health.LastLatency = latency
	if err != nil {
		p.health.LastFailureAt = &now
		p.health.LastError = err.Error()
		return
	}
	p.health.LastSuccessAt = &now
}

func (r *Registry) transitioned(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		now := r.now()
		p.health.StateChangedAt = &now
	}
}

// Snapshot returns the health of every provider, sorted by name.
func (r *Registry) Snapshot() []ProviderHealth {
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.providers))
	out := make([]ProviderHealth, 0, len(r.providers))
	for _, p := range r.providers {
		clients = append(clients, p.client)
		out = append(out, p.health)
	}
	r.mu.RUnlock()

	// Breaker callbacks lock the registry, so breaker state is read unlocked.
	for i, c := range clients {
		out[i].CircuitState = c.BreakerState()
		out[i].Counts = c.BreakerCounts()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the registered provider names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
