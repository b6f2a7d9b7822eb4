package a2a

import (
	"context"
	"sort"
	"sync"
)

// Agent is the worker contract consumed by the protocol engine and the
// orchestrator's executor. Process must honor ctx cancellation at its own
// blocking points; a worker that never yields cannot be interrupted once
// in flight.
type Agent interface {
	Name() string
	Description() string
	Capabilities() []string
	Active() bool
	Initialize(ctx context.Context) error
	Shutdown()
	Process(ctx context.Context, action string, params map[string]any) (string, error)
	HandleMessage(ctx context.Context, msg *Message) error
}

// Registry is a live mapping from agent id to agent handle. It holds
// non-owning references; agent lifecycles belong to the orchestrator.
// Each bus/executor gets its own Registry instance so tests can run
// independent stacks side by side.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register binds an agent handle under id. Re-registering replaces the
// previous handle; envelopes already queued are unaffected.
func (r *Registry) Register(id string, ag Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[id] = ag
}

// Unregister removes an agent handle. Unknown ids are a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.agents, id)
}

// Get returns the handle registered under id.
func (r *Registry) Get(id string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ag, ok := r.agents[id]
	return ag, ok
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.agents[id]
	return ok
}

// IDs returns all registered agent ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
