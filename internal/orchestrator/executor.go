package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/a2a"
)

// AgentResult statuses. Per-agent failures become statuses, never
// errors crossing the fan-in boundary.
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusTimeout     = "timeout"
	StatusUnavailable = "unavailable"
)

// ErrNoRegistry is the only fatal executor error: without a registry the
// plan cannot be started at all.
var ErrNoRegistry = errors.New("executor: no agent registry")

// AgentResult records one plan entry's outcome.
type AgentResult struct {
	Agent     string    `json:"agent"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultGlobalTimeout bounds a whole plan execution.
const DefaultGlobalTimeout = 60 * time.Second

// Executor fans a plan out across the registry and joins the results
// under a single shared deadline.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an executor. A zero timeout selects the default.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultGlobalTimeout
	}
	return &Executor{timeout: timeout}
}

// Execute runs one concurrent invocation per plan entry and returns
// exactly one AgentResult per entry. Entries whose agent is missing or
// inactive become unavailable without scheduling work; invocations still
// outstanding at the deadline are cancelled cooperatively and recorded
// as timeouts. Sibling failures never affect each other.
func (e *Executor) Execute(ctx context.Context, plan Plan, registry *a2a.Registry, requestID string) (map[string]AgentResult, error) {
	if registry == nil {
		return nil, ErrNoRegistry
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]AgentResult, len(plan))
		wg      sync.WaitGroup
	)

	record := func(name string, res AgentResult) {
		mu.Lock()
		results[name] = res
		mu.Unlock()
	}

	for name, entry := range plan {
		ag, ok := registry.Get(name)
		if !ok || !ag.Active() {
			record(name, AgentResult{
				Agent:     name,
				Action:    entry.Action,
				Status:    StatusUnavailable,
				Error:     fmt.Sprintf("agent %s is not available", name),
				Timestamp: time.Now().UTC(),
			})
			continue
		}

		wg.Add(1)
		go func(name string, entry PlanEntry, ag a2a.Agent) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Executor] ❌ Agent %s panicked: %v", name, r)
					record(name, AgentResult{
						Agent:     name,
						Action:    entry.Action,
						Status:    StatusError,
						Error:     fmt.Sprintf("agent panicked: %v", r),
						Timestamp: time.Now().UTC(),
					})
				}
			}()

			out, err := ag.Process(execCtx, entry.Action, entry.Parameters)
			res := AgentResult{
				Agent:     name,
				Action:    entry.Action,
				Timestamp: time.Now().UTC(),
			}
			if err != nil {
				res.Status = StatusError
				res.Error = err.Error()
				log.Printf("[Executor] ❌ Agent %s failed: %v", name, err)
			} else {
				res.Status = StatusSuccess
				res.Result = out
			}
			record(name, res)
		}(name, entry, ag)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-execCtx.Done():
		log.Printf("[Executor] ⏱ Global deadline reached for request %s", requestID)
	}

	// Snapshot under the lock: stragglers finishing after the deadline
	// may still write to results, but never to the returned map.
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]AgentResult, len(plan))
	for name, entry := range plan {
		if res, ok := results[name]; ok {
			out[name] = res
			continue
		}
		out[name] = AgentResult{
			Agent:     name,
			Action:    entry.Action,
			Status:    StatusTimeout,
			Error:     fmt.Sprintf("no completion within %s", e.timeout),
			Timestamp: time.Now().UTC(),
		}
	}
	return out, nil
}
