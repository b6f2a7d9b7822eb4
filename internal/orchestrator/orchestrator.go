package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/a2a"
	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/agent"
	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/redis"
)

// ErrNotRunning is returned by Process before Initialize or after
// Shutdown.
var ErrNotRunning = errors.New("orchestrator is not running")

// Options holds configuration overrides passed to New().
type Options struct {
	// GlobalTimeout bounds one whole plan execution.
	GlobalTimeout time.Duration
	// TaskRetention is how long finished task records are kept.
	TaskRetention time.Duration
	// HeartbeatInterval spaces heartbeat broadcasts; 0 disables them.
	HeartbeatInterval time.Duration
	// SubscriptionID and ClusterName flow into the default workers.
	SubscriptionID string
	ClusterName    string
	// Specs optionally restricts/configures the worker set (agents.yaml).
	Specs []agent.Spec
	// Cache optionally mirrors task records and reports.
	Cache *redis.Client
}

// Outcome is the top-level result of one processed request.
type Outcome struct {
	RequestID      string    `json:"request_id"`
	Status         string    `json:"status"` // completed | error
	Response       string    `json:"response,omitempty"`
	Error          string    `json:"error,omitempty"`
	AgentsInvolved []string  `json:"agents_involved"`
	ExecutionTime  float64   `json:"execution_time_seconds"`
	Timestamp      time.Time `json:"timestamp"`
}

// AgentStatus describes one worker for status surfaces.
type AgentStatus struct {
	Name         string   `json:"name"`
	Active       bool     `json:"active"`
	Capabilities []string `json:"capabilities"`
}

// Status is the orchestrator's externally visible state.
type Status struct {
	Running     bool                   `json:"running"`
	TotalAgents int                    `json:"total_agents"`
	ActiveTasks int                    `json:"active_tasks"`
	Agents      map[string]AgentStatus `json:"agents"`
}

// Orchestrator coordinates the specialist workers: planner → executor →
// compiler, with the a2a protocol underneath for direct agent traffic
// and the tracker observing request lifecycles.
type Orchestrator struct {
	registry *a2a.Registry
	protocol *a2a.Protocol
	planner  *Planner
	executor *Executor
	compiler *Compiler
	tracker  *Tracker

	heartbeatInterval time.Duration
	subscriptionID    string
	clusterName       string
	specs             []agent.Spec

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs an orchestrator with optional overrides. Each instance
// owns its registry, protocol and tracker so independent stacks can run
// side by side.
func New(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		GlobalTimeout:     DefaultGlobalTimeout,
		TaskRetention:     DefaultRetention,
		HeartbeatInterval: 30 * time.Second,
		SubscriptionID:    "default-subscription",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	registry := a2a.NewRegistry()
	return &Orchestrator{
		registry:          registry,
		protocol:          a2a.NewProtocol("orchestrator", registry),
		planner:           NewPlanner(),
		executor:          NewExecutor(opts.GlobalTimeout),
		compiler:          NewCompiler(),
		tracker:           NewTracker(opts.TaskRetention, opts.Cache),
		heartbeatInterval: opts.HeartbeatInterval,
		subscriptionID:    opts.SubscriptionID,
		clusterName:       opts.ClusterName,
		specs:             opts.Specs,
	}
}

// Registry exposes the agent registry (status surfaces, tests).
func (o *Orchestrator) Registry() *a2a.Registry { return o.registry }

// Protocol exposes the message bus for direct agent traffic.
func (o *Orchestrator) Protocol() *a2a.Protocol { return o.protocol }

// Tracker exposes the task lifecycle tracker.
func (o *Orchestrator) Tracker() *Tracker { return o.tracker }

// Initialize builds and registers the worker set and starts the
// protocol engine. Only setup failures propagate; everything later is
// absorbed into per-agent result statuses.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	if o.running.Load() {
		return nil
	}
	log.Println("[Orchestrator] Initializing...")

	agents := agent.FromSpecs(o.specs, o.subscriptionID, o.clusterName)
	if len(agents) == 0 {
		return fmt.Errorf("initialize: no workers enabled")
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.protocol.Start(loopCtx)

	for name, ag := range agents {
		if err := ag.Initialize(ctx); err != nil {
			cancel()
			o.protocol.Stop()
			return fmt.Errorf("initialize agent %s: %w", name, err)
		}
		if ba, ok := ag.(interface{ AttachProtocol(*a2a.Protocol) }); ok {
			ba.AttachProtocol(o.protocol)
		}
		o.registry.Register(name, ag)
	}

	if o.heartbeatInterval > 0 {
		go o.heartbeatLoop(loopCtx)
	}

	o.running.Store(true)
	log.Printf("[Orchestrator] ✅ Initialized with %d agents", o.registry.Len())
	return nil
}

// Process turns one free-text request into a compiled report. Per-agent
// failures degrade sections of the report; only a request that cannot
// be classified/executed at all yields an error outcome.
func (o *Orchestrator) Process(ctx context.Context, request string, reqCtx map[string]any) Outcome {
	requestID := uuid.NewString()
	started := time.Now()

	if !o.running.Load() {
		return Outcome{
			RequestID: requestID,
			Status:    "error",
			Error:     ErrNotRunning.Error(),
			Timestamp: time.Now().UTC(),
		}
	}

	log.Printf("[Orchestrator] Processing request %s: %s", requestID, request)
	o.tracker.Begin(requestID, request)
	defer o.tracker.PurgeExpired()

	plan := o.planner.Plan(request, reqCtx)

	results, err := o.executor.Execute(ctx, plan, o.registry, requestID)
	if err != nil {
		o.tracker.Complete(requestID, false, err.Error())
		return Outcome{
			RequestID:     requestID,
			Status:        "error",
			Error:         err.Error(),
			ExecutionTime: time.Since(started).Seconds(),
			Timestamp:     time.Now().UTC(),
		}
	}

	response := o.compiler.Compile(results, request, time.Now().UTC())
	o.tracker.Complete(requestID, true, "")

	involved := make([]string, 0, len(plan))
	for name := range plan {
		involved = append(involved, name)
	}
	sort.Strings(involved)

	return Outcome{
		RequestID:      requestID,
		Status:         "completed",
		Response:       response,
		AgentsInvolved: involved,
		ExecutionTime:  time.Since(started).Seconds(),
		Timestamp:      time.Now().UTC(),
	}
}

// Status reports orchestrator and per-agent state.
func (o *Orchestrator) Status() Status {
	agents := make(map[string]AgentStatus)
	for _, id := range o.registry.IDs() {
		if ag, ok := o.registry.Get(id); ok {
			agents[id] = AgentStatus{
				Name:         ag.Name(),
				Active:       ag.Active(),
				Capabilities: ag.Capabilities(),
			}
		}
	}
	return Status{
		Running:     o.running.Load(),
		TotalAgents: o.registry.Len(),
		ActiveTasks: o.tracker.ActiveCount(),
		Agents:      agents,
	}
}

// Shutdown stops the heartbeat loop, the protocol engine and all
// workers.
func (o *Orchestrator) Shutdown() {
	if !o.running.CompareAndSwap(true, false) {
		return
	}
	log.Println("[Orchestrator] Shutting down...")

	for _, id := range o.registry.IDs() {
		if ag, ok := o.registry.Get(id); ok {
			ag.Shutdown()
		}
		o.registry.Unregister(id)
	}

	o.cancel()
	o.protocol.Stop()
	log.Println("[Orchestrator] Shutdown complete")
}

func (o *Orchestrator) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(o.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.protocol.BroadcastHeartbeat()
		}
	}
}
