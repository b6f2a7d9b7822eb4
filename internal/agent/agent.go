// Package agent provides the specialist DevOps workers and the shared
// BaseAgent plumbing they are built on.
//
// Each worker exposes a fixed action surface through Process and answers
// direct agent-to-agent requests through HandleMessage. Cloud transports
// are out of scope; workers serve deterministic snapshots at the same
// interface the real adapters would.
package agent

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/a2a"
	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/utils"
)

// ProcessFunc dispatches one (action, parameters) call.
type ProcessFunc func(ctx context.Context, action string, params map[string]any) (string, error)

// BaseAgent carries the identity, lifecycle and messaging behavior
// shared by all workers. Concrete workers supply their ProcessFunc.
type BaseAgent struct {
	id           string
	name         string
	description  string
	capabilities []string

	active   atomic.Bool
	protocol *a2a.Protocol
	process  ProcessFunc
}

// NewBaseAgent creates the shared agent core.
func NewBaseAgent(name, description string, capabilities []string, process ProcessFunc) *BaseAgent {
	return &BaseAgent{
		id:           uuid.NewString(),
		name:         name,
		description:  description,
		capabilities: capabilities,
		process:      process,
	}
}

// ID returns the agent's unique id.
func (b *BaseAgent) ID() string { return b.id }

// Name returns the agent's registry name.
func (b *BaseAgent) Name() string { return b.name }

// Description returns the one-line agent description.
func (b *BaseAgent) Description() string { return b.description }

// Capabilities returns a copy of the agent's capability list.
func (b *BaseAgent) Capabilities() []string {
	out := make([]string, len(b.capabilities))
	copy(out, b.capabilities)
	return out
}

// Active reports whether the agent has been initialized and not shut down.
func (b *BaseAgent) Active() bool { return b.active.Load() }

// AttachProtocol wires the agent to the message bus so HandleMessage can
// answer requests. Must be called before the dispatch loop delivers to
// this agent.
func (b *BaseAgent) AttachProtocol(p *a2a.Protocol) { b.protocol = p }

// Initialize marks the agent active.
func (b *BaseAgent) Initialize(ctx context.Context) error {
	b.active.Store(true)
	log.Printf("[Agent] ✅ Initialized %s", b.name)
	return nil
}

// Shutdown marks the agent inactive.
func (b *BaseAgent) Shutdown() {
	b.active.Store(false)
	log.Printf("[Agent] Shut down %s", b.name)
}

// Process runs one action. Inactive agents refuse work.
func (b *BaseAgent) Process(ctx context.Context, action string, params map[string]any) (string, error) {
	if !b.Active() {
		return "", fmt.Errorf("agent %s is not active", b.name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.process(ctx, action, params)
}

// HandleMessage receives an envelope from the dispatch loop. Request
// envelopes are executed and answered with a correlated response;
// heartbeats and notifications are acknowledged silently.
func (b *BaseAgent) HandleMessage(ctx context.Context, msg *a2a.Message) error {
	switch msg.Type {
	case a2a.MessageTypeRequest:
		action, _ := msg.Content["action"].(string)
		params, _ := msg.Content["parameters"].(map[string]any)

		content := map[string]any{
			"agent":     b.name,
			"action":    action,
			"timestamp": utils.Timestamp(),
		}
		result, err := b.Process(ctx, action, params)
		if err != nil {
			content["status"] = "error"
			content["error"] = err.Error()
		} else {
			content["status"] = "success"
			content["result"] = result
		}

		if b.protocol != nil {
			b.protocol.Publish(a2a.NewMessage(a2a.MessageTypeResponse, b.name, msg.Sender, content,
				a2a.WithCorrelationID(msg.CorrelationID),
				a2a.WithPriority(msg.Priority)))
		}
		return nil

	case a2a.MessageTypeHeartbeat:
		return nil

	default:
		log.Printf("[Agent] %s received %s from %s", b.name, msg.Type, msg.Sender)
		return nil
	}
}

// errUnknownAction builds the error every worker returns for an action
// outside its surface.
func errUnknownAction(agent, action string) error {
	return fmt.Errorf("%s: unknown action %q", agent, action)
}

// stringParam reads a string parameter with a fallback.
func stringParam(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
