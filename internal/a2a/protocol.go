package a2a

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTimeout is returned by SendRequest when no correlated response
// arrives within the caller's timeout.
var ErrTimeout = errors.New("request timed out")

// queueSize bounds the outbound envelope queue.
const queueSize = 256

// Protocol is the in-process message bus. It owns a FIFO queue of
// outbound envelopes, a single dispatch loop delivering them to
// registered agents, and the pending-request table that routes response
// envelopes back to suspended SendRequest callers.
//
// A Protocol belongs to one owner (usually the orchestrator); the typed
// send methods stamp the owner id as sender. Workers addressing each
// other directly build their own envelopes and use Publish.
type Protocol struct {
	ownerID  string
	registry *Registry

	queue chan *Message

	mu      sync.Mutex
	pending map[string]chan map[string]any

	cancel  context.CancelFunc
	running atomic.Bool
	dropped atomic.Int64
}

// NewProtocol creates a protocol engine bound to an explicit registry.
func NewProtocol(ownerID string, registry *Registry) *Protocol {
	return &Protocol{
		ownerID:  ownerID,
		registry: registry,
		queue:    make(chan *Message, queueSize),
		pending:  make(map[string]chan map[string]any),
	}
}

// Start launches the dispatch loop. Idempotent.
func (p *Protocol) Start(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	go p.dispatchLoop(loopCtx)
	log.Printf("[A2A] Protocol started for %s", p.ownerID)
}

// Stop halts the dispatch loop. Queued envelopes are discarded.
func (p *Protocol) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	p.cancel()
	log.Printf("[A2A] Protocol stopped for %s", p.ownerID)
}

// Running reports whether the dispatch loop is active.
func (p *Protocol) Running() bool {
	return p.running.Load()
}

// Dropped returns the number of envelopes dropped so far
// (expired TTL or unknown recipient).
func (p *Protocol) Dropped() int64 {
	return p.dropped.Load()
}

// QueueSize returns the number of envelopes waiting for dispatch.
func (p *Protocol) QueueSize() int {
	return len(p.queue)
}

// Publish enqueues an envelope for dispatch.
func (p *Protocol) Publish(msg *Message) {
	p.queue <- msg
}

// SendNotification enqueues a fire-and-forget notification.
func (p *Protocol) SendNotification(recipient string, content map[string]any, priority Priority) {
	p.Publish(NewMessage(MessageTypeNotification, p.ownerID, recipient, content, WithPriority(priority)))
}

// Broadcast enqueues one notification per registered agent other than
// the owner. Returns the number of envelopes enqueued.
func (p *Protocol) Broadcast(content map[string]any, priority Priority) int {
	n := 0
	for _, id := range p.registry.IDs() {
		if id == p.ownerID {
			continue
		}
		p.SendNotification(id, content, priority)
		n++
	}
	return n
}

// BroadcastHeartbeat enqueues a heartbeat envelope per registered agent.
func (p *Protocol) BroadcastHeartbeat() {
	content := map[string]any{"ts": time.Now().UTC().Format(time.RFC3339)}
	for _, id := range p.registry.IDs() {
		if id == p.ownerID {
			continue
		}
		p.Publish(NewMessage(MessageTypeHeartbeat, p.ownerID, id, content, WithPriority(PriorityLow)))
	}
}

// SendRequest enqueues a request envelope and suspends the caller until
// a response with the same correlation id arrives or timeout elapses.
// Exactly one of the two resolves the pending slot; a response arriving
// after the timeout is dropped by the dispatch loop.
func (p *Protocol) SendRequest(ctx context.Context, recipient string, content map[string]any, timeout time.Duration, priority Priority) (map[string]any, error) {
	msg := NewMessage(MessageTypeRequest, p.ownerID, recipient, content, WithPriority(priority))

	slot := make(chan map[string]any, 1)
	p.mu.Lock()
	p.pending[msg.CorrelationID] = slot
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.pending, msg.CorrelationID)
		p.mu.Unlock()
	}()

	p.Publish(msg)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-slot:
		return resp, nil
	case <-timer.C:
		return nil, fmt.Errorf("request to %s: %w", recipient, ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SendResponse enqueues a response envelope carrying the given
// correlation id. If the original caller already timed out, the
// dispatch loop drops it silently.
func (p *Protocol) SendResponse(recipient string, content map[string]any, correlationID string, priority Priority) {
	p.Publish(NewMessage(MessageTypeResponse, p.ownerID, recipient, content,
		WithPriority(priority), WithCorrelationID(correlationID)))
}

// dispatchLoop drains the queue until ctx is cancelled. One envelope's
// delivery failure never stops the loop.
func (p *Protocol) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.queue:
			p.deliver(ctx, msg)
		}
	}
}

func (p *Protocol) deliver(ctx context.Context, msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[A2A] ❌ Panic delivering %s to %s: %v", msg.Type, msg.Recipient, r)
		}
	}()

	if msg.Expired() {
		p.dropped.Add(1)
		log.Printf("[A2A] ⚠️ Dropping expired %s %s → %s", msg.Type, msg.ID, msg.Recipient)
		return
	}

	// Responses resolve the matching pending request; late or duplicate
	// responses have no slot and are dropped.
	if msg.Type == MessageTypeResponse {
		p.mu.Lock()
		slot, ok := p.pending[msg.CorrelationID]
		p.mu.Unlock()
		if ok {
			select {
			case slot <- msg.Content:
			default: // slot already resolved
			}
		}
		return
	}

	ag, ok := p.registry.Get(msg.Recipient)
	if !ok {
		p.dropped.Add(1)
		log.Printf("[A2A] ⚠️ Recipient %s not registered, dropping %s", msg.Recipient, msg.ID)
		return
	}

	if err := ag.HandleMessage(ctx, msg); err != nil {
		log.Printf("[A2A] ❌ Delivery to %s failed: %v", msg.Recipient, err)
	}
}
