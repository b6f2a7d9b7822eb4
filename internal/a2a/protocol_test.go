package a2a

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoAgent answers every request envelope with a correlated response.
type echoAgent struct {
	name     string
	protocol *Protocol
	delay    time.Duration

	mu       sync.Mutex
	received []*Message
}

func (e *echoAgent) Name() string                     { return e.name }
func (e *echoAgent) Description() string              { return "test echo agent" }
func (e *echoAgent) Capabilities() []string           { return []string{"echo"} }
func (e *echoAgent) Active() bool                     { return true }
func (e *echoAgent) Initialize(context.Context) error { return nil }
func (e *echoAgent) Shutdown()                        {}

func (e *echoAgent) Process(ctx context.Context, action string, params map[string]any) (string, error) {
	return "echo:" + action, nil
}

func (e *echoAgent) HandleMessage(ctx context.Context, msg *Message) error {
	e.mu.Lock()
	e.received = append(e.received, msg)
	e.mu.Unlock()

	if msg.Type == MessageTypeRequest && e.protocol != nil {
		if e.delay > 0 {
			time.Sleep(e.delay)
		}
		e.protocol.SendResponse(msg.Sender, map[string]any{"echo": msg.Content}, msg.CorrelationID, PriorityNormal)
	}
	return nil
}

func (e *echoAgent) receivedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.received)
}

func startProtocol(t *testing.T) (*Protocol, *Registry) {
	t.Helper()
	reg := NewRegistry()
	p := NewProtocol("orchestrator", reg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	p.Start(ctx)
	t.Cleanup(p.Stop)
	return p, reg
}

func TestProtocol_RequestResponse(t *testing.T) {
	p, reg := startProtocol(t)
	echo := &echoAgent{name: "cost", protocol: p}
	reg.Register("cost", echo)

	resp, err := p.SendRequest(context.Background(), "cost",
		map[string]any{"action": "analyze_costs"}, time.Second, PriorityNormal)
	require.NoError(t, err)
	assert.Contains(t, resp, "echo")
}

func TestProtocol_RequestToUnregisteredTimesOut(t *testing.T) {
	p, _ := startProtocol(t)

	start := time.Now()
	_, err := p.SendRequest(context.Background(), "ghost", map[string]any{}, 100*time.Millisecond, PriorityNormal)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProtocol_ConcurrentRequestsResolveIndependently(t *testing.T) {
	p, reg := startProtocol(t)
	reg.Register("fast", &echoAgent{name: "fast", protocol: p})
	reg.Register("slow", &echoAgent{name: "slow", protocol: p, delay: 50 * time.Millisecond})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = p.SendRequest(context.Background(), "fast", map[string]any{"n": 1}, time.Second, PriorityNormal)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = p.SendRequest(context.Background(), "slow", map[string]any{"n": 2}, time.Second, PriorityNormal)
	}()
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, 0, len(p.pending))
}

func TestProtocol_NotificationDelivery(t *testing.T) {
	p, reg := startProtocol(t)
	echo := &echoAgent{name: "report"}
	reg.Register("report", echo)

	p.SendNotification("report", map[string]any{"event": "deploy_finished"}, PriorityHigh)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, echo.receivedCount())
}

func TestProtocol_BroadcastExcludesOwner(t *testing.T) {
	p, reg := startProtocol(t)
	agents := []*echoAgent{{name: "a"}, {name: "b"}, {name: "c"}}
	for _, ag := range agents {
		reg.Register(ag.name, ag)
	}
	reg.Register("orchestrator", &echoAgent{name: "orchestrator"})

	n := p.Broadcast(map[string]any{"event": "maintenance"}, PriorityNormal)
	assert.Equal(t, 3, n)

	time.Sleep(50 * time.Millisecond)
	for _, ag := range agents {
		assert.Equal(t, 1, ag.receivedCount(), "agent %s", ag.name)
	}
}

func TestProtocol_ExpiredEnvelopeNeverDelivered(t *testing.T) {
	p, reg := startProtocol(t)
	echo := &echoAgent{name: "infra"}
	reg.Register("infra", echo)

	msg := NewMessage(MessageTypeNotification, "orchestrator", "infra", nil,
		WithExpiry(time.Now().UTC().Add(-time.Minute)))
	p.Publish(msg)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, echo.receivedCount())
	assert.Equal(t, int64(1), p.Dropped())
}

func TestProtocol_UnknownRecipientDropped(t *testing.T) {
	p, _ := startProtocol(t)

	p.SendNotification("nobody", map[string]any{}, PriorityNormal)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int64(1), p.Dropped())
}

func TestProtocol_LateResponseIsNoOp(t *testing.T) {
	p, _ := startProtocol(t)

	// No pending slot exists for this correlation id.
	p.SendResponse("orchestrator", map[string]any{"late": true}, "corr-gone", PriorityNormal)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, len(p.pending))
}

func TestProtocol_HeartbeatDoesNotResolvePending(t *testing.T) {
	p, reg := startProtocol(t)
	echo := &echoAgent{name: "kubernetes"}
	reg.Register("kubernetes", echo)

	done := make(chan error, 1)
	go func() {
		_, err := p.SendRequest(context.Background(), "kubernetes", map[string]any{}, 200*time.Millisecond, PriorityNormal)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	p.BroadcastHeartbeat()

	err := <-done
	assert.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, echo.receivedCount(), 2) // request + heartbeat
}

func TestProtocol_StartStopIdempotent(t *testing.T) {
	reg := NewRegistry()
	p := NewProtocol("orchestrator", reg)

	ctx := context.Background()
	p.Start(ctx)
	p.Start(ctx)
	assert.True(t, p.Running())

	p.Stop()
	p.Stop()
	assert.False(t, p.Running())
}

func TestRegistry_RegisterUnregister(t *testing.T) {
	reg := NewRegistry()
	ag := &echoAgent{name: "cost"}

	reg.Register("cost", ag)
	reg.Register("cost", ag) // idempotent
	assert.Equal(t, 1, reg.Len())
	assert.True(t, reg.Contains("cost"))

	got, ok := reg.Get("cost")
	require.True(t, ok)
	assert.Equal(t, "cost", got.Name())

	reg.Unregister("cost")
	reg.Unregister("cost")
	assert.Equal(t, 0, reg.Len())
	assert.False(t, reg.Contains("cost"))
}

func TestRegistry_IDsSorted(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"report", "cost", "infrastructure"} {
		reg.Register(id, &echoAgent{name: id})
	}
	assert.Equal(t, []string{"cost", "infrastructure", "report"}, reg.IDs())
}
