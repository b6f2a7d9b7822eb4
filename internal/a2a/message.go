// Package a2a implements the agent-to-agent communication protocol:
// typed message envelopes, an agent registry, and an async protocol
// engine with request/response correlation.
package a2a

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType classifies an envelope.
type MessageType string

const (
	MessageTypeRequest      MessageType = "request"
	MessageTypeResponse     MessageType = "response"
	MessageTypeNotification MessageType = "notification"
	MessageTypeHeartbeat    MessageType = "heartbeat"
	MessageTypeError        MessageType = "error"
)

// Priority is the delivery priority of an envelope.
type Priority int

const (
	PriorityLow      Priority = 1
	PriorityNormal   Priority = 2
	PriorityHigh     Priority = 3
	PriorityCritical Priority = 4
)

// String returns the human-readable priority name.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "normal"
	}
}

// DefaultTTL is the envelope lifetime when none is given.
const DefaultTTL = 30 * time.Minute

// Message is one addressed unit of agent-to-agent communication.
// Treat it as immutable after construction.
type Message struct {
	ID            string         `json:"id"`
	Type          MessageType    `json:"type"`
	Sender        string         `json:"sender_id"`
	Recipient     string         `json:"recipient_id"`
	Content       map[string]any `json:"content"`
	Priority      Priority       `json:"priority"`
	CorrelationID string         `json:"correlation_id"`
	CreatedAt     time.Time      `json:"created_at"`
	ExpiresAt     time.Time      `json:"expires_at"`
}

// MessageOption customizes a Message at construction time.
type MessageOption func(*Message)

// WithPriority sets the envelope priority.
func WithPriority(p Priority) MessageOption {
	return func(m *Message) { m.Priority = p }
}

// WithCorrelationID links the envelope to an earlier request.
func WithCorrelationID(id string) MessageOption {
	return func(m *Message) {
		if id != "" {
			m.CorrelationID = id
		}
	}
}

// WithTTL overrides the default 30-minute lifetime.
func WithTTL(ttl time.Duration) MessageOption {
	return func(m *Message) { m.ExpiresAt = m.CreatedAt.Add(ttl) }
}

// WithExpiry sets an absolute expiry time.
func WithExpiry(t time.Time) MessageOption {
	return func(m *Message) { m.ExpiresAt = t }
}

// NewMessage builds an envelope with a fresh id, a fresh correlation id
// and the default TTL unless options say otherwise.
func NewMessage(msgType MessageType, sender, recipient string, content map[string]any, opts ...MessageOption) *Message {
	now := time.Now().UTC()
	m := &Message{
		ID:            uuid.NewString(),
		Type:          msgType,
		Sender:        sender,
		Recipient:     recipient,
		Content:       content,
		Priority:      PriorityNormal,
		CorrelationID: uuid.NewString(),
		CreatedAt:     now,
		ExpiresAt:     now.Add(DefaultTTL),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Expired reports whether the envelope's TTL has elapsed.
func (m *Message) Expired() bool {
	return time.Now().UTC().After(m.ExpiresAt)
}

// ToMap converts the envelope to a plain map for logging or transport.
// The conversion is lossless: FromMap(ToMap(m)) equals m.
func (m *Message) ToMap() map[string]any {
	return map[string]any{
		"id":             m.ID,
		"type":           string(m.Type),
		"sender_id":      m.Sender,
		"recipient_id":   m.Recipient,
		"content":        m.Content,
		"priority":       int(m.Priority),
		"correlation_id": m.CorrelationID,
		"created_at":     m.CreatedAt.Format(time.RFC3339Nano),
		"expires_at":     m.ExpiresAt.Format(time.RFC3339Nano),
	}
}

// FromMap reconstructs an envelope from its map representation.
func FromMap(data map[string]any) (*Message, error) {
	m := &Message{}

	var ok bool
	if m.ID, ok = data["id"].(string); !ok {
		return nil, fmt.Errorf("message map: missing id")
	}
	typ, ok := data["type"].(string)
	if !ok {
		return nil, fmt.Errorf("message map: missing type")
	}
	switch MessageType(typ) {
	case MessageTypeRequest, MessageTypeResponse, MessageTypeNotification, MessageTypeHeartbeat, MessageTypeError:
		m.Type = MessageType(typ)
	default:
		return nil, fmt.Errorf("message map: unknown type %q", typ)
	}

	m.Sender, _ = data["sender_id"].(string)
	m.Recipient, _ = data["recipient_id"].(string)
	m.Content, _ = data["content"].(map[string]any)
	m.CorrelationID, _ = data["correlation_id"].(string)

	switch p := data["priority"].(type) {
	case int:
		m.Priority = Priority(p)
	case float64: // JSON numbers decode as float64
		m.Priority = Priority(int(p))
	default:
		m.Priority = PriorityNormal
	}

	var err error
	if m.CreatedAt, err = parseTimestamp(data["created_at"]); err != nil {
		return nil, fmt.Errorf("message map: created_at: %w", err)
	}
	if m.ExpiresAt, err = parseTimestamp(data["expires_at"]); err != nil {
		return nil, fmt.Errorf("message map: expires_at: %w", err)
	}
	return m, nil
}

func parseTimestamp(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("not a string: %v", v)
	}
	return time.Parse(time.RFC3339Nano, s)
}
