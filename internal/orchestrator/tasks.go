package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/redis"
)

// Task statuses.
const (
	TaskProcessing = "processing"
	TaskCompleted  = "completed"
	TaskFailed     = "failed"
)

// DefaultRetention is how long finished task records are kept.
const DefaultRetention = time.Hour

// TaskRecord tracks one top-level request's lifecycle.
type TaskRecord struct {
	RequestID string    `json:"request_id"`
	Request   string    `json:"request"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Tracker records request lifecycles and purges entries past the
// retention window. An optional redis cache mirrors records with a TTL
// equal to the retention so external surfaces can read them.
type Tracker struct {
	mu        sync.Mutex
	records   map[string]*TaskRecord
	retention time.Duration
	cache     *redis.Client
}

// NewTracker creates a tracker. Zero retention selects the default;
// cache may be nil.
func NewTracker(retention time.Duration, cache *redis.Client) *Tracker {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Tracker{
		records:   make(map[string]*TaskRecord),
		retention: retention,
		cache:     cache,
	}
}

// Begin creates a processing record for a request.
func (t *Tracker) Begin(requestID, request string) {
	rec := &TaskRecord{
		RequestID: requestID,
		Request:   request,
		Status:    TaskProcessing,
		StartTime: time.Now().UTC(),
	}
	t.mu.Lock()
	t.records[requestID] = rec
	snapshot := *rec
	t.mu.Unlock()
	t.mirror(snapshot)
}

// Complete transitions a record to completed or failed and stamps its
// end time. Unknown ids are a no-op.
func (t *Tracker) Complete(requestID string, ok bool, errMsg string) {
	t.mu.Lock()
	rec, found := t.records[requestID]
	var snapshot TaskRecord
	if found {
		rec.EndTime = time.Now().UTC()
		if ok {
			rec.Status = TaskCompleted
		} else {
			rec.Status = TaskFailed
			rec.Error = errMsg
		}
		snapshot = *rec
	}
	t.mu.Unlock()
	if found {
		t.mirror(snapshot)
	}
}

// Get returns a copy of one record.
func (t *Tracker) Get(requestID string) (TaskRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[requestID]
	if !ok {
		return TaskRecord{}, false
	}
	return *rec, true
}

// PurgeExpired removes records whose start time is older than the
// retention window. Returns the number removed.
func (t *Tracker) PurgeExpired() int {
	threshold := time.Now().UTC().Add(-t.retention)
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, rec := range t.records {
		if rec.StartTime.Before(threshold) {
			delete(t.records, id)
			removed++
		}
	}
	return removed
}

// List returns up to limit records, most recent first.
func (t *Tracker) List(limit int) []TaskRecord {
	t.mu.Lock()
	out := make([]TaskRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, *rec)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ActiveCount returns the number of records still processing.
func (t *Tracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, rec := range t.records {
		if rec.Status == TaskProcessing {
			n++
		}
	}
	return n
}

func (t *Tracker) mirror(rec TaskRecord) {
	if !t.cache.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	t.cache.SetJSON(ctx, redis.KeyTask+rec.RequestID, rec, t.retention)
}
