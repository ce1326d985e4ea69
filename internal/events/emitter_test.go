package events

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTransport fails the first failures calls, then succeeds.
type countingTransport struct {
	mu       sync.Mutex
	calls    int
	failures int
}

func (t *countingTransport) Publish(context.Context, string, TaskEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.calls <= t.failures {
		return errors.New("transient failure")
	}
	return nil
}

func (t *countingTransport) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

func newTestEmitter(transports ...Transport) *Emitter {
	e := NewEmitter("task-events", nil, transports...)
	e.sleep = func(time.Duration) {}
	return e
}

func TestEmitterDeliversOnFirstAttempt(t *testing.T) {
	t.Parallel()

	transport := &countingTransport{}
	e := newTestEmitter(transport)

	e.Emit(TaskCreated, 1, 42, map[string]interface{}{"title": "t"})
	e.Close()

	assert.Equal(t, 1, transport.callCount())
}

func TestEmitterRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	transport := &countingTransport{failures: 2}
	e := newTestEmitter(transport)

	e.Emit(TaskDeleted, 1, 42, nil)
	e.Close()

	assert.Equal(t, 3, transport.callCount())
}

func TestEmitterGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	transport := &countingTransport{failures: 100}
	e := newTestEmitter(transport)

	e.Emit(TaskUpdated, 1, 42, nil)
	e.Close()

	// Bounded retry: exactly maxPublishAttempts, then the event is dropped.
	assert.Equal(t, maxPublishAttempts, transport.callCount())
}

func TestEmitterFansOutToAllTransports(t *testing.T) {
	t.Parallel()

	a := &countingTransport{}
	b := &countingTransport{}
	e := newTestEmitter(a, b)

	e.Emit(TaskCompleted, 1, 42, nil)
	e.Close()

	assert.Equal(t, 1, a.callCount())
	assert.Equal(t, 1, b.callCount())
}

func TestNewTaskEventEnvelope(t *testing.T) {
	t.Parallel()

	event := NewTaskEvent(TaskCreated, 7, 42, map[string]interface{}{"title": "t"})

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, TaskCreated, event.EventType)
	assert.Equal(t, SchemaVersion, event.SchemaVersion)
	assert.Equal(t, int64(7), event.UserID)
	assert.Equal(t, int64(42), event.TaskID)

	ts, err := time.Parse(time.RFC3339, event.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)

	// Distinct events get distinct IDs.
	other := NewTaskEvent(TaskCreated, 7, 42, nil)
	assert.NotEqual(t, event.EventID, other.EventID)
	assert.NotNil(t, other.Data)
}

func TestSidecarTransportPublish(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	transport := NewSidecarTransport(srv.URL, "task-pubsub")
	event := NewTaskEvent(TaskCreated, 1, 2, nil)

	err := transport.Publish(context.Background(), "task-events", event)
	require.NoError(t, err)
	assert.Equal(t, "/v1.0/publish/task-pubsub/task-events", gotPath)
}

func TestSidecarTransportErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	transport := NewSidecarTransport(srv.URL, "task-pubsub")
	err := transport.Publish(context.Background(), "task-events", NewTaskEvent(TaskCreated, 1, 2, nil))
	assert.Error(t, err)
}
