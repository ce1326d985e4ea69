package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	maxPublishAttempts = 3
	retryBackoffBase   = 500 * time.Millisecond
	publishTimeout     = 5 * time.Second
)

// Emitter implements Sink with bounded-retry async delivery to one or more
// transports. Emit must only be called after the store commit succeeded,
// never before.
type Emitter struct {
	topic      string
	transports []Transport
	wg         sync.WaitGroup
	logger     *slog.Logger

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewEmitter creates an emitter publishing to topic on every transport.
func NewEmitter(topic string, logger *slog.Logger, transports ...Transport) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		topic:      topic,
		transports: transports,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Emit schedules async delivery of the event. Safe to call from any
// goroutine; never raises and never blocks on the network.
func (e *Emitter) Emit(eventType string, userID, taskID int64, data map[string]interface{}) {
	event := NewTaskEvent(eventType, userID, taskID, data)
	e.logger.Info("event emitting", "event_type", eventType, "task_id", taskID)

	for _, t := range e.transports {
		e.wg.Add(1)
		go func(t Transport) {
			defer e.wg.Done()
			e.publishWithRetry(t, event)
		}(t)
	}
}

// publishWithRetry attempts delivery with linear backoff (0.5s, 1s).
func (e *Emitter) publishWithRetry(t Transport, event TaskEvent) {
	for attempt := 1; attempt <= maxPublishAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := t.Publish(ctx, e.topic, event)
		cancel()
		if err == nil {
			return
		}
		e.logger.Warn("event publish attempt failed",
			"attempt", attempt, "max", maxPublishAttempts,
			"event_type", event.EventType, "error", err)
		if attempt < maxPublishAttempts {
			e.sleep(retryBackoffBase * time.Duration(attempt))
		}
	}
	e.logger.Error("event publish failed after retries",
		"event_type", event.EventType, "event_id", event.EventID)
}

// Close waits for in-flight deliveries to finish.
func (e *Emitter) Close() {
	e.wg.Wait()
}
