package workers

import (
	"chat-sync/contract"
	"chat-sync/domain/event"
	"chat-sync/observability"
	"context"
	"log/slog"
	"sync"
	"time"
)

// ViewFanout delivers view events to every registered renderer, in publication order.
//
// A sink that does not consume an event within sinkTimeout is skipped for that
// event only. Sinks must not tear the controller down from Consume.
type ViewFanout struct {
	log         *slog.Logger
	metrics     *observability.Metrics
	events      chan event.ViewEvent
	sinkTimeout time.Duration
	mu          sync.RWMutex
	sinks       []contract.ViewSink
}

func NewViewFanout(log *slog.Logger, metrics *observability.Metrics, bufferSize int, sinkTimeout time.Duration) *ViewFanout {
	return &ViewFanout{
		log:         log,
		metrics:     metrics,
		events:      make(chan event.ViewEvent, bufferSize),
		sinkTimeout: sinkTimeout,
	}
}

func (w *ViewFanout) Add(sinks ...contract.ViewSink) *ViewFanout {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sinks = append(w.sinks, sinks...)
	return w
}

// Publish enqueues an event. It returns false when ctx ended first.
func (w *ViewFanout) Publish(ctx context.Context, evt event.ViewEvent) bool {
	select {
	case w.events <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *ViewFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping view fanout")
			return nil
		}
	}
}

// Fanout One sink for each event
func (w *ViewFanout) Fanout(ctx context.Context, evt event.ViewEvent) {
	w.mu.RLock()
	sinks := w.sinks
	w.mu.RUnlock()

	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("View sink failed", "seq", evt.Sequence(), "error", err)
			if w.metrics != nil {
				w.metrics.ViewEventsDropped.Inc()
			}
		}
		cancel()
	}
}
