package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/khushboocodes/QuickDesk/internal/events"
	"github.com/khushboocodes/QuickDesk/internal/service"
)

// DefaultQueueSize bounds the number of events waiting for delivery.
const DefaultQueueSize = 256

// NotificationWorker moves event delivery off the request path. It is an
// events.Dispatcher: Publish enqueues and a background goroutine hands the
// events to the wrapped dispatcher. When the queue is full the event is
// delivered inline so nothing is dropped.
type NotificationWorker struct {
	inner  events.Dispatcher
	queue  chan queued
	logger *zap.Logger

	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

type queued struct {
	ctx   context.Context
	event events.Event
}

var _ events.Dispatcher = (*NotificationWorker)(nil)

// NewNotificationWorker wraps inner with a queue of size entries.
func NewNotificationWorker(inner events.Dispatcher, size int, logger *zap.Logger) *NotificationWorker {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{inner: inner, queue: make(chan queued, size), logger: logger}
}

// StartNotificationWorker registers notification handlers and starts delivery.
func StartNotificationWorker(w *NotificationWorker, notificationService *service.NotificationService) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	w.Start()
}

// Start launches the delivery goroutine.
func (w *NotificationWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for item := range w.queue {
			w.deliver(item)
		}
	}()
}

// Stop closes the queue and waits for pending events to be delivered.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()
	w.wg.Wait()
}

// Publish enqueues event. The request context is detached so delivery
// outlives the request that produced the event.
func (w *NotificationWorker) Publish(ctx context.Context, event events.Event) error {
	item := queued{ctx: context.WithoutCancel(ctx), event: event}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return w.inner.Publish(item.ctx, event)
	}
	select {
	case w.queue <- item:
		return nil
	default:
		w.logger.Warn("notification queue full; delivering inline", zap.String("event_type", string(event.Type)))
		return w.inner.Publish(item.ctx, event)
	}
}

// Subscribe registers handler on the wrapped dispatcher.
func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.inner.Subscribe(eventType, handler)
}

func (w *NotificationWorker) deliver(item queued) {
	if err := w.inner.Publish(item.ctx, item.event); err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("event_id", item.event.ID),
			zap.String("event_type", string(item.event.Type)),
			zap.Error(err))
	}
}
