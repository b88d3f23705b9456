package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

// EventHandler reacts to a published event.
type EventHandler func(ctx context.Context, ev model.Event) error

type subscription struct {
	name    string
	handler EventHandler
}

// EventBus fans decoded webhook events out to in-process subscribers.
// Nothing is persisted: an event published with no subscriber is dropped.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[model.EventKind][]subscription
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[model.EventKind][]subscription)}
}

// Subscribe registers handler for every future event of kind. name identifies
// the handler in logs.
func (b *EventBus) Subscribe(kind model.EventKind, name string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[kind] = append(b.handlers[kind], subscription{name: name, handler: handler})
}

// Publish delivers ev to every handler subscribed to its kind and waits for
// all of them. Each handler runs on its own goroutine, so a slow or failing
// handler never holds back the others. It returns the number of handlers invoked.
func (b *EventBus) Publish(ctx context.Context, ev model.Event) int {
	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[ev.Kind()]...)
	b.mu.RUnlock()

	if len(subs) == 0 {
		slog.Debug("event dropped, no subscribers", "kind", ev.Kind())
		return 0
	}

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := invoke(ctx, sub, ev); err != nil {
				slog.Error("event handler failed", "handler", sub.name, "kind", ev.Kind(), "error", err)
			}
		}()
	}
	wg.Wait()

	return len(subs)
}

func invoke(ctx context.Context, sub subscription, ev model.Event) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()
	return sub.handler(ctx, ev)
}
