package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	PermissionError = "permission-error"
	StoreFailure    = "store-error"
)

type Handler func(ctx context.Context, e *StoreError) error

type SubscriptionID string

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Emitter is a publish/subscribe channel for store failures. Handlers run
// in registration order and are isolated from each other: an error or a
// panic in one is logged and the rest still run.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	logger   *zap.Logger
}

func NewEmitter(logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{
		handlers: make(map[string][]subscription),
		logger:   logger,
	}
}

func (e *Emitter) Subscribe(name string, h Handler) SubscriptionID {
	id := SubscriptionID(uuid.NewString())
	e.mu.Lock()
	e.handlers[name] = append(e.handlers[name], subscription{id: id, handler: h})
	e.mu.Unlock()
	return id
}

// Unsubscribe removes a handler. Unknown ids are ignored.
func (e *Emitter) Unsubscribe(name string, id SubscriptionID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.handlers[name]
	for i, s := range subs {
		if s.id == id {
			e.handlers[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(e.handlers[name]) == 0 {
		delete(e.handlers, name)
	}
}

func (e *Emitter) HandlerCount(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[name])
}

func (e *Emitter) Publish(ctx context.Context, name string, se *StoreError) {
	if se == nil {
		return
	}

	e.mu.RLock()
	subs := make([]subscription, len(e.handlers[name]))
	copy(subs, e.handlers[name])
	e.mu.RUnlock()

	for _, s := range subs {
		if err := e.invoke(ctx, s, se); err != nil {
			e.logger.Warn("event handler failed",
				zap.String("event", name),
				zap.String("subscription", string(s.id)),
				zap.Error(err),
			)
		}
	}
}

func (e *Emitter) invoke(ctx context.Context, s subscription, se *StoreError) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return s.handler(ctx, se)
}

// Report publishes se under the event its cause maps to.
func (e *Emitter) Report(ctx context.Context, se *StoreError) {
	if se == nil {
		return
	}
	e.Publish(ctx, se.EventName(), se)
}
