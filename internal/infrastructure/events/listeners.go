package events

import (
	"context"
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const RedisChannel = "channel:system:store-errors"

func LogListener(logger *zap.Logger) Handler {
	return func(ctx context.Context, e *StoreError) error {
		logger.Error(e.DebugMessage(),
			zap.String("path", e.Path),
			zap.String("operation", e.Operation),
			zap.String("userId", e.UserID),
			zap.Any("requestResourceData", e.RequestPayload),
			zap.Error(e.Err),
		)
		return nil
	}
}

func NewStoreErrorCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tijuanashop_store_errors_total",
		Help: "Store operations that failed, by event and operation.",
	}, []string{"event", "operation"})
	if reg != nil {
		reg.MustRegister(counter)
	}
	return counter
}

func MetricsListener(counter *prometheus.CounterVec) Handler {
	return func(ctx context.Context, e *StoreError) error {
		counter.WithLabelValues(e.EventName(), e.Operation).Inc()
		return nil
	}
}

type forwardedEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
	*StoreError
}

// RedisForwarder publishes every event as JSON so other instances and
// tools can follow store failures.
func RedisForwarder(rdb *redis.Client, channel string) Handler {
	if channel == "" {
		channel = RedisChannel
	}
	return func(ctx context.Context, e *StoreError) error {
		payload, err := json.Marshal(forwardedEvent{
			Event:      e.EventName(),
			Message:    e.DebugMessage(),
			StoreError: e,
		})
		if err != nil {
			return err
		}
		return rdb.Publish(ctx, channel, payload).Err()
	}
}

type Notifier interface {
	SendToUser(userID string, payload []byte)
}

// NotifyListener pushes the failure to the acting user's open sockets.
func NotifyListener(n Notifier) Handler {
	return func(ctx context.Context, e *StoreError) error {
		if e.UserID == "" {
			return nil
		}
		payload, err := json.Marshal(map[string]interface{}{
			"type":      e.EventName(),
			"message":   e.DebugMessage(),
			"path":      e.Path,
			"operation": e.Operation,
		})
		if err != nil {
			return err
		}
		n.SendToUser(e.UserID, payload)
		return nil
	}
}

// Attach subscribes h to both failure events and returns the ids.
func (e *Emitter) Attach(h Handler) []SubscriptionID {
	return []SubscriptionID{
		e.Subscribe(PermissionError, h),
		e.Subscribe(StoreFailure, h),
	}
}
