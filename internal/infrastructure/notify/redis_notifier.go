package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/inmobiliaria/backend/internal/application/notification"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Pub/Sub channel used when none is configured
const DefaultChannel = "inmobiliaria:notifications"

const closeTimeout = 5 * time.Second

// ErrAlreadySubscribed is returned when Subscribe is called twice on one notifier
var ErrAlreadySubscribed = errors.New("notify: subscription already running")

// Delivery is a notification as read back from the channel. The event
// payload stays raw because its concrete type is not known to subscribers.
type Delivery struct {
	notification.Notification
	Payload json.RawMessage `json:"payload"`
}

// RedisNotifier publishes notifications as JSON on a Redis Pub/Sub channel
// so dashboards and mailers can pick them up.
type RedisNotifier struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	logger     *zap.Logger

	mu       sync.Mutex
	running  bool
	cancelFn context.CancelFunc
	done     chan struct{}
}

// RedisNotifierOption configures a RedisNotifier
type RedisNotifierOption func(*RedisNotifier)

// WithChannel sets the Pub/Sub channel
func WithChannel(channel string) RedisNotifierOption {
	return func(n *RedisNotifier) {
		if channel != "" {
			n.channel = channel
		}
	}
}

// WithLogger sets the notifier logger
func WithLogger(l *zap.Logger) RedisNotifierOption {
	return func(n *RedisNotifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithOwnedClient makes Close also close the Redis client
func WithOwnedClient() RedisNotifierOption {
	return func(n *RedisNotifier) {
		n.ownsClient = true
	}
}

// NewRedisNotifier creates a notifier over an existing client
func NewRedisNotifier(client *redis.Client, opts ...RedisNotifierOption) *RedisNotifier {
	n := &RedisNotifier{
		client:  client,
		channel: DefaultChannel,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Channel returns the channel notifications are published on
func (n *RedisNotifier) Channel() string {
	return n.channel
}

// Notify publishes the notification
func (n *RedisNotifier) Notify(ctx context.Context, msg notification.Notification) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification %s: %w", msg.ID, err)
	}

	receivers, err := n.client.Publish(ctx, n.channel, data).Result()
	if err != nil {
		n.logger.Error("Failed to publish notification",
			zap.String("channel", n.channel),
			zap.String("kind", msg.Kind),
			zap.Error(err))
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	n.logger.Debug("Published notification",
		zap.String("channel", n.channel),
		zap.String("kind", msg.Kind),
		zap.Int64("receivers", receivers))
	return nil
}

// Subscribe blocks reading the channel and hands each delivery to fn
// until ctx is cancelled or Close is called.
func (n *RedisNotifier) Subscribe(ctx context.Context, fn func(Delivery)) error {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return ErrAlreadySubscribed
	}
	subCtx, cancel := context.WithCancel(ctx)
	n.running = true
	n.cancelFn = cancel
	n.done = make(chan struct{})
	done := n.done
	n.mu.Unlock()

	defer func() {
		cancel()
		n.mu.Lock()
		n.running = false
		n.cancelFn = nil
		n.mu.Unlock()
		close(done)
	}()

	pubsub := n.client.Subscribe(subCtx, n.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", n.channel, err)
	}
	n.logger.Info("Subscribed to notification channel", zap.String("channel", n.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return subCtx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			d, err := DecodeDelivery([]byte(m.Payload))
			if err != nil {
				n.logger.Warn("Dropping malformed notification", zap.Error(err))
				continue
			}
			n.dispatch(fn, d)
		}
	}
}

func (n *RedisNotifier) dispatch(fn func(Delivery), d Delivery) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Panic in notification subscriber", zap.Any("panic", r))
		}
	}()
	fn(d)
}

// Close stops a running subscription and, when owned, the client
func (n *RedisNotifier) Close() error {
	n.mu.Lock()
	cancel, done := n.cancelFn, n.done
	n.mu.Unlock()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-time.After(closeTimeout):
			n.logger.Warn("Timed out waiting for notification subscription to stop")
		}
	}
	if n.ownsClient {
		return n.client.Close()
	}
	return nil
}

// DecodeDelivery parses a published notification
func DecodeDelivery(data []byte) (Delivery, error) {
	var d Delivery
	if err := json.Unmarshal(data, &d); err != nil {
		return Delivery{}, fmt.Errorf("failed to decode notification: %w", err)
	}
	return d, nil
}

var _ notification.Notifier = (*RedisNotifier)(nil)
