package notify

import (
	"fmt"

	"github.com/inmobiliaria/backend/internal/application/notification"
	"github.com/inmobiliaria/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Driver names accepted in notification.driver
const (
	DriverLog   = "log"
	DriverRedis = "redis"
)

// New builds the notifier selected by cfg. The redis driver needs a client;
// the caller keeps ownership of it.
func New(cfg config.NotificationConfig, client *redis.Client, logger *zap.Logger) (notification.Notifier, error) {
	switch cfg.Driver {
	case "", DriverLog:
		return NewLogNotifier(logger), nil
	case DriverRedis:
		if client == nil {
			return nil, fmt.Errorf("notify: driver %q needs a Redis connection", DriverRedis)
		}
		return NewRedisNotifier(client, WithChannel(cfg.Channel), WithLogger(logger)), nil
	default:
		return nil, fmt.Errorf("notify: unknown driver %q", cfg.Driver)
	}
}
