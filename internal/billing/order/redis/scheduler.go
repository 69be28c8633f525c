package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"garage-client-api/internal/logger"
)

// Scheduler is the Redis-backed settlement scheduler. Schedule sets a key
// with the settlement delay as TTL; Listen subscribes to keyspace expiry
// notifications and settles the order when the key dies. Selected over the
// in-process queue via SETTLEMENT_USE_REDIS.
type Scheduler struct {
	Client *redis.Client
	Prefix string
	Delay  time.Duration
	Settle func(orderID int64) error
	Logger *logger.Logger
}

func NewScheduler(client *redis.Client, prefix string, delay time.Duration, settle func(orderID int64) error, log *logger.Logger) *Scheduler {
	return &Scheduler{
		Client: client,
		Prefix: prefix,
		Delay:  delay,
		Settle: settle,
		Logger: log,
	}
}

func (s *Scheduler) Schedule(orderID int64) {
	ctx := context.Background()
	key := fmt.Sprintf("%s%d", s.Prefix, orderID)
	if err := s.Client.Set(ctx, key, "1", s.Delay).Err(); err != nil {
		s.Logger.Error("REDIS", fmt.Sprintf("Failed to schedule settlement of order %d: %v", orderID, err))
	}
}

// Listen subscribes to expired-key events and runs settlements for keys
// carrying this scheduler's prefix.
func (s *Scheduler) Listen() {
	ctx := context.Background()

	val, err := s.Client.ConfigGet(ctx, "notify-keyspace-events").Result()
	if err != nil || len(val) < 2 || !strings.Contains(fmt.Sprint(val[1]), "E") {
		if err := s.Client.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("Failed to enable keyspace notifications: %v", err))
		} else {
			s.Logger.Info("REDIS", "Keyspace notifications enabled for expired events")
		}
	}

	channel := fmt.Sprintf("__keyevent@%d__:expired", s.Client.Options().DB)
	pubsub := s.Client.PSubscribe(ctx, channel)
	s.Logger.Info("REDIS", fmt.Sprintf("Subscribed to %s notifications", channel))

	go func() {
		for msg := range pubsub.Channel() {
			if !strings.HasPrefix(msg.Payload, s.Prefix) {
				continue
			}
			orderID, err := strconv.ParseInt(strings.TrimPrefix(msg.Payload, s.Prefix), 10, 64)
			if err != nil {
				s.Logger.Warn("REDIS", fmt.Sprintf("Ignoring malformed settlement key %q", msg.Payload))
				continue
			}
			s.Logger.Info("SETTLEMENT", fmt.Sprintf("Settlement timer expired for order %d", orderID))
			if err := s.Settle(orderID); err != nil {
				s.Logger.Error("SETTLEMENT", fmt.Sprintf("settlement of order %d failed: %v", orderID, err))
			}
		}
	}()
}
