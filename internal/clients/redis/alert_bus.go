package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

const DefaultAlertChannel = "factdeck:alerts"

// Alert is an operator-facing notice, e.g. a history entry that could not be written.
type Alert struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
	Time    time.Time      `json:"time"`
}

type AlertBus interface {
	Publish(ctx context.Context, a Alert) error
	StartForwarder(ctx context.Context, onAlert func(a Alert)) error
	Close() error
}

type alertBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewAlertBus(log *logger.Logger, addr, channel string) (AlertBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewAlertBusFromClient(log, rdb, channel), nil
}

func NewAlertBusFromClient(log *logger.Logger, rdb *goredis.Client, channel string) AlertBus {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultAlertChannel
	}
	return &alertBus{
		log:     log.With("client", "RedisAlertBus"),
		rdb:     rdb,
		channel: channel,
	}
}

func (b *alertBus) Publish(ctx context.Context, a Alert) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis alert bus not initialized")
	}
	if a.Time.IsZero() {
		a.Time = time.Now().UTC()
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *alertBus) StartForwarder(ctx context.Context, onAlert func(a Alert)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis alert bus not initialized")
	}
	if onAlert == nil {
		return fmt.Errorf("onAlert callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var a Alert
				if err := json.Unmarshal([]byte(m.Payload), &a); err != nil {
					b.log.Warn("bad redis alert payload", "error", err)
					continue
				}
				onAlert(a)
			}
		}
	}()
	return nil
}

func (b *alertBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
