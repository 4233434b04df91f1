package workers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	go_redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"referral-giveaway-bot/internal/common/logger"
	"referral-giveaway-bot/internal/platform/redis"
	"referral-giveaway-bot/internal/service/tickets"
)

const (
	DefaultStream = "bot:events"
	consumerGroup = "giveaway_bot_consumers"

	// EventMembershipChanged is published when a user joins or leaves a sponsor channel.
	EventMembershipChanged = "membership_changed"
	// EventRecheck asks for a fresh subscription check of one user.
	EventRecheck = "recheck"
)

// Evaluator re-checks a user's sponsor subscriptions and persists the count.
type Evaluator interface {
	EvaluateSubscription(ctx context.Context, userID int64) (bool, []tickets.ChannelStatus, error)
	ComputeTickets(ctx context.Context, userID int64) (int, error)
}

// RedisStreamWorker consumes bot events and re-evaluates affected users. It
// never changes counters itself.
type RedisStreamWorker struct {
	rdb      *redis.Client
	engine   Evaluator
	stream   string
	consumer string
	block    time.Duration
	log      zerolog.Logger
}

func NewRedisStreamWorker(rdb *redis.Client, engine Evaluator, stream, consumer string) *RedisStreamWorker {
	if stream == "" {
		stream = DefaultStream
	}
	if consumer == "" {
		consumer = "giveaway_worker_1"
	}
	return &RedisStreamWorker{
		rdb:      rdb,
		engine:   engine,
		stream:   stream,
		consumer: consumer,
		block:    5 * time.Second,
		log:      logger.Component("stream_worker"),
	}
}

// WithBlock sets how long a read waits for new entries.
func (w *RedisStreamWorker) WithBlock(d time.Duration) *RedisStreamWorker {
	w.block = d
	return w
}

// MembershipEvent builds the stream payload for a chat member update.
func MembershipEvent(userID int64, chat, status string) map[string]interface{} {
	return map[string]interface{}{
		"type":    EventMembershipChanged,
		"user_id": strconv.FormatInt(userID, 10),
		"chat":    chat,
		"status":  status,
	}
}

// RecheckEvent builds the stream payload requesting a re-evaluation.
func RecheckEvent(userID int64) map[string]interface{} {
	return map[string]interface{}{
		"type":    EventRecheck,
		"user_id": strconv.FormatInt(userID, 10),
	}
}

// Start begins listening to the Redis stream for events.
func (w *RedisStreamWorker) Start(ctx context.Context) {
	err := w.rdb.XGroupCreateMkStream(ctx, w.stream, consumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		w.log.Error().Err(err).Str("stream", w.stream).Msg("creating consumer group")
	}

	w.log.Info().Str("stream", w.stream).Str("consumer", w.consumer).Msg("starting redis stream worker")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping redis stream worker")
			return
		default:
			entries, err := w.rdb.XReadGroup(ctx, &go_redis.XReadGroupArgs{
				Group:    consumerGroup,
				Consumer: w.consumer,
				Streams:  []string{w.stream, ">"},
				Count:    10,
				Block:    w.block,
			}).Result()

			if err != nil {
				if !errors.Is(err, go_redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("reading from stream")
					time.Sleep(time.Second)
				}
				continue
			}

			for _, stream := range entries {
				for _, msg := range stream.Messages {
					if err := w.processMessage(ctx, msg.Values); err != nil {
						w.log.Warn().Err(err).Str("id", msg.ID).Msg("stream event failed")
					}
					w.rdb.XAck(ctx, w.stream, consumerGroup, msg.ID)
				}
			}
		}
	}
}

func (w *RedisStreamWorker) processMessage(ctx context.Context, values map[string]interface{}) error {
	eventType, _ := values["type"].(string)
	switch eventType {
	case EventMembershipChanged, EventRecheck:
	default:
		return nil
	}

	raw, _ := values["user_id"].(string)
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		w.log.Warn().Interface("values", values).Msg("invalid user_id in stream event")
		return nil
	}

	all, _, err := w.engine.EvaluateSubscription(ctx, userID)
	if err != nil {
		return err
	}
	total, err := w.engine.ComputeTickets(ctx, userID)
	if err != nil {
		return err
	}
	w.log.Debug().
		Int64("user_id", userID).
		Str("type", eventType).
		Bool("all_subscribed", all).
		Int("total_tickets", total).
		Msg("user re-evaluated")
	return nil
}
