package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

const (
	dailySequencePrefix = "helpdesk:ticket_seq:"
	dailySequenceTTL    = 48 * time.Hour
)

// raiseSequenceScript sets KEYS[1] to ARGV[1] when the stored value is lower or
// missing, refreshing the TTL (ARGV[2] seconds). It returns the resulting value.
var raiseSequenceScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if current < floor then
	redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
	return floor
end
return current
`)

// ErrRedisDisabled is returned by every operation when Redis is switched off.
var ErrRedisDisabled = errors.New("redis client not configured")

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration. A disabled config
// yields a Redis whose operations return ErrRedisDisabled.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if !cfg.Enabled {
		logger.Info("redis disabled; ticket numbers will come from postgres only")
		return &Redis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrRedisDisabled
	}
	return r.Client.Ping(ctx).Err()
}

// Enabled reports whether a client is configured.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}

// NextDailySequence atomically increments the counter for day and returns the new
// value. The first caller of a day seeds the key with seed's result via SETNX, so
// concurrent seeders cannot reset each other and INCR hands out distinct values.
func (r *Redis) NextDailySequence(ctx context.Context, day string, seed func(context.Context) (int64, error)) (int64, error) {
	if !r.Enabled() {
		return 0, ErrRedisDisabled
	}
	key := dailySequencePrefix + day

	exists, err := r.Client.Exists(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		start, err := seed(ctx)
		if err != nil {
			return 0, err
		}
		if err := r.Client.SetNX(ctx, key, start, dailySequenceTTL).Err(); err != nil {
			return 0, err
		}
	}
	return r.Client.Incr(ctx, key).Result()
}

// RaiseDailySequence lifts the counter for day to floor when it is lower. INCR calls
// racing with it still return distinct values.
func (r *Redis) RaiseDailySequence(ctx context.Context, day string, floor int64) error {
	if !r.Enabled() {
		return ErrRedisDisabled
	}
	key := dailySequencePrefix + day
	return raiseSequenceScript.Run(ctx, r.Client, []string{key}, floor, int64(dailySequenceTTL/time.Second)).Err()
}
