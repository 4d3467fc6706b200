package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mobistay/config"
	"mobistay/pkg/logger"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("key not found")

// Ephemeral wraps the Redis client with the primitives the engine needs:
// TTL'd key/value for one-time codes and presence markers, a geospatial
// index for driver locations, and sorted sets for sliding rate-limit
// windows.
type Ephemeral struct {
	rdb *redis.Client
	log logger.ILogger
}

func New(ctx context.Context, cfg config.Config, log logger.ILogger) (*Ephemeral, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect Redis", logger.Error(err))
		return nil, err
	}

	log.Info("Redis connected")
	return &Ephemeral{rdb: rdb, log: log}, nil
}

// NewWithClient wires an existing client; used by tests.
func NewWithClient(rdb *redis.Client, log logger.ILogger) *Ephemeral {
	return &Ephemeral{rdb: rdb, log: log}
}

func (e *Ephemeral) Close() error {
	return e.rdb.Close()
}

func (e *Ephemeral) SetEX(ctx context.Context, key, value string, ttl time.Duration) error {
	return e.rdb.Set(ctx, key, value, ttl).Err()
}

func (e *Ephemeral) Get(ctx context.Context, key string) (string, error) {
	val, err := e.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

// GetDel atomically reads and removes a key; of two concurrent callers
// only one observes the value.
func (e *Ephemeral) GetDel(ctx context.Context, key string) (string, error) {
	val, err := e.rdb.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (e *Ephemeral) Del(ctx context.Context, keys ...string) error {
	return e.rdb.Del(ctx, keys...).Err()
}

func (e *Ephemeral) Exists(ctx context.Context, key string) (bool, error) {
	n, err := e.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

type GeoHit struct {
	Member     string
	DistanceKM float64
}

func (e *Ephemeral) GeoAdd(ctx context.Context, key, member string, lng, lat float64) error {
	return e.rdb.GeoAdd(ctx, key, &redis.GeoLocation{
		Name:      member,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

func (e *Ephemeral) GeoRemove(ctx context.Context, key, member string) error {
	return e.rdb.ZRem(ctx, key, member).Err()
}

func (e *Ephemeral) GeoRadiusKM(ctx context.Context, key string, lng, lat, radiusKM float64) ([]GeoHit, error) {
	locs, err := e.rdb.GeoRadius(ctx, key, lng, lat, &redis.GeoRadiusQuery{
		Radius:   radiusKM,
		Unit:     "km",
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, err
	}

	hits := make([]GeoHit, 0, len(locs))
	for _, l := range locs {
		hits = append(hits, GeoHit{Member: l.Name, DistanceKM: l.Dist})
	}
	return hits, nil
}

// windowAdmitScript runs one sliding-window step server-side so that the
// trim-count-record sequence is a single atomic operation: two concurrent
// checks at the last budget slot cannot both be admitted.
var windowAdmitScript = redis.NewScript(`
local cutoff = tonumber(ARGV[1]) - tonumber(ARGV[2])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', cutoff)
local count = redis.call('ZCARD', KEYS[1])
local admitted = 0
if count < tonumber(ARGV[3]) then
  redis.call('ZADD', KEYS[1], tonumber(ARGV[1]), ARGV[4] .. '-' .. count)
  redis.call('PEXPIRE', KEYS[1], tonumber(ARGV[2]))
  admitted = 1
end
local oldest = 0
local first = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
if first[2] then
  oldest = tonumber(first[2])
end
return {admitted, count, oldest}
`)

// WindowAdmit implements one sliding-window step on a sorted set: drop
// entries older than the window, count survivors, and record this request
// if it fits the budget. It returns the surviving count before admission
// and the oldest surviving timestamp (zero time when the window is empty).
func (e *Ephemeral) WindowAdmit(ctx context.Context, key string, window time.Duration, limit int, now time.Time) (admitted bool, count int, oldest time.Time, err error) {
	res, err := windowAdmitScript.Run(ctx, e.rdb, []string{key},
		now.UnixMilli(), window.Milliseconds(), limit, strconv.FormatInt(now.UnixNano(), 10)).Slice()
	if err != nil {
		return false, 0, time.Time{}, err
	}
	if len(res) != 3 {
		return false, 0, time.Time{}, fmt.Errorf("window script returned %d values", len(res))
	}

	admitted = res[0].(int64) == 1
	count = int(res[1].(int64))
	if ms := res[2].(int64); ms > 0 {
		oldest = time.UnixMilli(ms)
	}
	return admitted, count, oldest, nil
}
