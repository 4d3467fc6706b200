package service

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"mobistay/pkg/logger"
	redisstore "mobistay/storage/redis"
)

var testLog = logger.New("test", "error")

func newTestEphemeral(t *testing.T) (*miniredis.Miniredis, *redisstore.Ephemeral) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, redisstore.NewWithClient(rdb, testLog)
}
