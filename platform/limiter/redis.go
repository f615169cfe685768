package limiter

import (
	"time"

	"github.com/gomodule/redigo/redis"

	predis "github.com/jhlee0409/sidedish-sub001/platform/redis"
)

type redisLimiter struct {
	pool   *redis.Pool
	prefix string
}

// Redis returns a Limiter implementation backed by a shared Redis counter
// with expiry, for deployments where the quota must hold across instances.
// The window is fixed, not sliding: it starts with the first counted request
// and the whole quota frees up at once when the key expires.
func Redis(pool *redis.Pool, prefix string) Limiter {
	return &redisLimiter{
		pool:   pool,
		prefix: prefix,
	}
}

func (l *redisLimiter) Check(key string, config Config) (Result, error) {
	conn := l.pool.Get()
	defer conn.Close()

	composite := compositeKey(key, config)
	if l.prefix != "" {
		composite = l.prefix + ":" + composite
	}

	quota, err := getQuota(conn, composite)
	if err != nil {
		return Result{}, err
	}

	ttl, err := getTTL(conn, composite)
	if err != nil {
		return Result{}, err
	}

	if ttl < 0 {
		quota = int64(config.MaxRequests) - 1

		_, err := conn.Do(
			predis.CommandSet,
			composite,
			quota,
			predis.CommandEx,
			uint64(config.Window/time.Second),
		)
		if err != nil {
			return Result{}, err
		}

		ttl = config.Window
	}

	return Result{
		Allowed:   quota >= 0,
		Remaining: int(quota),
		Reset:     ttl,
	}, nil
}

func getQuota(conn redis.Conn, key string) (int64, error) {
	// DECR on non-existent keys will set them to `-1` we can make use of that
	// to determine if we have to reset the quota.
	res, err := conn.Do(predis.CommandDecr, key)
	if err != nil {
		return 0, err
	}

	return res.(int64), nil
}

func getTTL(conn redis.Conn, key string) (time.Duration, error) {
	// TTL returns -2 for a key that doesn't exist and -1 if none is set.
	res, err := conn.Do(predis.CommandTTL, key)
	if err != nil {
		return 0, err
	}

	return time.Duration(res.(int64)) * time.Second, nil
}
