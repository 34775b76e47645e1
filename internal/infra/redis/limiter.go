package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window request counter shared by every instance using the same Redis.
// The counter for a caller lives under throttle:{key} and expires with its window.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: limit, window: window}
}

// allowScript counts a hit and (re)arms the window whenever the counter has no expiry,
// so a counter left without a TTL cannot pin a caller forever.
var allowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// Allow counts one request for key and reports whether it fits in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := allowScript.Run(ctx, l.client, []string{l.key(key)}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n <= int64(l.limit), nil
}

func (l *Limiter) key(key string) string {
	return "throttle:" + key
}
