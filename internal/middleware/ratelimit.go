package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
)

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimiter is a fixed-window limiter per client IP shared through Redis.
type RateLimiter struct {
	rdb     *redis.Client
	limit   int
	window  time.Duration
	prefix  string
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration, prefix string, log *slog.Logger, m *metrics.Metrics) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &RateLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix, log: log, metrics: m}
}

// Handler fails open when Redis is unavailable.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := rl.incr(c.Request.Context(), rl.prefix+":"+c.ClientIP())
		if err != nil {
			rl.log.Warn("rate limiter unavailable", "err", err)
			c.Next()
			return
		}

		if count > int64(rl.limit) {
			if rl.metrics != nil {
				rl.metrics.RateLimited.Inc()
			}
			c.Header("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			httperr.Abort(c, http.StatusTooManyRequests, "rate_limited", "Muitas tentativas. Aguarde um pouco.")
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Int64()
	if err != nil {
		return 0, err
	}
	return res, nil
}
