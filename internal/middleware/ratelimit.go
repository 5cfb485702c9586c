package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimit is a fixed-window limiter keyed by authenticated profile,
// falling back to the client IP before auth runs. Redis being down never
// blocks traffic; the limiter fails open.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, log *zap.SugaredLogger) fiber.Handler {
	// the window keys on whole seconds; anything shorter would divide by zero
	if window < time.Second {
		window = time.Second
	}
	return func(c *fiber.Ctx) error {
		if rdb == nil || limit <= 0 {
			return c.Next()
		}
		who := ProfileID(c)
		if who == "" {
			who = c.IP()
		}
		key := fmt.Sprintf("ratelimit:%s:%d", who, time.Now().Unix()/int64(window.Seconds()))

		ctx := c.UserContext()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warnw("rate limiter unavailable", "error", err)
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}
		if count > int64(limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded"})
		}
		return c.Next()
	}
}
