package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type SeenToucher interface {
	TouchSeen(ctx context.Context, username string) error
}

// TouchLastSeen stamps the account at most once per throttle window; the
// window is a redis key so it holds across instances.
func TouchLastSeen(t SeenToucher, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetString(CtxUsername)
		if username == "" {
			c.Next()
			return
		}
		key := "account:lastseen:" + username
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			if err := t.TouchSeen(c, username); err != nil {
				zap.L().Warn("touch last seen", zap.String("username", username), zap.Error(err))
			}
		}
		c.Next()
	}
}
