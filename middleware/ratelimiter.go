package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	libredis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/eventtrackpro/eventtrack-backend/config"
)

// RateLimiter limits requests per IP across the whole API surface.
// When Redis is configured the counters are shared between instances;
// otherwise an in-process store is used.
func RateLimiter(cfg *config.Config) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  100,
	}
	return newLimiterMiddleware(cfg, rate, "eventtrack-api")
}

// PublicRateLimiter applies a stricter limit to the unauthenticated
// registration submission endpoint.
func PublicRateLimiter(cfg *config.Config) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  20,
	}
	return newLimiterMiddleware(cfg, rate, "eventtrack-public")
}

func newLimiterMiddleware(cfg *config.Config, rate limiter.Rate, prefix string) gin.HandlerFunc {
	store := newStore(cfg, prefix)
	instance := limiter.New(store, rate)
	return ginlimiter.NewMiddleware(instance)
}

func newStore(cfg *config.Config, prefix string) limiter.Store {
	if cfg != nil && cfg.RedisAddr != "" {
		client := libredis.NewClient(&libredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix: prefix,
		})
		if err == nil {
			return store
		}
		log.Printf("redis rate limit store unavailable, falling back to memory: %v", err)
	}
	return memory.NewStore()
}
