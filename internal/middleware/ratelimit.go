package middleware

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/soundlens/soundlens/internal/request"
)

const defaultRequestsPerMinute = 60

// RateLimit returns per-client-IP rate limiting middleware. When redisURL is
// set the counters live in Redis so limits hold across replicas; otherwise an
// in-process store is used.
func RateLimit(redisURL string, perMinute int) (func(http.Handler) http.Handler, error) {
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}
	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  int64(perMinute),
	}

	var store limiter.Store
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, err
		}
		store, err = redisstore.NewStore(redis.NewClient(opts))
		if err != nil {
			return nil, err
		}
	} else {
		store = memorystore.NewStore()
	}

	instance := limiter.New(store, rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler, nil
}
