package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/bookworm-api/pkg/response"
)

const rateKeyPrefix = "bookworm:rl:"

// clientIP prefers the address resolved by RealIP.
func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// KeyFunc builds a rate-limit bucket name from the request.
type KeyFunc func(c *gin.Context) string

// KeyByIP shares one bucket per client address.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "ip:" + clientIP(c)
	}
}

// KeyByIPAndPath gives every route pattern its own bucket per address, so
// register and login attempts are counted separately.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		return "route:" + route + ":ip:" + clientIP(c)
	}
}

// KeyByUserID buckets signed-in users by id and everyone else by address.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "user:" + uid
		}
		return "anon:ip:" + clientIP(c)
	}
}

// hitScript counts a hit and returns {count, ttl_ms}; the window starts on the first hit.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// AllowFunc returns true for requests that bypass the limit.
type AllowFunc func(*gin.Context) bool

// RateLimit admits limit requests per window per bucket, using a fixed window
// kept in Redis. Rejected requests get 429 with Retry-After. Preflight requests
// are not counted, and a nil client or a Redis error lets traffic through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || limit <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		res, err := hitScript.Run(c.Request.Context(), rdb, []string{rateKeyPrefix + keyFn(c)}, window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond

		resetSec := 0
		if ttl > 0 {
			resetSec = int((ttl + time.Second - 1) / time.Second)
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(limit-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > limit {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Abort(c, http.StatusTooManyRequests, "Too many requests, please try again later", nil)
			return
		}
		c.Next()
	}
}
