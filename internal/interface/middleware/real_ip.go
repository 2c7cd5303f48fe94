package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP stores the client IP under "real_ip" for rate limiting and logs.
// Proxy headers (CF-Connecting-IP, then the left-most X-Forwarded-For entry)
// are honored only when trustProxyHeaders is set; otherwise c.ClientIP() is used.
func RealIP(trustProxyHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", realIP(c, trustProxyHeaders))
		c.Next()
	}
}

func realIP(c *gin.Context, trustProxyHeaders bool) string {
	if trustProxyHeaders {
		if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
			if ip := net.ParseIP(cf); ip != nil {
				return ip.String()
			}
		}
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
	}
	return c.ClientIP()
}
