package utility

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

var ipRateLimiter = sync.Map{}

// GetRealIP resolves the caller's address, preferring proxy headers.
func GetRealIP(c echo.Context) string {
	// X-Forwarded-For can be a list: "client, proxy1, proxy2"
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xrip := c.Request().Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	return c.RealIP()
}

// CheckIPRateLimit allows at most 30 chat requests per IP per 15 minutes.
// External generative calls are slow and metered; this keeps one client from
// monopolizing them.
func CheckIPRateLimit(ip string) error {
	now := time.Now()
	window := 15 * time.Minute
	maxAttempts := 30

	val, _ := ipRateLimiter.LoadOrStore(ip, []time.Time{})
	attempts := val.([]time.Time)

	var recent []time.Time
	for _, t := range attempts {
		if now.Sub(t) < window {
			recent = append(recent, t)
		}
	}

	if len(recent) >= maxAttempts {
		return fmt.Errorf("too many requests, please try again later")
	}

	recent = append(recent, now)
	ipRateLimiter.Store(ip, recent)
	return nil
}
