package middleware

import (
	"fmt"
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"tijuanashop/internal/infrastructure/ratelimit"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/logger"
	"tijuanashop/pkg/response"
)

// RateLimit limits action per signed-in user, or per client IP for
// anonymous requests.
func RateLimit(rl *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := UserID(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			allowed, wait := rl.Allow(key, action)
			if !allowed {
				logger.Info("RATE LIMIT: %s blocked on %s (retry in %v)", key, action, wait)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return response.Error(c, errors.TooManyRequests(fmt.Sprintf("Rate limit exceeded, retry in %ds", int(math.Ceil(wait.Seconds())))))
			}

			return next(c)
		}
	}
}
