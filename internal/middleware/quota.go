package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rankwise/rankwise-api/internal/apperr"
)

// KeywordLimits caps daily AI keyword generations per plan. Plans absent
// from the map (enterprise) are unlimited; an empty plan claim counts as
// free.
var KeywordLimits = map[string]int64{
	"free": 10,
	"pro":  100,
}

// PlanQuota enforces a per-user daily counter in Redis for the named
// feature. When rdb is nil or Redis fails mid-flight the check degrades
// open: quota enforcement is never worth a full outage.
func PlanQuota(rdb *redis.Client, feature string, limits map[string]int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rdb == nil {
				return next(c)
			}
			claims := ClaimsFrom(c)
			if claims == nil {
				return apperr.Unauthorized()
			}
			plan := claims.Plan
			if plan == "" {
				plan = "free"
			}
			limit, capped := limits[plan]
			if !capped {
				return next(c)
			}

			day := time.Now().UTC().Format("20060102")
			key := fmt.Sprintf("quota:%s:%s:%s", feature, claims.Subject, day)

			ctx := c.Request().Context()
			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				log.Printf("quota: redis incr failed: %v", err)
				return next(c)
			}
			if n == 1 {
				// First use today; the counter dies with the day.
				if err := rdb.Expire(ctx, key, 24*time.Hour).Err(); err != nil {
					log.Printf("quota: redis expire failed: %v", err)
				}
			}
			if n > limit {
				return apperr.QuotaExceeded()
			}
			return next(c)
		}
	}
}
