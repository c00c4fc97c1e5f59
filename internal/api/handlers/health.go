package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dodgeshot/backend/internal/game"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status
func HealthCheck(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "ok"
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"service":        "dodgeshot-api",
			"version":        version,
			"uptime":         time.Since(startTime).String(),
			"redis":          redisStatus,
			"active_matches": game.Manager.ActiveMatchCount(),
		})
	}
}
