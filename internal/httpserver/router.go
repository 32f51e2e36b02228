package httpserver

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"lifeflow/internal/handler"
	"lifeflow/pkg/metrics"
	"lifeflow/pkg/mq"
	"lifeflow/pkg/trace"
)

func NewRouter(boardHandler *handler.BoardHandler, timelineHandler *handler.TimelineHandler, logger *zap.Logger, rdb *redis.Client, consumers []*mq.Consumer) *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		traceID := c.GetHeader(trace.HeaderName())
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName(), traceID)

		c.Next()

		latency := time.Since(start)
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), latency)
		logger.Info("HTTP Request",
			zap.String("trace_id", traceID),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		)
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				c.JSON(500, gin.H{"status": "redis_not_ready", "error": err.Error()})
				return
			}
		}

		for _, consumer := range consumers {
			if consumer != nil && !consumer.IsConnected() {
				c.JSON(500, gin.H{"status": "mq_not_ready"})
				return
			}
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/board", boardHandler.GetBoard)
	r.POST("/tasks/reorder", boardHandler.ReorderTasks)
	r.PUT("/tasks/:id/list", boardHandler.RecategorizeTask)
	r.PATCH("/tasks/:id", boardHandler.EditTask)
	r.POST("/tasks/:id/checkin", boardHandler.CheckinTask)
	r.DELETE("/tasks/:id", boardHandler.DeleteTask)
	r.GET("/stats/daily-ring", boardHandler.DailyRing)
	r.GET("/toast", boardHandler.GetToast)
	r.DELETE("/toast", boardHandler.DismissToast)

	r.GET("/timeline", timelineHandler.GetTimeline)
	r.POST("/timeline/next", timelineHandler.NextPage)
	r.POST("/life-entries", timelineHandler.CreateEntry)
	r.PUT("/life-entries/:id", timelineHandler.UpdateEntry)
	r.DELETE("/life-entries/:id", timelineHandler.DeleteEntry)

	return r
}
