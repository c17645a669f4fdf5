package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if p := Principal(c); p.Authenticated() {
			fields = append(fields, zap.String("user_id", p.UserID))
		}

		if c.Writer.Status() >= 500 {
			zap.L().Error("http.request", fields...)
			return
		}
		zap.L().Info("http.request", fields...)
	}
}
