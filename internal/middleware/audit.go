package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit logs administrative actions after they succeed.
func Audit(l *zap.Logger, action string) gin.HandlerFunc {
	if l == nil {
		l = zap.NewNop()
	}
	l = l.Named("audit")
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}
		fields := []zap.Field{
			zap.String("action", action),
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
		}
		if claims := Claims(c); claims != nil {
			fields = append(fields, zap.String("faculty_id", claims.FacultyID), zap.String("role", string(claims.Role)))
		}
		l.Info("admin action", fields...)
	}
}
