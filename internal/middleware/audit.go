package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit logs successful admin mutations with the acting administrator.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		actor := ""
		if claims, ok := AdminClaims(c); ok {
			actor = claims.Name
		}
		logger.Info("admin_audit",
			zap.String("action", action),
			zap.String("actor", actor),
			zap.String("application_id", c.GetString(AuditApplicationKey)),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
		)
	}
}

// AuditApplicationKey is set by handlers to tag the audited application.
const AuditApplicationKey = "audit_application_id"
