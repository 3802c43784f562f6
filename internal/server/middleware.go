package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kwachapos/fiscalgate/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	HeaderDeviceID  = "X-Device-Id"
	HeaderRequestID = "X-Request-Id"
)

// RequestID generates or propagates a request identifier.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		reqLog := logger.WithRequest(log, c.GetString("request_id"))
		if device := deviceID(c); device != "" {
			reqLog = logger.WithDevice(reqLog, device)
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.Last().Error()))
			reqLog.Warn("request failed", fields...)
			return
		}
		reqLog.Info("request", fields...)
	}
}

func deviceID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(HeaderDeviceID))
}
