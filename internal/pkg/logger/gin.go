package logger

import (
	log "log/slog"

	"github.com/gin-gonic/gin"
)

// SetupGin 安装访问日志与 Recovery
func SetupGin(r *gin.Engine) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(p gin.LogFormatterParams) string {
			var traceID string
			if p.Keys != nil {
				if id, ok := p.Keys[TraceIDKey].(string); ok {
					traceID = id
				}
			}

			log.Info("HTTP_ACCESS",
				"trace_id", traceID,
				"method", p.Method,
				"path", p.Path,
				"status", p.StatusCode,
				"latency", p.Latency.String(),
				"client_ip", p.ClientIP,
			)
			return ""
		},
	}))

	r.Use(gin.Recovery())
}
