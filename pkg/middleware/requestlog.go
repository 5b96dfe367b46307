package middleware

import (
	"time"

	"options-dashboard/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// NewRequestLoggerMiddleware attaches a request scoped logger to the request
// context and logs every completed request. Services logging through the
// *Context methods pick up the request_id field.
func NewRequestLoggerMiddleware(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, requestID)

			reqLog := log.With(logger.StringField("request_id", requestID))
			c.SetRequest(req.WithContext(logger.NewContext(req.Context(), reqLog)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []zap.Field{
				logger.StringField("method", req.Method),
				logger.StringField("path", c.Path()),
				logger.IntField("status", c.Response().Status),
				logger.DurationField("latency", time.Since(start)),
			}
			if c.Response().Status >= 500 {
				reqLog.Warn("request failed", fields...)
			} else {
				reqLog.Debug("request served", fields...)
			}
			return nil
		}
	}
}
