package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging は全リクエストをslogで1行ずつ記録する。
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			userID, _ := c.Get(CtxUserIDKey).(int64)
			duration := time.Since(start).Milliseconds()
			status := c.Response().Status

			if err != nil {
				slog.Error("request error",
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"status", status,
					"user_id", userID,
					"duration_ms", duration,
					"error", err,
				)
			} else {
				slog.Info("request",
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"status", status,
					"user_id", userID,
					"duration_ms", duration,
				)
			}

			return err
		}
	}
}
