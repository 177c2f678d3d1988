package services

import (
	"time"

	"productshot/utils"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

const (
	reqIDKey        = "reqId"
	generationIDKey = "generationId"
	errorCodeKey    = "errorCode"
)

// RequestLogger tags every request with an X-Request-Id and writes one access
// line when it finishes. Generation handlers leave their id and error code in
// Locals so the line can be joined with the orchestrator logs.
func RequestLogger() fiber.Handler {
	base := log.With("component", "http")

	return func(c *fiber.Ctx) error {
		reqID := c.Get("X-Request-Id")
		if reqID == "" || len(reqID) > 64 {
			reqID = utils.NewRequestID()
		}
		c.Locals(reqIDKey, reqID)
		c.Set("X-Request-Id", reqID)

		start := time.Now()
		err := c.Next()

		fields := []any{
			"reqId", reqID,
			"method", c.Method(),
			"route", c.Route().Path,
			"status", c.Response().StatusCode(),
			"dur", time.Since(start).String(),
		}
		if id := localString(c, generationIDKey); id != "" {
			fields = append(fields, "generationId", id)
		}
		if code := localString(c, errorCodeKey); code != "" {
			fields = append(fields, "code", code)
		}
		if err != nil {
			fields = append(fields, "err", err)
		}

		base.Log(accessLevel(c.Path(), c.Response().StatusCode(), err), "request", fields...)
		return err
	}
}

// accessLevel keeps health checks out of info logs and raises failures.
func accessLevel(path string, status int, err error) log.Level {
	switch {
	case err != nil || status >= fiber.StatusInternalServerError:
		return log.ErrorLevel
	case status >= fiber.StatusBadRequest:
		return log.WarnLevel
	case path == "/health":
		return log.DebugLevel
	}
	return log.InfoLevel
}

func localString(c *fiber.Ctx, key string) string {
	if v, ok := c.Locals(key).(string); ok {
		return v
	}
	return ""
}

func ReqID(c *fiber.Ctx) string {
	return localString(c, reqIDKey)
}

func HttpLogger(action string, c *fiber.Ctx) *log.Logger {
	return log.With(
		"component", "api",
		"action", action,
		"reqId", ReqID(c),
	)
}
