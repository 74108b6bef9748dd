package serverutils

import (
	"fmt"
	"time"

	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns returned errors and panics into the standard
// envelope. Handlers that already wrote a response return nil and pass through.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(logger.ModuleHTTP, "Recovered from panic", map[string]interface{}{
					"panic":  fmt.Sprint(r),
					"method": ctx.Method(),
					"path":   ctx.Path(),
				})
				err = RespondError(ctx, fmt.Errorf("panic: %v", r))
			}
		}()

		if err := ctx.Next(); err != nil {
			status, _ := MapError(err)
			if status == fiber.StatusInternalServerError {
				log.Error(logger.ModuleHTTP, "Unhandled error", map[string]interface{}{
					"error":  err.Error(),
					"method": ctx.Method(),
					"path":   ctx.Path(),
				})
			}
			return RespondError(ctx, err)
		}
		return nil
	}
}

// RequestMetrics records count and latency per matched route template.
func RequestMetrics(collector *metrics.Collector) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			status, _ = MapError(err)
		}
		collector.RecordHTTPRequest(ctx.Method(), ctx.Route().Path, status, time.Since(start))
		return err
	}
}
