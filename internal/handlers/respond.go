// Package handlers adapts the chat and message services onto fiber.
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/apperrors"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/events"
)

// eventPublisher is satisfied by *events.Publisher.
type eventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

const publishTimeout = 10 * time.Second

// publishAsync hands the event to the broker off the request path.
// Delivery is best-effort; retries and failure logging live in the
// publisher and must not hold the response open.
func publishAsync(pub eventPublisher, ev events.Event) {
	if pub == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		_ = pub.Publish(ctx, ev)
	}()
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are
// logged and hidden behind a generic 500 body.
func writeError(c *fiber.Ctx, log *zap.SugaredLogger, err error) error {
	switch {
	case apperrors.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case apperrors.IsAuthorization(err):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case apperrors.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Errorw("request failed", "path", c.Path(), "method", c.Method(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

func pageParams(c *fiber.Ctx) (int, int) {
	return c.QueryInt("page", 1), c.QueryInt("limit", 0)
}
