package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/careerpath/internal/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	localsIdentity  = "identity"
	localsRequestID = "request_id"
)

// requestLogger writes one entry per request and propagates a request id.
func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(localsRequestID, requestID)
		c.Set(requestIDHeader, requestID)

		err := c.Next()
		if err != nil {
			// the error handler writes the response, so the final status is known after it
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		fields := []zap.Field{
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}
		entry := logger.WithRequestFields(log, requestID, c.Method(), c.Path())
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			entry.Warn("request failed", fields...)
		} else {
			entry.Info("request handled", fields...)
		}

		return nil
	}
}

// requireBearer guards a route with an access token and stores the identity in locals.
func requireBearer(authn Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing authorization header"})
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authorization header format must be Bearer {token}"})
		}

		identity, err := authn.Identify(strings.TrimSpace(token))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized or invalid token"})
		}

		c.Locals(localsIdentity, identity)
		return c.Next()
	}
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}

		if code >= fiber.StatusInternalServerError {
			requestID, _ := c.Locals(localsRequestID).(string)
			logger.WithRequestFields(log, requestID, c.Method(), c.Path()).
				Error("unhandled error", zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}
