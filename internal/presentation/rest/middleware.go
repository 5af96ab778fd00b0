package rest

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/dto"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const (
	HeaderAPIKey = "X-Orbiter-API-Key"
	HeaderToken  = "X-Orbiter-Token"
	HeaderSource = "Source"

	identityKey = "identity"
)

type AuthConfig struct {
	Provider *auth.IdentityProvider
	// Next skips authentication when it returns true.
	Next func(c *fiber.Ctx) bool
}

// Authenticate resolves the caller from an API key or a bearer token and
// stores the identity on the request.
func Authenticate(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		var (
			identity *auth.Identity
			err      error
		)
		switch {
		case c.Get(HeaderAPIKey) != "":
			identity, err = cfg.Provider.FromAPIKey(c.UserContext(), c.Get(HeaderAPIKey))
		case c.Get(HeaderToken) != "":
			identity, err = cfg.Provider.FromToken(c.UserContext(), c.Get(HeaderToken))
		case strings.HasPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "):
			identity, err = cfg.Provider.FromToken(c.UserContext(), strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
		default:
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
		}
		if err != nil {
			var perm errs.PermissionsError
			if !errors.As(err, &perm) {
				slog.Error("err resolving identity", "err", err, "requestId", requestID(c))
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

func identityFrom(c *fiber.Ctx) *auth.Identity {
	identity, _ := c.Locals(identityKey).(*auth.Identity)
	return identity
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return id
}

// RequestLogger writes one access log line per request through slog.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		slog.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(started),
			"requestId", requestID(c),
		)
		return err
	}
}
