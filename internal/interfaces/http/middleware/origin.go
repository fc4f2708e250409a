// Package middleware holds the ambient Fiber middleware shared by every
// route: panic recovery, request logging, CORS, and the origin-derivation
// step that turns an inbound connection into the domain.OriginMetadata the
// capability middleware authorizes against.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/opena2a/rpc-capabilities/internal/domain"
	"github.com/opena2a/rpc-capabilities/internal/infrastructure/auth"
)

// originLocalsKey is the fiber.Ctx Locals key an OriginMetadata is stored
// under by DeriveOrigin and read back by OriginFromContext.
const originLocalsKey = "origin_metadata"

// DeriveOrigin resolves the caller's origin for every request: a bearer JWT
// takes precedence, falling back to a trusted X-Origin header so the
// middleware is reachable without standing up an identity provider. A
// request with neither is rejected before it reaches the capability
// middleware.
func DeriveOrigin(jwtService *auth.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		if authHeader := c.Get("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "invalid authorization header format",
				})
			}
			origin, err := jwtService.OriginFor(parts[1])
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "invalid or expired token",
				})
			}
			c.Locals(originLocalsKey, domain.OriginMetadata{Origin: domain.Origin(origin)})
			return c.Next()
		}

		if origin := c.Get("X-Origin"); origin != "" {
			c.Locals(originLocalsKey, domain.OriginMetadata{Origin: domain.Origin(origin)})
			return c.Next()
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "no bearer token or X-Origin header provided",
		})
	}
}

// OriginFromContext reads back the OriginMetadata DeriveOrigin stored.
func OriginFromContext(c fiber.Ctx) (domain.OriginMetadata, bool) {
	meta, ok := c.Locals(originLocalsKey).(domain.OriginMetadata)
	return meta, ok
}
