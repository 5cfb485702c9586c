// Package middleware carries the request-level guards shared by the
// HTTP and websocket surfaces.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ProfileIDKey is the locals key the auth guard stores the caller's
// profile id under.
const ProfileIDKey = "profile_id"

// JWTAuth validates the bearer token and exposes its subject as the
// authenticated profile id. Identity issuance lives in another service;
// this layer only verifies.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			// Browsers cannot set headers on websocket upgrades.
			header = "Bearer " + c.Query("token")
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "token missing subject"})
		}
		c.Locals(ProfileIDKey, sub)
		return c.Next()
	}
}

// ProfileID reads the authenticated profile id set by JWTAuth.
func ProfileID(c *fiber.Ctx) string {
	id, _ := c.Locals(ProfileIDKey).(string)
	return id
}
