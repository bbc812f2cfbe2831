// utils/http.go - Fiber request and response helpers
package utils

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// JSONError sends {"message": ...} with the given status.
func JSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

// JSONMessage sends a 200 with {"message": ...}.
func JSONMessage(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{"message": message})
}

// ParamID parses a positive numeric route parameter.
func ParamID(c *fiber.Ctx, key string) (uint, bool) {
	raw := strings.TrimSpace(c.Params(key))
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// Query gets a query parameter
func Query(c *fiber.Ctx, key string, defaultValue ...string) string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return val
}

// StringPtr returns nil for blank input.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
