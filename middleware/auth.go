// middleware/auth.go
package middleware

import (
	"errors"
	"strings"

	"habitxp/utils"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "userId"

// AuthMiddleware requires "Authorization: Bearer <jwt>" and stores the
// token's id_usuario for GetUserID.
func AuthMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return utils.JSONError(c, fiber.StatusUnauthorized, "Acesso negado. Token não fornecido ou formato inválido.")
	}

	userID, err := utils.ParseToken(strings.TrimSpace(parts[1]))
	if errors.Is(err, utils.ErrTokenExpired) {
		return utils.JSONError(c, fiber.StatusUnauthorized, "Token expirado. Por favor, faça login novamente.")
	}
	if err != nil {
		return utils.JSONError(c, fiber.StatusUnauthorized, "Token inválido.")
	}

	c.Locals(userIDKey, userID)
	return c.Next()
}

func GetUserID(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals(userIDKey).(uint)
	if !ok || id == 0 {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}
