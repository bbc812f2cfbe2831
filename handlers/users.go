package handlers

import (
	"errors"
	"strings"

	"habitxp/models"
	"habitxp/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Name     string  `json:"nome"`
	PhotoURL *string `json:"foto_url"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"senha_antiga"`
	NewPassword string `json:"senha_nova"`
}

// GetProfile returns the caller's profile.
// GET /api/usuarios/perfil
func GetProfile(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var user models.User
	if err := requestDB(c).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.JSONError(c, fiber.StatusNotFound, "Usuário não encontrado.")
		}
		return serverError(c, "Erro ao buscar dados do perfil.", err)
	}
	return c.JSON(user)
}

// UpdateProfile changes name and photo.
// PUT /api/usuarios/perfil
func UpdateProfile(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Corpo da requisição inválido.")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "O nome não pode ser vazio.")
	}

	var photo *string
	if req.PhotoURL != nil {
		photo = utils.StringPtr(*req.PhotoURL)
	}
	res := requestDB(c).Model(&models.User{}).
		Where("id_usuario = ?", userID).
		Updates(map[string]interface{}{"nome": name, "foto_url": photo})
	if res.Error != nil {
		return serverError(c, "Erro ao atualizar dados do perfil.", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.JSONError(c, fiber.StatusNotFound, "Usuário não encontrado.")
	}
	return utils.JSONMessage(c, "Perfil atualizado com sucesso.")
}

// ChangePassword replaces the password after checking the old one.
// PUT /api/usuarios/senha
func ChangePassword(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Corpo da requisição inválido.")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "Senha antiga e nova senha são obrigatórias.")
	}

	db := requestDB(c)
	var user models.User
	err := db.First(&user, userID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return serverError(c, "Erro ao alterar a senha.", err)
	}
	if err != nil || !user.HasPassword() {
		return utils.JSONError(c, fiber.StatusForbidden, "Você não tem uma senha tradicional configurada. Use o Login Social.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return utils.JSONError(c, fiber.StatusUnauthorized, "Senha antiga incorreta.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return serverError(c, "Erro ao alterar a senha.", err)
	}
	if err := db.Model(&models.User{}).Where("id_usuario = ?", userID).Update("senha_hash", string(hash)).Error; err != nil {
		return serverError(c, "Erro ao alterar a senha.", err)
	}

	log.Info("password changed", "user_id", userID)
	return utils.JSONMessage(c, "Senha alterada com sucesso.")
}
