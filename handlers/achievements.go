package handlers

import (
	"habitxp/models"

	"github.com/gofiber/fiber/v2"
)

// ListAchievementCatalog
// GET /api/conquistas/catalogo
func ListAchievementCatalog(c *fiber.Ctx) error {
	rows := []models.Achievement{}
	if err := requestDB(c).Order("nome_conquista ASC").Find(&rows).Error; err != nil {
		return serverError(c, "Erro ao listar catálogo de conquistas.", err)
	}
	return c.JSON(rows)
}

// ListUserAchievements lists the caller's grants, newest first.
// GET /api/conquistas/usuario
func ListUserAchievements(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	rows := []models.GrantedAchievement{}
	if err := requestDB(c).Table("usuario_conquista AS uc").
		Select("c.nome_conquista, c.descricao, c.url_emblema, uc.data_conquista").
		Joins("JOIN conquistas c ON c.id_conquista = uc.id_conquista").
		Where("uc.id_usuario = ?", userID).
		Order("uc.data_conquista DESC").
		Scan(&rows).Error; err != nil {
		return serverError(c, "Erro ao listar conquistas do usuário.", err)
	}
	return c.JSON(rows)
}
