package handlers

import (
	"errors"
	"strings"

	"habitxp/database"
	"habitxp/models"
	"habitxp/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SelectGoalTemplateRequest struct {
	TemplateID        uint    `json:"id_catalogo"`
	DueDate           *string `json:"data_conclusao"`
	CustomDescription *string `json:"descricao_custom"`
}

type CreateGoalRequest struct {
	Name        string  `json:"nome_objetivo"`
	Description *string `json:"descricao"`
	DueDate     *string `json:"data_conclusao"`
}

// UpdateGoalRequest uses pointers so absent fields stay untouched.
type UpdateGoalRequest struct {
	Name        *string `json:"nome_objetivo"`
	Description *string `json:"descricao"`
	DueDate     *string `json:"data_conclusao"`
	Status      *string `json:"status"`
}

var validGoalStatus = map[string]bool{
	models.GoalStatusActive:    true,
	models.GoalStatusCompleted: true,
	models.GoalStatusPaused:    true,
}

// parseOptionalDay maps nil or "" to nil.
func parseOptionalDay(raw *string) (*models.Day, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	d, err := models.ParseDay(*raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListGoalTemplates
// GET /api/objetivos/catalogo
func ListGoalTemplates(c *fiber.Ctx) error {
	rows := []models.GoalTemplate{}
	if err := requestDB(c).Order("nome_modelo ASC").Find(&rows).Error; err != nil {
		return serverError(c, "Erro ao listar catálogo.", err)
	}
	return c.JSON(rows)
}

// SelectGoalTemplate creates a goal from a catalog template.
// POST /api/objetivos/catalogo/selecionar
func SelectGoalTemplate(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req SelectGoalTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Corpo da requisição inválido.")
	}
	if req.TemplateID == 0 {
		return utils.JSONError(c, fiber.StatusBadRequest, "O ID do modelo é obrigatório.")
	}
	due, err := parseOptionalDay(req.DueDate)
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Data de conclusão inválida. Use AAAA-MM-DD.")
	}

	db := requestDB(c)
	var tpl models.GoalTemplate
	if err := db.First(&tpl, req.TemplateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.JSONError(c, fiber.StatusNotFound, "Modelo de objetivo não encontrado.")
		}
		return serverError(c, "Erro ao criar objetivo a partir do catálogo.", err)
	}

	desc := utils.StringPtr(tpl.Description)
	if req.CustomDescription != nil && strings.TrimSpace(*req.CustomDescription) != "" {
		desc = utils.StringPtr(*req.CustomDescription)
	}
	goal := models.Goal{
		UserID:      userID,
		Name:        tpl.Name,
		Description: desc,
		DueDate:     due,
		Status:      models.GoalStatusActive,
	}
	if err := db.Create(&goal).Error; err != nil {
		return serverError(c, "Erro ao criar objetivo a partir do catálogo.", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Objetivo selecionado e criado com sucesso.",
		"id_objetivo": goal.ID,
	})
}

// CreateGoal
// POST /api/objetivos
func CreateGoal(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Corpo da requisição inválido.")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "O nome do objetivo é obrigatório.")
	}
	due, err := parseOptionalDay(req.DueDate)
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Data de conclusão inválida. Use AAAA-MM-DD.")
	}

	var desc *string
	if req.Description != nil {
		desc = utils.StringPtr(*req.Description)
	}
	goal := models.Goal{
		UserID:      userID,
		Name:        name,
		Description: desc,
		DueDate:     due,
		Status:      models.GoalStatusActive,
	}
	if err := requestDB(c).Create(&goal).Error; err != nil {
		return serverError(c, "Erro ao criar objetivo.", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Objetivo criado com sucesso.",
		"id_objetivo": goal.ID,
	})
}

// ListGoals
// GET /api/objetivos
func ListGoals(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	goals := []models.Goal{}
	if err := requestDB(c).
		Where("id_usuario = ?", userID).
		Order("status DESC").
		Order("data_criacao DESC").
		Order("id_objetivo DESC").
		Find(&goals).Error; err != nil {
		return serverError(c, "Erro ao listar objetivos.", err)
	}
	return c.JSON(goals)
}

// UpdateGoal applies the fields present in the body.
// PUT /api/objetivos/:id
func UpdateGoal(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	goalID, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.JSONError(c, fiber.StatusBadRequest, "ID do objetivo inválido.")
	}

	var req UpdateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Corpo da requisição inválido.")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return utils.JSONError(c, fiber.StatusBadRequest, "O nome do objetivo é obrigatório.")
		}
		updates["nome_objetivo"] = name
	}
	if req.Description != nil {
		updates["descricao"] = utils.StringPtr(*req.Description)
	}
	if req.DueDate != nil {
		due, err := parseOptionalDay(req.DueDate)
		if err != nil {
			return utils.JSONError(c, fiber.StatusBadRequest, "Data de conclusão inválida. Use AAAA-MM-DD.")
		}
		updates["data_conclusao"] = due
	}
	if req.Status != nil {
		if !validGoalStatus[*req.Status] {
			return utils.JSONError(c, fiber.StatusBadRequest, "Status inválido.")
		}
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return utils.JSONError(c, fiber.StatusBadRequest, "Nenhum campo para atualizar.")
	}

	db := requestDB(c)
	var goal models.Goal
	if err := db.Where("id_objetivo = ? AND id_usuario = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.JSONError(c, fiber.StatusNotFound, "Objetivo não encontrado ou não pertence ao usuário.")
		}
		return serverError(c, "Erro ao atualizar objetivo.", err)
	}
	if err := db.Model(&goal).Updates(updates).Error; err != nil {
		return serverError(c, "Erro ao atualizar objetivo.", err)
	}
	return utils.JSONMessage(c, "Objetivo atualizado com sucesso.")
}

// DeleteGoal soft-deletes the goal and its challenges. History stays so
// the user keeps the XP and progress already earned.
// DELETE /api/objetivos/:id
func DeleteGoal(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	goalID, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.JSONError(c, fiber.StatusBadRequest, "ID do objetivo inválido.")
	}

	var found bool
	err := database.NewTxRunner(database.GetDB()).InTx(c.UserContext(), func(uow database.UnitOfWork) error {
		tx := uow.DB()
		res := tx.Where("id_objetivo = ? AND id_usuario = ?", goalID, userID).Delete(&models.Goal{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		found = true
		return tx.Where("id_objetivo = ?", goalID).Delete(&models.Challenge{}).Error
	})
	if err != nil {
		return serverError(c, "Erro ao deletar objetivo.", err)
	}
	if !found {
		return utils.JSONError(c, fiber.StatusNotFound, "Objetivo não encontrado ou não pertence ao usuário.")
	}
	return utils.JSONMessage(c, "Objetivo e seus desafios vinculados deletados com sucesso.")
}
