package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"habitxp/models"
	"habitxp/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateChallengeRequest struct {
	GoalID          uint            `json:"id_objetivo"`
	TemplateID      *uint           `json:"id_catalogo"`
	Name            string          `json:"nome_desafio"`
	Type            string          `json:"tipo_desafio"`
	Frequency       string          `json:"frequencia"`
	XPReward        *int            `json:"xp_recompensa"`
	Personalization json.RawMessage `json:"personalizacao"`
}

type UpdateChallengeRequest struct {
	Name            *string         `json:"nome_desafio"`
	Frequency       *string         `json:"frequencia"`
	XPReward        *int            `json:"xp_recompensa"`
	Personalization json.RawMessage `json:"personalizacao"`
}

// ChallengeView is a challenge with the name of its goal.
type ChallengeView struct {
	models.Challenge
	GoalName string `gorm:"column:nome_objetivo" json:"nome_objetivo"`
}

var validFrequency = map[string]bool{
	models.FrequencyDaily:   true,
	models.FrequencyWeekly:  true,
	models.FrequencyMonthly: true,
}

// personalizationJSON validates raw and returns nil for an absent or
// null value.
func personalizationJSON(raw json.RawMessage) (datatypes.JSON, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, true
	}
	if !json.Valid(raw) {
		return nil, false
	}
	return datatypes.JSON(trimmed), true
}

// ownedChallenges scopes a query on desafios to live goals of userID.
func ownedChallenges(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.Challenge{}).
		Joins("JOIN objetivos o ON o.id_objetivo = desafios.id_objetivo AND o.data_exclusao IS NULL").
		Where("o.id_usuario = ?", userID)
}

// ListChallengeTemplates
// GET /api/desafios/catalogo
func ListChallengeTemplates(c *fiber.Ctx) error {
	rows := []models.ChallengeTemplate{}
	if err := requestDB(c).Order("tipo_desafio ASC").Order("nome_modelo ASC").Find(&rows).Error; err != nil {
		return serverError(c, "Erro ao listar catálogo de desafios.", err)
	}
	return c.JSON(rows)
}

// GetTypeOptions returns the personalization options of one challenge type.
// GET /api/desafios/opcoes/:tipo
func GetTypeOptions(c *fiber.Ctx) error {
	tipo := strings.TrimSpace(c.Params("tipo"))
	if tipo == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "Tipo de desafio é obrigatório.")
	}

	var opts models.ChallengeTypeOptions
	if err := requestDB(c).Where("tipo_desafio = ?", strings.ToUpper(tipo)).First(&opts).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.JSONError(c, fiber.StatusNotFound, "Opções não encontradas para este tipo de desafio.")
		}
		return serverError(c, "Erro ao buscar opções de personalização.", err)
	}
	return c.JSON(opts)
}

// CreateChallenge attaches a challenge to one of the caller's goals,
// filling blanks from the catalog template when one is given.
// POST /api/desafios
func CreateChallenge(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Corpo da requisição inválido.")
	}
	if req.GoalID == 0 {
		return utils.JSONError(c, fiber.StatusBadRequest, "O ID do objetivo é obrigatório.")
	}
	personalization, ok := personalizationJSON(req.Personalization)
	if !ok {
		return utils.JSONError(c, fiber.StatusBadRequest, "Personalização deve ser um JSON válido.")
	}

	db := requestDB(c)

	var goal models.Goal
	if err := db.Where("id_objetivo = ? AND id_usuario = ?", req.GoalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.JSONError(c, fiber.StatusNotFound, "Objetivo não encontrado ou não pertence ao usuário.")
		}
		return serverError(c, "Erro ao criar desafio.", err)
	}

	ch := models.Challenge{
		GoalID:          goal.ID,
		Name:            strings.TrimSpace(req.Name),
		Type:            strings.ToUpper(strings.TrimSpace(req.Type)),
		Frequency:       strings.TrimSpace(req.Frequency),
		XPReward:        models.DefaultXPReward,
		Personalization: personalization,
	}

	if req.TemplateID != nil && *req.TemplateID != 0 {
		var tpl models.ChallengeTemplate
		if err := db.First(&tpl, *req.TemplateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.JSONError(c, fiber.StatusNotFound, "Modelo de desafio não encontrado.")
			}
			return serverError(c, "Erro ao criar desafio.", err)
		}
		ch.TemplateID = &tpl.ID
		if ch.Name == "" {
			ch.Name = tpl.Name
		}
		if ch.Type == "" {
			ch.Type = tpl.Type
		}
		if ch.Frequency == "" {
			ch.Frequency = tpl.Frequency
		}
		ch.XPReward = tpl.XPReward
	}
	if req.XPReward != nil {
		ch.XPReward = *req.XPReward
	}
	if ch.Frequency == "" {
		ch.Frequency = models.FrequencyDaily
	}

	if ch.Name == "" || ch.Type == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "Nome e tipo do desafio são obrigatórios.")
	}
	if !validFrequency[ch.Frequency] {
		return utils.JSONError(c, fiber.StatusBadRequest, "Frequência inválida.")
	}
	if ch.XPReward < 0 {
		return utils.JSONError(c, fiber.StatusBadRequest, "A recompensa de XP não pode ser negativa.")
	}

	if err := db.Create(&ch).Error; err != nil {
		return serverError(c, "Erro ao criar desafio.", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Desafio criado com sucesso.",
		"id_desafio": ch.ID,
	})
}

// ListChallenges lists the caller's challenges across all live goals.
// GET /api/desafios
func ListChallenges(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	rows := []ChallengeView{}
	if err := ownedChallenges(requestDB(c), userID).
		Select("desafios.*, o.nome_objetivo").
		Order("desafios.id_desafio DESC").
		Scan(&rows).Error; err != nil {
		return serverError(c, "Erro ao listar desafios.", err)
	}
	return c.JSON(rows)
}

// UpdateChallenge
// PUT /api/desafios/:id
func UpdateChallenge(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	challengeID, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.JSONError(c, fiber.StatusBadRequest, "ID do desafio inválido.")
	}

	var req UpdateChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Corpo da requisição inválido.")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return utils.JSONError(c, fiber.StatusBadRequest, "O nome do desafio não pode ser vazio.")
		}
		updates["nome_desafio"] = name
	}
	if req.Frequency != nil {
		if !validFrequency[*req.Frequency] {
			return utils.JSONError(c, fiber.StatusBadRequest, "Frequência inválida.")
		}
		updates["frequencia"] = *req.Frequency
	}
	if req.XPReward != nil {
		if *req.XPReward < 0 {
			return utils.JSONError(c, fiber.StatusBadRequest, "A recompensa de XP não pode ser negativa.")
		}
		updates["xp_recompensa"] = *req.XPReward
	}
	if len(req.Personalization) > 0 {
		p, ok := personalizationJSON(req.Personalization)
		if !ok {
			return utils.JSONError(c, fiber.StatusBadRequest, "Personalização deve ser um JSON válido.")
		}
		updates["personalizacao"] = p
	}
	if len(updates) == 0 {
		return utils.JSONError(c, fiber.StatusBadRequest, "Nenhum campo para atualizar.")
	}

	db := requestDB(c)
	var owned int64
	if err := ownedChallenges(db, userID).Where("desafios.id_desafio = ?", challengeID).Count(&owned).Error; err != nil {
		return serverError(c, "Erro ao atualizar desafio.", err)
	}
	if owned == 0 {
		return utils.JSONError(c, fiber.StatusNotFound, "Desafio não encontrado ou não pertence ao usuário.")
	}

	if err := db.Model(&models.Challenge{}).Where("id_desafio = ?", challengeID).Updates(updates).Error; err != nil {
		return serverError(c, "Erro ao atualizar desafio.", err)
	}
	return utils.JSONMessage(c, "Desafio atualizado com sucesso.")
}

// DeleteChallenge soft-deletes one challenge; its history is kept.
// DELETE /api/desafios/:id
func DeleteChallenge(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	challengeID, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.JSONError(c, fiber.StatusBadRequest, "ID do desafio inválido.")
	}

	db := requestDB(c)
	var owned int64
	if err := ownedChallenges(db, userID).Where("desafios.id_desafio = ?", challengeID).Count(&owned).Error; err != nil {
		return serverError(c, "Erro ao deletar desafio.", err)
	}
	if owned == 0 {
		return utils.JSONError(c, fiber.StatusNotFound, "Desafio não encontrado ou não pertence ao usuário.")
	}

	if err := db.Delete(&models.Challenge{}, challengeID).Error; err != nil {
		return serverError(c, "Erro ao deletar desafio.", err)
	}
	return utils.JSONMessage(c, "Desafio deletado com sucesso.")
}
