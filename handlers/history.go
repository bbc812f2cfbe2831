package handlers

import (
	"habitxp/models"
	"habitxp/services"
	"habitxp/utils"

	"github.com/gofiber/fiber/v2"
)

type CompleteChallengeRequest struct {
	ChallengeID uint `json:"id_desafio"`
}

// ChallengeHistoryRow is one entry of a single challenge's history.
type ChallengeHistoryRow struct {
	Date     models.Day `gorm:"column:data_execucao" json:"data_execucao"`
	Status   string     `gorm:"column:status" json:"status"`
	XPEarned int        `gorm:"column:xp_ganho" json:"xp_ganho"`
}

// CompleteChallenge records today's completion of a challenge.
// POST /api/historico/concluir
func CompleteChallenge(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req CompleteChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Corpo da requisição inválido.")
	}
	if req.ChallengeID == 0 {
		return utils.JSONError(c, fiber.StatusBadRequest, "O ID do desafio é obrigatório.")
	}

	res, err := completionRecorder.RecordCompletion(c.UserContext(), userID, req.ChallengeID, models.Today(timeZone))
	if err != nil {
		return serverError(c, "Erro ao registrar conclusão do desafio.", err)
	}

	switch res.Status {
	case services.StatusDuplicate:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status":  res.Status,
			"message": "Desafio já concluído hoje.",
		})
	case services.StatusForbidden:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  res.Status,
			"message": "Desafio não encontrado ou não pertence ao usuário.",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":           res.Status,
		"message":          "Desafio concluído! XP concedido e conquistas verificadas.",
		"xp_ganho":         res.XPEarned,
		"novas_conquistas": res.NewAchievements,
	})
}

// DailyHistory lists the caller's history for one day, today by default.
// GET /api/historico/diario?data=YYYY-MM-DD
func DailyHistory(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	day := models.Today(timeZone)
	if raw := utils.Query(c, "data"); raw != "" {
		parsed, err := models.ParseDay(raw)
		if err != nil {
			return utils.JSONError(c, fiber.StatusBadRequest, "Data inválida. Use AAAA-MM-DD.")
		}
		day = parsed
	}

	rows := []models.DailyHistoryRow{}
	if err := requestDB(c).Table("historico_desafio AS hd").
		Select("hd.data_execucao, hd.xp_ganho, hd.status, d.nome_desafio, d.tipo_desafio").
		Joins("JOIN desafios d ON d.id_desafio = hd.id_desafio").
		Where("hd.id_usuario = ? AND hd.data_execucao = ?", userID, day).
		Order("hd.id_historico DESC").
		Scan(&rows).Error; err != nil {
		return serverError(c, "Erro ao listar histórico diário.", err)
	}
	return c.JSON(rows)
}

// ChallengeHistory lists every entry of one owned challenge, newest first.
// GET /api/historico/desafio/:id
func ChallengeHistory(c *fiber.Ctx) error {
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
		return serverError(c, "Erro ao listar histórico do desafio.", err)
	}
	if owned == 0 {
		return utils.JSONError(c, fiber.StatusNotFound, "Desafio não encontrado ou acesso negado.")
	}

	rows := []ChallengeHistoryRow{}
	if err := db.Model(&models.HistoryEntry{}).
		Select("data_execucao, status, xp_ganho").
		Where("id_desafio = ? AND id_usuario = ?", challengeID, userID).
		Order("data_execucao DESC").
		Scan(&rows).Error; err != nil {
		return serverError(c, "Erro ao listar histórico do desafio.", err)
	}
	return c.JSON(rows)
}
