// database/seed.go - Default catalogs
package database

import (
	"habitxp/logger"
	"habitxp/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var defaultGoalTemplates = []models.GoalTemplate{
	{Name: "Ler mais livros", Description: "Criar o hábito de leitura diária", SuggestedType: "LEITURA"},
	{Name: "Manter a forma", Description: "Praticar atividade física com regularidade", SuggestedType: "EXERCICIO"},
	{Name: "Beber mais água", Description: "Hidratar-se ao longo do dia", SuggestedType: "HIDRATACAO"},
	{Name: "Mente tranquila", Description: "Reservar alguns minutos para meditar", SuggestedType: "MEDITACAO"},
}

var defaultChallengeTemplates = []models.ChallengeTemplate{
	{Name: "Ler 10 páginas", Description: "Leia pelo menos 10 páginas de um livro", Type: "LEITURA", Frequency: models.FrequencyDaily, XPReward: 10},
	{Name: "Caminhada de 30 minutos", Description: "Caminhe por 30 minutos", Type: "EXERCICIO", Frequency: models.FrequencyDaily, XPReward: 15},
	{Name: "Treino de força", Description: "Treino de musculação completo", Type: "EXERCICIO", Frequency: models.FrequencyWeekly, XPReward: 30},
	{Name: "Beber 2 litros de água", Description: "Consuma 2 litros de água no dia", Type: "HIDRATACAO", Frequency: models.FrequencyDaily, XPReward: 5},
	{Name: "Meditar 10 minutos", Description: "Sessão curta de meditação guiada", Type: "MEDITACAO", Frequency: models.FrequencyDaily, XPReward: 10},
}

var defaultTypeOptions = []models.ChallengeTypeOptions{
	{Type: "LEITURA", Options: datatypes.JSON(`{"paginas":[5,10,20,50],"genero":["ficcao","nao-ficcao","tecnico"]}`)},
	{Type: "EXERCICIO", Options: datatypes.JSON(`{"minutos":[15,30,45,60],"modalidade":["caminhada","corrida","musculacao","bicicleta"]}`)},
	{Type: "HIDRATACAO", Options: datatypes.JSON(`{"litros":[1,1.5,2,3]}`)},
	{Type: "MEDITACAO", Options: datatypes.JSON(`{"minutos":[5,10,20]}`)},
}

// defaultAchievements covers every requirement kind the engine knows.
var defaultAchievements = []models.Achievement{
	{Name: "Primeiro Passo", Description: "Concluiu o primeiro desafio", Requirement: "Concluir 1 desafios total"},
	{Name: "Persistente", Description: "Concluiu 10 desafios", Requirement: "Concluir 10 desafios total"},
	{Name: "Incansável", Description: "Concluiu 50 desafios", Requirement: "Concluir 50 desafios total"},
	{Name: "Em Chamas", Description: "Três dias seguidos de atividade", Requirement: "Completar 3 dias seguidos"},
	{Name: "Semana Perfeita", Description: "Sete dias seguidos de atividade", Requirement: "Completar 7 dias seguidos"},
	{Name: "Centenário", Description: "Acumulou 100 XP", Requirement: "Acumular 100 XP"},
	{Name: "Milionário de XP", Description: "Acumulou 1000 XP", Requirement: "Acumular 1000 XP"},
	{Name: "Leitor Assíduo", Description: "Concluiu 5 desafios de leitura", Requirement: "Concluir 5 desafios tipo LEITURA"},
	{Name: "Atleta", Description: "Concluiu 5 desafios de exercício", Requirement: "Concluir 5 desafios tipo EXERCICIO"},
}

// SeedCatalogs inserts the default catalogs. Existing rows, matched by
// their unique name, are left untouched so the call is idempotent.
func SeedCatalogs(db *gorm.DB, log *logger.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, t := range defaultGoalTemplates {
			t := t
			if err := tx.Where(models.GoalTemplate{Name: t.Name}).FirstOrCreate(&t).Error; err != nil {
				return err
			}
		}
		for _, t := range defaultChallengeTemplates {
			t := t
			if err := tx.Where(models.ChallengeTemplate{Name: t.Name}).FirstOrCreate(&t).Error; err != nil {
				return err
			}
		}
		for _, o := range defaultTypeOptions {
			o := o
			if err := tx.Where(models.ChallengeTypeOptions{Type: o.Type}).FirstOrCreate(&o).Error; err != nil {
				return err
			}
		}
		for _, a := range defaultAchievements {
			a := a
			if err := tx.Where(models.Achievement{Name: a.Name}).FirstOrCreate(&a).Error; err != nil {
				return err
			}
		}

		log.Info("catalogs seeded",
			"goal_templates", len(defaultGoalTemplates),
			"challenge_templates", len(defaultChallengeTemplates),
			"achievements", len(defaultAchievements),
		)
		return nil
	})
}
