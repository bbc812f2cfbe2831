// catalog-import loads goal templates, challenge templates, type
// options and achievements from a JSON file into the configured
// database. Entries are matched by name, so re-running it is safe.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"habitxp/achievements"
	"habitxp/config"
	"habitxp/database"
	"habitxp/logger"
	"habitxp/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type catalogFile struct {
	GoalTemplates      []models.GoalTemplate         `json:"catalogo_objetivos"`
	ChallengeTemplates []models.ChallengeTemplate    `json:"catalogo_desafios"`
	TypeOptions        []models.ChallengeTypeOptions `json:"opcoes_personalizacao"`
	Achievements       []models.Achievement          `json:"conquistas"`
}

func main() {
	path := flag.String("file", "./data/catalog.json", "catalog JSON file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer log.Sync()

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal("failed to read catalog file", "path", *path, "error", err)
	}
	var catalog catalogFile
	if err := json.Unmarshal(data, &catalog); err != nil {
		log.Fatal("failed to parse catalog file", "path", *path, "error", err)
	}

	// Unparseable requirements would never be granted; refuse the file.
	rows := make([]models.Achievement, len(catalog.Achievements))
	copy(rows, catalog.Achievements)
	if _, invalid := achievements.BuildCatalog(rows); len(invalid) > 0 {
		for _, bad := range invalid {
			log.Error("invalid requirement", "nome_conquista", bad.Name, "requisito", bad.Text, "error", bad.Err)
		}
		log.Fatal("catalog rejected", "invalid", len(invalid))
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	if err := database.RunMigrations(db, log); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	if err := importCatalog(db, &catalog); err != nil {
		log.Fatal("import failed", "error", err)
	}
	log.Info("catalog imported",
		"catalogo_objetivos", len(catalog.GoalTemplates),
		"catalogo_desafios", len(catalog.ChallengeTemplates),
		"opcoes_personalizacao", len(catalog.TypeOptions),
		"conquistas", len(catalog.Achievements),
	)
}

func importCatalog(db *gorm.DB, c *catalogFile) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, t := range c.GoalTemplates {
			t.ID = 0
			if err := tx.Where(models.GoalTemplate{Name: t.Name}).
				Assign(models.GoalTemplate{Description: t.Description, SuggestedType: t.SuggestedType}).
				FirstOrCreate(&t).Error; err != nil {
				return fmt.Errorf("catalogo_objetivos %q: %w", t.Name, err)
			}
		}
		for _, t := range c.ChallengeTemplates {
			t.ID = 0
			if err := tx.Where(models.ChallengeTemplate{Name: t.Name}).
				Assign(models.ChallengeTemplate{Description: t.Description, Type: t.Type, Frequency: t.Frequency, XPReward: t.XPReward}).
				FirstOrCreate(&t).Error; err != nil {
				return fmt.Errorf("catalogo_desafios %q: %w", t.Name, err)
			}
		}
		if len(c.TypeOptions) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tipo_desafio"}},
				DoUpdates: clause.AssignmentColumns([]string{"opcoes"}),
			}).CreateInBatches(c.TypeOptions, 100).Error; err != nil {
				return fmt.Errorf("opcoes_personalizacao: %w", err)
			}
		}
		for _, a := range c.Achievements {
			a.ID = 0
			if err := tx.Where(models.Achievement{Name: a.Name}).
				Assign(models.Achievement{Description: a.Description, BadgeURL: a.BadgeURL, Requirement: a.Requirement}).
				FirstOrCreate(&a).Error; err != nil {
				return fmt.Errorf("conquistas %q: %w", a.Name, err)
			}
		}
		return nil
	})
}
