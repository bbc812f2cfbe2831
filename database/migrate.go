// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"

	"habitxp/logger"
	"habitxp/models"

	"gorm.io/gorm"
)

// RunMigrations creates or updates every table, adds the secondary
// indexes and seeds the catalogs.
func RunMigrations(db *gorm.DB, log *logger.Logger) error {
	log.Info("running database migrations")

	if err := db.AutoMigrate(
		&models.User{},
		&models.GoalTemplate{},
		&models.Goal{},
		&models.ChallengeTemplate{},
		&models.ChallengeTypeOptions{},
		&models.Challenge{},
		&models.HistoryEntry{},
		&models.Achievement{},
		&models.UserAchievement{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	createIndexes(db, log)

	if err := SeedCatalogs(db, log); err != nil {
		return fmt.Errorf("failed to seed catalogs: %w", err)
	}

	log.Info("migrations completed")
	return nil
}

// createIndexes adds the composite indexes the read paths rely on.
// Failures are logged; a missing index only costs performance.
func createIndexes(db *gorm.DB, log *logger.Logger) {
	m := db.Migrator()
	indexes := []struct {
		model interface{}
		name  string
		sql   string
	}{
		{&models.HistoryEntry{}, "idx_historico_usuario_status_data", "CREATE INDEX idx_historico_usuario_status_data ON historico_desafio(id_usuario, status, data_execucao)"},
		{&models.Goal{}, "idx_objetivos_usuario_status", "CREATE INDEX idx_objetivos_usuario_status ON objetivos(id_usuario, status)"},
		{&models.UserAchievement{}, "idx_usuario_conquista_data", "CREATE INDEX idx_usuario_conquista_data ON usuario_conquista(id_usuario, data_conquista)"},
	}

	for _, idx := range indexes {
		if m.HasIndex(idx.model, idx.name) {
			continue
		}
		if err := db.Exec(idx.sql).Error; err != nil {
			log.Warn("failed to create index", "index", idx.name, "error", err)
		}
	}
}
