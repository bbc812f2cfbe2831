package services

import (
	"context"
	"errors"
	"fmt"

	"habitxp/database"
	"habitxp/logger"
	"habitxp/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionStatus is the defined outcome of a completion attempt.
type CompletionStatus string

const (
	StatusOK        CompletionStatus = "ok"
	StatusDuplicate CompletionStatus = "duplicate"
	// StatusForbidden covers both a missing challenge and one owned by
	// someone else; callers cannot tell them apart.
	StatusForbidden CompletionStatus = "forbidden"
)

type CompletionResult struct {
	Status          CompletionStatus `json:"status"`
	XPEarned        int              `json:"xp_ganho"`
	NewAchievements []string         `json:"novas_conquistas"`
}

// AchievementGranter grants achievements inside an open unit of work.
type AchievementGranter interface {
	EvaluateAndGrant(uow database.UnitOfWork, userID uint) ([]string, error)
}

// CompletionRecorder logs a challenge completion, credits its XP and
// runs achievement evaluation, all in one transaction.
type CompletionRecorder struct {
	tx      database.TxRunner
	granter AchievementGranter
	log     *logger.Logger
}

func NewCompletionRecorder(tx database.TxRunner, granter AchievementGranter, log *logger.Logger) *CompletionRecorder {
	if log == nil {
		log = logger.Nop()
	}
	return &CompletionRecorder{tx: tx, granter: granter, log: log.With("component", "completion")}
}

// RecordCompletion records that userID completed challengeID on today.
// Duplicate and forbidden attempts are outcomes, not errors, and leave
// the database untouched. A non-nil error means nothing was written.
func (r *CompletionRecorder) RecordCompletion(ctx context.Context, userID, challengeID uint, today models.Day) (CompletionResult, error) {
	var result CompletionResult

	err := r.tx.InTx(ctx, func(uow database.UnitOfWork) error {
		db := uow.DB()

		var existing int64
		if err := db.Model(&models.HistoryEntry{}).
			Where("id_usuario = ? AND id_desafio = ? AND data_execucao = ? AND status = ?",
				userID, challengeID, today, models.HistoryStatusCompleted).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check existing completion: %w", err)
		}
		if existing > 0 {
			result = CompletionResult{Status: StatusDuplicate}
			return nil
		}

		reward, err := ownedChallengeReward(db, userID, challengeID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result = CompletionResult{Status: StatusForbidden}
			return nil
		}
		if err != nil {
			return err
		}

		entry := models.HistoryEntry{
			UserID:      userID,
			ChallengeID: challengeID,
			Date:        today,
			Status:      models.HistoryStatusCompleted,
			XPEarned:    reward,
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
		if res.Error != nil && !database.IsDuplicateKey(res.Error) {
			return fmt.Errorf("insert history: %w", res.Error)
		}
		if res.Error != nil || res.RowsAffected == 0 {
			// A concurrent request recorded the same day first.
			result = CompletionResult{Status: StatusDuplicate}
			return nil
		}

		if err := db.Model(&models.User{}).
			Where("id_usuario = ?", userID).
			Update("xp_total", gorm.Expr("xp_total + ?", reward)).Error; err != nil {
			return fmt.Errorf("credit xp: %w", err)
		}

		names, err := r.granter.EvaluateAndGrant(uow, userID)
		if err != nil {
			return fmt.Errorf("evaluate achievements: %w", err)
		}

		result = CompletionResult{Status: StatusOK, XPEarned: reward, NewAchievements: names}
		return nil
	})
	if err != nil {
		r.log.Error("completion rolled back", "user_id", userID, "id_desafio", challengeID, "error", err)
		return CompletionResult{}, err
	}

	if result.NewAchievements == nil {
		result.NewAchievements = []string{}
	}
	if result.Status == StatusOK {
		r.log.Info("challenge completed",
			"user_id", userID,
			"id_desafio", challengeID,
			"xp_ganho", result.XPEarned,
			"novas_conquistas", len(result.NewAchievements),
		)
	}
	return result, nil
}

// ownedChallengeReward returns the challenge's XP reward if it belongs
// to a live goal of userID, or gorm.ErrRecordNotFound.
func ownedChallengeReward(db *gorm.DB, userID, challengeID uint) (int, error) {
	var row struct {
		XPReward int `gorm:"column:xp_recompensa"`
	}
	err := db.Table("desafios AS d").
		Select("d.xp_recompensa").
		Joins("JOIN objetivos o ON o.id_objetivo = d.id_objetivo").
		Where("d.id_desafio = ? AND o.id_usuario = ?", challengeID, userID).
		Where("d.data_exclusao IS NULL AND o.data_exclusao IS NULL").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("resolve challenge ownership: %w", err)
	}
	return row.XPReward, nil
}
