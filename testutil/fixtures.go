package testutil

import (
	"context"
	"fmt"
	"testing"

	"habitxp/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedUser creates a user with password "secret123".
func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *models.User {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	h := string(hash)
	u := &models.User{
		Name:         "Ana",
		Email:        &email,
		PasswordHash: &h,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedGoal(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uint) *models.Goal {
	tb.Helper()
	g := &models.Goal{
		UserID: userID,
		Name:   fmt.Sprintf("objetivo-%d", userID),
		Status: models.GoalStatusActive,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed goal: %v", err)
	}
	return g
}

func SeedChallenge(tb testing.TB, ctx context.Context, tx *gorm.DB, goalID uint, tipo string, xp int) *models.Challenge {
	tb.Helper()
	c := &models.Challenge{
		GoalID:    goalID,
		Name:      "desafio " + tipo,
		Type:      tipo,
		Frequency: models.FrequencyDaily,
		XPReward:  xp,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed challenge: %v", err)
	}
	return c
}

// SeedCompletion inserts a completed history row and adds its XP to
// the user, keeping xp_total equal to the history sum.
func SeedCompletion(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uint, ch *models.Challenge, day models.Day) {
	tb.Helper()
	h := &models.HistoryEntry{
		UserID:      userID,
		ChallengeID: ch.ID,
		Date:        day,
		Status:      models.HistoryStatusCompleted,
		XPEarned:    ch.XPReward,
	}
	if err := tx.WithContext(ctx).Create(h).Error; err != nil {
		tb.Fatalf("seed completion: %v", err)
	}
	if err := tx.WithContext(ctx).Model(&models.User{}).
		Where("id_usuario = ?", userID).
		Update("xp_total", gorm.Expr("xp_total + ?", ch.XPReward)).Error; err != nil {
		tb.Fatalf("seed xp: %v", err)
	}
}

// ReplaceAchievements swaps the seeded catalog for the given entries.
func ReplaceAchievements(tb testing.TB, ctx context.Context, tx *gorm.DB, defs ...models.Achievement) []models.Achievement {
	tb.Helper()
	if err := tx.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserAchievement{}).Error; err != nil {
		tb.Fatalf("clear grants: %v", err)
	}
	if err := tx.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Achievement{}).Error; err != nil {
		tb.Fatalf("clear catalog: %v", err)
	}
	for i := range defs {
		if err := tx.WithContext(ctx).Create(&defs[i]).Error; err != nil {
			tb.Fatalf("seed achievement %q: %v", defs[i].Name, err)
		}
	}
	return defs
}
