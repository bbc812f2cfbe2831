package achievements

import (
	"fmt"
	"time"

	"habitxp/database"
	"habitxp/models"

	"gorm.io/gorm/clause"
)

// GormStore implements Store with gorm.
type GormStore struct{}

func NewGormStore() *GormStore {
	return &GormStore{}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) ListAchievements(uow database.UnitOfWork) ([]models.Achievement, error) {
	var rows []models.Achievement
	if err := uow.DB().Order("id_conquista ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return rows, nil
}

func (s *GormStore) XPTotal(uow database.UnitOfWork, userID uint) (int, error) {
	var xp []int
	if err := uow.DB().Model(&models.User{}).
		Where("id_usuario = ?", userID).
		Pluck("xp_total", &xp).Error; err != nil {
		return 0, fmt.Errorf("load xp_total: %w", err)
	}
	if len(xp) == 0 {
		return 0, nil
	}
	return xp[0], nil
}

func (s *GormStore) GrantedIDs(uow database.UnitOfWork, userID uint) (map[uint]struct{}, error) {
	var ids []uint
	if err := uow.DB().Model(&models.UserAchievement{}).
		Where("id_usuario = ?", userID).
		Pluck("id_conquista", &ids).Error; err != nil {
		return nil, fmt.Errorf("load granted achievements: %w", err)
	}
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (s *GormStore) CountCompletions(uow database.UnitOfWork, userID uint) (int, error) {
	var n int64
	if err := uow.DB().Model(&models.HistoryEntry{}).
		Where("id_usuario = ? AND status = ?", userID, models.HistoryStatusCompleted).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return int(n), nil
}

func (s *GormStore) RecentCompletionDays(uow database.UnitOfWork, userID uint, limit int) ([]models.Day, error) {
	if limit <= 0 {
		return nil, nil
	}
	var raw []string
	if err := uow.DB().Model(&models.HistoryEntry{}).
		Distinct("data_execucao").
		Where("id_usuario = ? AND status = ?", userID, models.HistoryStatusCompleted).
		Order("data_execucao DESC").
		Limit(limit).
		Pluck("data_execucao", &raw).Error; err != nil {
		return nil, fmt.Errorf("load recent completion days: %w", err)
	}
	days := make([]models.Day, 0, len(raw))
	for _, v := range raw {
		d, err := models.ParseDay(v)
		if err != nil {
			return nil, fmt.Errorf("load recent completion days: %w", err)
		}
		days = append(days, d)
	}
	return days, nil
}

// CountCompletionsOfType counts history of soft-deleted challenges too;
// the XP they earned was never taken back.
func (s *GormStore) CountCompletionsOfType(uow database.UnitOfWork, userID uint, tipo string) (int, error) {
	var n int64
	if err := uow.DB().Table("historico_desafio AS hd").
		Joins("JOIN desafios d ON d.id_desafio = hd.id_desafio").
		Where("hd.id_usuario = ? AND hd.status = ? AND d.tipo_desafio = ?", userID, models.HistoryStatusCompleted, tipo).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count completions of type %q: %w", tipo, err)
	}
	return int(n), nil
}

func (s *GormStore) InsertGrant(uow database.UnitOfWork, userID, achievementID uint) (bool, error) {
	grant := models.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		GrantedAt:     time.Now().UTC(),
	}
	res := uow.DB().Clauses(clause.OnConflict{DoNothing: true}).Create(&grant)
	if res.Error != nil {
		if database.IsDuplicateKey(res.Error) {
			return false, nil
		}
		return false, fmt.Errorf("insert grant: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
