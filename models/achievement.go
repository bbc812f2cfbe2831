// models/achievement.go
package models

import "time"

// Achievement is a catalog entry. Requirement holds the catalog's
// requirement text, e.g. "Concluir 10 desafios total"; it is parsed by
// the achievements package when the catalog is loaded.
type Achievement struct {
	ID          uint   `gorm:"column:id_conquista;primaryKey" json:"id_conquista"`
	Name        string `gorm:"column:nome_conquista;size:120;not null;uniqueIndex" json:"nome_conquista"`
	Description string `gorm:"column:descricao;type:text" json:"descricao"`
	BadgeURL    string `gorm:"column:url_emblema;size:500" json:"url_emblema"`
	Requirement string `gorm:"column:requisito;size:255;not null" json:"requisito"`
}

func (Achievement) TableName() string {
	return "conquistas"
}

// UserAchievement is a grant. The composite primary key makes a second
// grant of the same achievement to the same user impossible.
type UserAchievement struct {
	UserID        uint      `gorm:"column:id_usuario;primaryKey;autoIncrement:false" json:"id_usuario"`
	AchievementID uint      `gorm:"column:id_conquista;primaryKey;autoIncrement:false" json:"id_conquista"`
	GrantedAt     time.Time `gorm:"column:data_conquista;autoCreateTime" json:"data_conquista"`
}

func (UserAchievement) TableName() string {
	return "usuario_conquista"
}

// GrantedAchievement is the read model for a user's unlocked achievements.
type GrantedAchievement struct {
	Name        string    `gorm:"column:nome_conquista" json:"nome_conquista"`
	Description string    `gorm:"column:descricao" json:"descricao"`
	BadgeURL    string    `gorm:"column:url_emblema" json:"url_emblema"`
	GrantedAt   time.Time `gorm:"column:data_conquista" json:"data_conquista"`
}
