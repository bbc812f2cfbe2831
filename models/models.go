// models/models.go - Goals and completion history
package models

import (
	"time"

	"gorm.io/gorm"
)

// Goal status values
const (
	GoalStatusActive    = "ativo"
	GoalStatusCompleted = "concluido"
	GoalStatusPaused    = "pausado"
)

// History status values
const (
	HistoryStatusCompleted = "concluido"
	HistoryStatusSkipped   = "pulado"
)

// Goal is a user-owned container for related challenges.
type Goal struct {
	ID          uint           `gorm:"column:id_objetivo;primaryKey" json:"id_objetivo"`
	UserID      uint           `gorm:"column:id_usuario;not null;index" json:"-"`
	Name        string         `gorm:"column:nome_objetivo;size:150;not null" json:"nome_objetivo"`
	Description *string        `gorm:"column:descricao;type:text" json:"descricao"`
	DueDate     *Day           `gorm:"column:data_conclusao;type:varchar(10)" json:"data_conclusao"`
	Status      string         `gorm:"column:status;size:20;not null;default:'ativo';index" json:"status"`
	CreatedAt   time.Time      `gorm:"column:data_criacao;autoCreateTime" json:"data_criacao"`
	DeletedAt   gorm.DeletedAt `gorm:"column:data_exclusao;index" json:"-"`
}

func (Goal) TableName() string {
	return "objetivos"
}

// GoalTemplate is a catalog entry users can pick a goal from.
type GoalTemplate struct {
	ID            uint   `gorm:"column:id_catalogo;primaryKey" json:"id_catalogo"`
	Name          string `gorm:"column:nome_modelo;size:150;not null;uniqueIndex" json:"nome_modelo"`
	Description   string `gorm:"column:descricao_modelo;type:text" json:"descricao_modelo"`
	SuggestedType string `gorm:"column:tipo_sugerido;size:50" json:"tipo_sugerido"`
}

func (GoalTemplate) TableName() string {
	return "catalogo_objetivos"
}

// HistoryEntry records one execution of a challenge on one calendar day.
// ux_historico_dia makes a second completed row for the same
// (user, challenge, day) impossible regardless of concurrent requests.
type HistoryEntry struct {
	ID          uint      `gorm:"column:id_historico;primaryKey" json:"id_historico"`
	UserID      uint      `gorm:"column:id_usuario;not null;uniqueIndex:ux_historico_dia,priority:1;index" json:"-"`
	ChallengeID uint      `gorm:"column:id_desafio;not null;uniqueIndex:ux_historico_dia,priority:2;index" json:"id_desafio"`
	Date        Day       `gorm:"column:data_execucao;type:varchar(10);not null;uniqueIndex:ux_historico_dia,priority:3;index" json:"data_execucao"`
	Status      string    `gorm:"column:status;size:20;not null;default:'concluido';uniqueIndex:ux_historico_dia,priority:4" json:"status"`
	XPEarned    int       `gorm:"column:xp_ganho;not null;default:0" json:"xp_ganho"`
	CreatedAt   time.Time `gorm:"column:data_registro;autoCreateTime" json:"-"`
}

func (HistoryEntry) TableName() string {
	return "historico_desafio"
}

// DailyHistoryRow is the read model for the daily dashboard.
type DailyHistoryRow struct {
	Date          Day    `gorm:"column:data_execucao" json:"data_execucao"`
	XPEarned      int    `gorm:"column:xp_ganho" json:"xp_ganho"`
	Status        string `gorm:"column:status" json:"status"`
	ChallengeName string `gorm:"column:nome_desafio" json:"nome_desafio"`
	ChallengeType string `gorm:"column:tipo_desafio" json:"tipo_desafio"`
}
