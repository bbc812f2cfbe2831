// models/challenge.go - Challenge (desafio) data models
package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Challenge frequency values
const (
	FrequencyDaily   = "diaria"
	FrequencyWeekly  = "semanal"
	FrequencyMonthly = "mensal"
)

// DefaultXPReward is used when neither the request nor the template sets one.
const DefaultXPReward = 10

// Challenge is a recurring activity attached to a goal.
type Challenge struct {
	ID              uint           `gorm:"column:id_desafio;primaryKey" json:"id_desafio"`
	GoalID          uint           `gorm:"column:id_objetivo;not null;index" json:"id_objetivo"`
	TemplateID      *uint          `gorm:"column:id_catalogo" json:"id_catalogo,omitempty"`
	Name            string         `gorm:"column:nome_desafio;size:150;not null" json:"nome_desafio"`
	Type            string         `gorm:"column:tipo_desafio;size:50;not null;index" json:"tipo_desafio"`
	Frequency       string         `gorm:"column:frequencia;size:30;not null;default:'diaria'" json:"frequencia"`
	XPReward        int            `gorm:"column:xp_recompensa;not null;default:10" json:"xp_recompensa"`
	Personalization datatypes.JSON `gorm:"column:personalizacao" json:"personalizacao,omitempty"`
	CreatedAt       time.Time      `gorm:"column:data_criacao;autoCreateTime" json:"data_criacao"`
	DeletedAt       gorm.DeletedAt `gorm:"column:data_exclusao;index" json:"-"`
}

func (Challenge) TableName() string {
	return "desafios"
}

// ChallengeTemplate is a catalog entry users instantiate challenges from.
type ChallengeTemplate struct {
	ID          uint   `gorm:"column:id_catalogo;primaryKey" json:"id_catalogo"`
	Name        string `gorm:"column:nome_modelo;size:150;not null;uniqueIndex" json:"nome_modelo"`
	Description string `gorm:"column:descricao_modelo;type:text" json:"descricao_modelo"`
	Type        string `gorm:"column:tipo_desafio;size:50;not null;index" json:"tipo_desafio"`
	Frequency   string `gorm:"column:frequencia;size:30;not null" json:"frequencia"`
	XPReward    int    `gorm:"column:xp_recompensa;not null" json:"xp_recompensa"`
}

func (ChallengeTemplate) TableName() string {
	return "catalogo_desafios"
}

// ChallengeTypeOptions lists how challenges of one type may be personalized,
// e.g. pages per day for LEITURA.
type ChallengeTypeOptions struct {
	Type    string         `gorm:"column:tipo_desafio;size:50;primaryKey" json:"tipo_desafio"`
	Options datatypes.JSON `gorm:"column:opcoes" json:"opcoes"`
}

func (ChallengeTypeOptions) TableName() string {
	return "opcoes_personalizacao"
}
