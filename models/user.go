// models/user.go
package models

import (
	"time"
)

type User struct {
	ID            uint    `gorm:"column:id_usuario;primaryKey" json:"id_usuario"`
	Name          string  `gorm:"column:nome;size:120" json:"nome"`
	Email         *string `gorm:"column:email;size:190;uniqueIndex" json:"email,omitempty"`
	PasswordHash  *string `gorm:"column:senha_hash;size:100" json:"-"`
	GoogleID      *string `gorm:"column:google_id;size:64;uniqueIndex" json:"-"`
	PhotoURL      *string `gorm:"column:foto_url;size:500" json:"foto_url"`
	EmailVerified bool    `gorm:"column:email_verificado;default:false" json:"email_verificado"`

	// Progression. Only the completion recorder writes XPTotal.
	XPTotal int `gorm:"column:xp_total;not null;default:0" json:"xp_total"`

	CreatedAt time.Time `gorm:"column:data_cadastro;autoCreateTime" json:"data_cadastro"`
	UpdatedAt time.Time `gorm:"column:data_atualizacao;autoUpdateTime" json:"-"`
}

func (User) TableName() string {
	return "usuarios"
}

// HasPassword reports whether the account can use email/password login.
// Accounts created through Google sign-in have no password hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
