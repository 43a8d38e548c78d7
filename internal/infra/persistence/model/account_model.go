// Package model holds the GORM persistence models.
package model

import "time"

// AccountModel mirrors the 'accounts' table. PostgreSQL assigns ids from a bigserial sequence.
type AccountModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Name         *string   `gorm:"type:varchar(255)"`
	Email        string    `gorm:"type:varchar(320);not null;uniqueIndex:idx_accounts_email"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

// All returns every model managed by the migrator, in creation order.
func All() []any {
	return []any{&AccountModel{}}
}
