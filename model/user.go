package model

import "time"

// AppUser mirrors the support-panel user record. Identity itself lives in the
// external provider; this row only carries the authorization flags the proxy
// checks before running PJe queries.
type AppUser struct {
	ID          string `gorm:"primaryKey;type:text;not null"`
	Email       string `gorm:"uniqueIndex;size:255"`
	CanQueryPJe bool   `gorm:"column:can_query_pje;default:false;not null"`
	IsAdmin     bool   `gorm:"default:false;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AppUser) TableName() string {
	return "app_users"
}
