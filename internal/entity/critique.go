package entity

import (
	"database/sql"
	"time"
)

type Critique struct {
	Base
	PostID   string `gorm:"not null;index"`
	Post     Post   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	AuthorID string `gorm:"not null;index"`
	Author   User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Content  string `gorm:"type:text;not null"`
	ImageURL sql.NullString

	LikeCount int64 `gorm:"not null;default:0"`
}

type CritiqueLike struct {
	CritiqueID string   `gorm:"primaryKey"`
	Critique   Critique `gorm:"foreignKey:CritiqueID;constraint:OnDelete:CASCADE"`
	UserID     string   `gorm:"primaryKey;index"`
	User       User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
}
