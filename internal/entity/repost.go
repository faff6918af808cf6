package entity

import "time"

type Repost struct {
	UserID    string    `gorm:"primaryKey"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PostID    string    `gorm:"primaryKey;index"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"index"`
}
