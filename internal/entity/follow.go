package entity

import "time"

type Follow struct {
	FollowerID string `gorm:"primaryKey"`
	Follower   User   `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`

	FolloweeID string `gorm:"primaryKey;index"`
	Followee   User   `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}
