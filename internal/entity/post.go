package entity

import (
	"database/sql"

	"github.com/tensaku-lab/backend/pkg/enum"
)

type RewardStatus string

var (
	RewardNone       = enum.New(RewardStatus("none"))
	RewardCaptured   = enum.New(RewardStatus("captured"))
	RewardBestChosen = enum.New(RewardStatus("best_chosen"))
	RewardSettled    = enum.New(RewardStatus("settled"))
)

type Post struct {
	Base
	AuthorID string `gorm:"not null;index"`
	Author   User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Content  string `gorm:"type:text;not null"`
	ImageURL sql.NullString

	RewardAmount     int64          `gorm:"not null;default:0"`
	RewardStatus     RewardStatus   `gorm:"not null;default:none;index"`
	PaymentReference sql.NullString `gorm:"unique"`
	BestCritiqueID   sql.NullString
	RewardSettled    bool `gorm:"not null;default:false"`

	RepostCount int64 `gorm:"not null;default:0"`
}
