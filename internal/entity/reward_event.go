package entity

import (
	"database/sql"

	"github.com/tensaku-lab/backend/pkg/enum"
)

type RewardEventType string

var (
	RewardEventCaptured          = enum.New(RewardEventType("captured"))
	RewardEventBestSelected      = enum.New(RewardEventType("best_selected"))
	RewardEventSettled           = enum.New(RewardEventType("settled"))
	RewardEventSettlementFailed  = enum.New(RewardEventType("settlement_failed"))
	RewardEventReconcileRequired = enum.New(RewardEventType("reconcile_required"))
)

// RewardEvent is an append-only audit row. It has no foreign key to posts, so
// it survives a failed post insert.
type RewardEvent struct {
	SnowFlakeBase
	PostID           string          `gorm:"index"`
	AuthorID         string
	Type             RewardEventType `gorm:"not null"`
	Amount           int64
	PaymentReference sql.NullString `gorm:"index"`
	CritiqueID       sql.NullString
	Detail           string
}
