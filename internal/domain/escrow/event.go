package escrow

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/tensaku-lab/backend/internal/common"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/pkg/pubsub"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

// Event is the message published for every reward transition.
type Event struct {
	PostID           string    `json:"post_id"`
	Type             string    `json:"type"`
	Amount           int64     `json:"amount"`
	PaymentReference string    `json:"payment_reference,omitempty"`
	CritiqueID       string    `json:"critique_id,omitempty"`
	Detail           string    `json:"detail,omitempty"`
	At               time.Time `json:"at"`
}

func ParseEvent(b []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func newEvent(ctx context.Context, t entity.RewardEventType, post *entity.Post, detail string) *entity.RewardEvent {
	return &entity.RewardEvent{
		SnowFlakeBase:    entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		PostID:           post.ID,
		AuthorID:         post.AuthorID,
		Type:             t,
		Amount:           post.RewardAmount,
		PaymentReference: post.PaymentReference,
		CritiqueID:       post.BestCritiqueID,
		Detail:           detail,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// publish sends the event after the transition was committed. Failures are
// only logged since the reward_events table is the record.
func (m *Manager) publish(ctx context.Context, event *entity.RewardEvent) {
	common.PromCounters[common.RewardTransitionTotal].WithLabelValues(string(event.Type)).Inc()

	b, err := json.Marshal(Event{
		PostID:           event.PostID,
		Type:             string(event.Type),
		Amount:           event.Amount,
		PaymentReference: event.PaymentReference.String,
		CritiqueID:       event.CritiqueID.String,
		Detail:           event.Detail,
		At:               time.Now(),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal reward event: %v", err)
		return
	}

	err = m.publisher.Publish(ctx, common.KafkaTopicReward(event.Type), &pubsub.Pack{
		Key: []byte(event.PostID),
		Msg: b,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish %s event of post %s: %v", event.Type, event.PostID, err)
	}
}
