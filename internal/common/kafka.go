package common

import "github.com/tensaku-lab/backend/internal/entity"

const KafkaTopicRewardPrefix = "reward."

// KafkaTopicReward is the topic every reward event of the given type is
// published to.
func KafkaTopicReward(t entity.RewardEventType) string {
	return KafkaTopicRewardPrefix + string(t)
}
