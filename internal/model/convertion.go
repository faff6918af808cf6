package model

import (
	"time"

	"github.com/tensaku-lab/backend/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func ConvertShortUser(user *entity.User) ShortUser {
	if user == nil {
		return ShortUser{}
	}

	return ShortUser{
		ID:          user.ID,
		Handle:      user.Handle,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL.String,
	}
}

// ConvertUser hides the payout account unless includeSensitive is set.
func ConvertUser(user *entity.User, includeSensitive bool) User {
	if user == nil {
		return User{}
	}

	result := User{
		ShortUser: ConvertShortUser(user),
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt.Format(DefaultTimeLayout),
	}

	if includeSensitive {
		result.PayoutAccount = user.PayoutAccount.String
	}

	return result
}

func ConvertReward(post *entity.Post) Reward {
	return Reward{
		Amount:           post.RewardAmount,
		Status:           string(post.RewardStatus),
		PaymentReference: post.PaymentReference.String,
		BestCritiqueID:   post.BestCritiqueID.String,
		Settled:          post.RewardSettled,
	}
}

func ConvertCritique(critique *entity.Critique, author ShortUser) Critique {
	return Critique{
		ID:         critique.ID,
		PostID:     critique.PostID,
		Author:     author,
		Content:    critique.Content,
		ImageURL:   critique.ImageURL.String,
		LikesCount: critique.LikeCount,
		CreatedAt:  critique.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertPost(post *entity.Post, author ShortUser) PostView {
	return PostView{
		ID:           post.ID,
		Author:       author,
		Content:      post.Content,
		ImageURL:     post.ImageURL.String,
		CreatedAt:    post.CreatedAt.Format(DefaultTimeLayout),
		Reward:       ConvertReward(post),
		RepostsCount: post.RepostCount,
	}
}

func ConvertPayment(post *entity.Post, processorStatus string) Payment {
	return Payment{
		PaymentReference: post.PaymentReference.String,
		ProcessorStatus:  processorStatus,
		PostID:           post.ID,
		Amount:           post.RewardAmount,
		Status:           string(post.RewardStatus),
		Settled:          post.RewardSettled,
		Recorded:         true,
		CreatedAt:        post.CreatedAt.Format(DefaultTimeLayout),
	}
}

// ConvertUnrecordedPayment describes a captured payment whose post was never
// stored.
func ConvertUnrecordedPayment(
	reference, postID string, amount int64, processorStatus string, createdAt time.Time,
) Payment {
	return Payment{
		PaymentReference: reference,
		ProcessorStatus:  processorStatus,
		PostID:           postID,
		Amount:           amount,
		Status:           string(entity.RewardEventReconcileRequired),
		CreatedAt:        createdAt.Format(DefaultTimeLayout),
	}
}
