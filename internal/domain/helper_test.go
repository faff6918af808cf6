package domain

import (
	"github.com/tensaku-lab/backend/internal/domain/escrow"
	"github.com/tensaku-lab/backend/internal/domain/feed"
	"github.com/tensaku-lab/backend/internal/domain/toggle"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/payment"
	"github.com/tensaku-lab/backend/pkg/testutil"
)

func newTestEscrow(processor payment.Processor) *escrow.Manager {
	return escrow.NewManager(
		repository.NewPostRepository(),
		repository.NewCritiqueRepository(),
		repository.NewUserRepository(),
		repository.NewRewardEventRepository(),
		processor,
		&testutil.MockRedisClient{},
		&testutil.MockPublisher{},
	)
}

func newTestComposer() *feed.Composer {
	return feed.NewComposer(
		repository.NewUserRepository(),
		repository.NewFollowRepository(),
		repository.NewPostRepository(),
		repository.NewRepostRepository(),
		repository.NewCritiqueRepository(),
	)
}

func newTestPostDomain(processor payment.Processor) *postDomain {
	return NewPostDomain(
		repository.NewPostRepository(),
		repository.NewRepostRepository(),
		repository.NewCritiqueRepository(),
		repository.NewCritiqueLikeRepository(),
		repository.NewUserRepository(),
		newTestComposer(),
		newTestEscrow(processor),
		toggle.NewEngine(),
	)
}

func newTestCritiqueDomain() *critiqueDomain {
	return NewCritiqueDomain(
		repository.NewPostRepository(),
		repository.NewCritiqueRepository(),
		repository.NewCritiqueLikeRepository(),
		repository.NewUserRepository(),
		toggle.NewEngine(),
	)
}

func newTestFollowDomain() *followDomain {
	return NewFollowDomain(repository.NewFollowRepository(), repository.NewUserRepository(), toggle.NewEngine())
}
