package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/tensaku-lab/backend/internal/common"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/pkg/kafka"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startSettler(*cli.Context) error {
	defer s.close()

	if err := s.loadDatabase(); err != nil {
		return err
	}
	if err := s.loadSnowflake(); err != nil {
		return err
	}
	if err := s.loadRedis(); err != nil {
		return err
	}
	if err := s.loadPublisher(); err != nil {
		return err
	}
	s.loadPayment()
	s.loadRepos()
	s.loadEscrow()

	cfg := xcontext.Configs(s.ctx)
	subscriber, err := kafka.NewSubscriber(
		cfg.Kafka.GroupID,
		brokerAddrs(cfg.Kafka.Addr),
		[]string{common.KafkaTopicReward(entity.RewardEventSettlementFailed)},
		s.escrowManager.NewSettlementFailedHandler(cfg.Reward.SettleRetryInterval),
	)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, subscriber.Stop)

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	xcontext.Logger(ctx).Infof("Settler is consuming %s", common.KafkaTopicReward(entity.RewardEventSettlementFailed))
	subscriber.Subscribe(ctx)
	xcontext.Logger(ctx).Infof("Settler stopped")

	return nil
}
