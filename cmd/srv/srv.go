package main

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tensaku-lab/backend/config"
	"github.com/tensaku-lab/backend/internal/domain"
	"github.com/tensaku-lab/backend/internal/domain/escrow"
	"github.com/tensaku-lab/backend/internal/domain/feed"
	"github.com/tensaku-lab/backend/internal/domain/toggle"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/kafka"
	"github.com/tensaku-lab/backend/pkg/logger"
	"github.com/tensaku-lab/backend/pkg/payment"
	"github.com/tensaku-lab/backend/pkg/pubsub"
	"github.com/tensaku-lab/backend/pkg/router"
	"github.com/tensaku-lab/backend/pkg/storage"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"github.com/tensaku-lab/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	ctx context.Context
	app *cli.App

	redisClient xredis.Client
	publisher   pubsub.Publisher
	storage     storage.Storage
	processor   payment.Processor

	userRepo         repository.UserRepository
	followRepo       repository.FollowRepository
	postRepo         repository.PostRepository
	repostRepo       repository.RepostRepository
	critiqueRepo     repository.CritiqueRepository
	critiqueLikeRepo repository.CritiqueLikeRepository
	rewardEventRepo  repository.RewardEventRepository
	fileRepo         repository.FileRepository

	escrowManager *escrow.Manager

	postDomain     domain.PostDomain
	critiqueDomain domain.CritiqueDomain
	followDomain   domain.FollowDomain
	rewardDomain   domain.RewardDomain
	userDomain     domain.UserDomain
	fileDomain     domain.FileDomain

	router *router.Router

	// closers release the connections opened by the loaders.
	closers []func(context.Context) error
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.loadLogger()
	return nil
}

func (s *srv) loadLogger() {
	cfg := xcontext.Configs(s.ctx)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(cfg.Env, logger.ParseLevel(cfg.LogLevel)))
}

func (s *srv) loadDatabase() error {
	cfg := xcontext.Configs(s.ctx)

	db, err := gorm.Open(mysql.Open(cfg.Database.ConnectionString()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	s.closers = append(s.closers, func(context.Context) error { return sqlDB.Close() })
	return nil
}

func (s *srv) loadSnowflake() error {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
	return nil
}

func (s *srv) loadRedis() error {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	return err
}

func (s *srv) loadPublisher() error {
	cfg := xcontext.Configs(s.ctx)

	publisher, err := kafka.NewPublisher(cfg.Kafka.ClientID, brokerAddrs(cfg.Kafka.Addr))
	if err != nil {
		return err
	}

	s.publisher = publisher
	s.closers = append(s.closers, publisher.Stop)
	return nil
}

func (s *srv) loadStorage() error {
	var err error
	s.storage, err = storage.NewS3Storage(xcontext.Configs(s.ctx).Storage)
	return err
}

func (s *srv) loadPayment() {
	cfg := xcontext.Configs(s.ctx)

	switch cfg.Payment.Provider {
	case "stripe":
		s.processor = payment.NewStripeProcessor(cfg.Payment)
	default:
		xcontext.Logger(s.ctx).Warnf("Use the sandbox payment processor, no real money moves")
		s.processor = payment.NewSandboxProcessor()
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.followRepo = repository.NewFollowRepository()
	s.postRepo = repository.NewPostRepository()
	s.repostRepo = repository.NewRepostRepository()
	s.critiqueRepo = repository.NewCritiqueRepository()
	s.critiqueLikeRepo = repository.NewCritiqueLikeRepository()
	s.rewardEventRepo = repository.NewRewardEventRepository()
	s.fileRepo = repository.NewFileRepository()
}

func (s *srv) loadEscrow() {
	s.escrowManager = escrow.NewManager(
		s.postRepo,
		s.critiqueRepo,
		s.userRepo,
		s.rewardEventRepo,
		s.processor,
		s.redisClient,
		s.publisher,
	)
}

func (s *srv) loadDomains() {
	toggleEngine := toggle.NewEngine()
	composer := feed.NewComposer(s.userRepo, s.followRepo, s.postRepo, s.repostRepo, s.critiqueRepo)

	s.postDomain = domain.NewPostDomain(s.postRepo, s.repostRepo, s.critiqueRepo, s.critiqueLikeRepo,
		s.userRepo, composer, s.escrowManager, toggleEngine)
	s.critiqueDomain = domain.NewCritiqueDomain(s.postRepo, s.critiqueRepo, s.critiqueLikeRepo,
		s.userRepo, toggleEngine)
	s.followDomain = domain.NewFollowDomain(s.followRepo, s.userRepo, toggleEngine)
	s.rewardDomain = domain.NewRewardDomain(s.postRepo, s.escrowManager)
	s.userDomain = domain.NewUserDomain(s.userRepo)
	s.fileDomain = domain.NewFileDomain(s.storage, s.fileRepo)
}

func (s *srv) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](s.ctx); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot close resource: %v", err)
		}
	}
}

func brokerAddrs(addr string) []string {
	return strings.Split(addr, ",")
}
