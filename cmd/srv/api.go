package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/tensaku-lab/backend/internal/domain/cron"
	"github.com/tensaku-lab/backend/internal/middleware"
	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/pkg/authenticator"
	"github.com/tensaku-lab/backend/pkg/prometheus"
	"github.com/tensaku-lab/backend/pkg/router"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const rateLimiterIdleTTL = 10 * time.Minute

func (s *srv) startApi(*cli.Context) error {
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
	if err := s.loadStorage(); err != nil {
		return err
	}
	s.loadPayment()
	s.loadRepos()
	s.loadEscrow()
	s.loadDomains()

	rateLimiter := middleware.NewRateLimiter(
		xcontext.Configs(s.ctx).ApiServer.RateLimit,
		xcontext.Configs(s.ctx).ApiServer.RateBurst,
	)
	s.loadRouter(rateLimiter)

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := xcontext.Configs(ctx)
	httpSrv := &http.Server{
		Addr: cfg.ApiServer.Address(),
		Handler: cors.New(cors.Options{
			AllowedOrigins:   cfg.ApiServer.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler(s.router.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewSettlementRetryCronJob(s.escrowManager, cfg.Reward.SettleRetryInterval))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		xcontext.Logger(ctx).Infof("Starting server on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		cronJobManager.Start(gctx)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(rateLimiterIdleTTL)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				rateLimiter.Cleanup(rateLimiterIdleTTL)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		cronJobManager.Cancel(ctx)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	xcontext.Logger(ctx).Infof("Server stopped")
	return err
}

func (s *srv) loadRouter(rateLimiter *middleware.RateLimiter) {
	cfg := xcontext.Configs(s.ctx)

	s.router = router.New(xcontext.DB(s.ctx), cfg, xcontext.Logger(s.ctx)).
		WithContext(func(ctx context.Context) context.Context {
			return xcontext.WithSnowFlake(ctx, xcontext.SnowFlake(s.ctx))
		})
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())
	s.router.Handle(http.MethodGet, "/metrics", prometheus.NewHandler())

	tokenEngine := authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.TokenSecret, cfg.Auth.AccessToken)
	authVerifier := middleware.NewAuthVerifier(tokenEngine)

	// These following APIs need authentication.
	authRouter := s.router.Branch()
	authRouter.Before(authVerifier.Middleware())
	authRouter.Before(rateLimiter.Middleware())
	{
		// Post API
		router.POST(authRouter, "/createPost", s.postDomain.Create)
		router.POST(authRouter, "/deletePost", s.postDomain.Delete)
		router.POST(authRouter, "/toggleRepost", s.postDomain.ToggleRepost)
		router.POST(authRouter, "/unrepost", s.postDomain.Unrepost)
		router.GET(authRouter, "/getTimeline", s.postDomain.GetTimeline)

		// Critique API
		router.POST(authRouter, "/createCritique", s.critiqueDomain.Create)
		router.POST(authRouter, "/deleteCritique", s.critiqueDomain.Delete)
		router.POST(authRouter, "/toggleCritiqueLike", s.critiqueDomain.ToggleLike)

		// Follow API
		router.POST(authRouter, "/toggleFollow", s.followDomain.Toggle)
		router.POST(authRouter, "/follow", s.followDomain.Follow)
		router.POST(authRouter, "/unfollow", s.followDomain.Unfollow)

		// Reward API
		router.POST(authRouter, "/selectBestCritique", s.rewardDomain.SelectBestCritique)
		router.POST(authRouter, "/settleReward", s.rewardDomain.Settle)
		router.GET(authRouter, "/confirmPayment", s.rewardDomain.ConfirmPayment)
		router.GET(authRouter, "/getPaymentHistory", s.rewardDomain.GetPaymentHistory)

		// Image API
		router.POST(authRouter, "/uploadImage", s.fileDomain.UploadImage)

		// User API
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)
		router.POST(authRouter, "/updatePayoutAccount", s.userDomain.UpdatePayoutAccount)
	}

	// Public APIs, personalized when a token is given.
	publicRouter := s.router.Branch()
	publicRouter.Before(authVerifier.WithOptional().Middleware())
	publicRouter.Before(rateLimiter.Middleware())
	{
		router.GET(publicRouter, "/getRecommended", s.postDomain.GetRecommended)
		router.GET(publicRouter, "/getPost", s.postDomain.Get)
		router.GET(publicRouter, "/getUserPosts", s.postDomain.GetByUser)
		router.GET(publicRouter, "/getCritiques", s.critiqueDomain.GetByPost)
		router.GET(publicRouter, "/getFollowers", s.followDomain.GetFollowers)
		router.GET(publicRouter, "/getFollowings", s.followDomain.GetFollowings)
		router.GET(publicRouter, "/getFollowStatus", s.followDomain.GetStatus)
		router.GET(publicRouter, "/getUser", s.userDomain.Get)
	}
}
