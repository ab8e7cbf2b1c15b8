package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/auktia/backend/api/handler"
	"github.com/auktia/backend/internal/broadcast"
	"github.com/auktia/backend/internal/config"
	"github.com/auktia/backend/internal/infrastructure/kvstore"
	"github.com/auktia/backend/internal/infrastructure/monitor"
	pgInfra "github.com/auktia/backend/internal/infrastructure/postgres"
	redisInfra "github.com/auktia/backend/internal/infrastructure/redis"
	"github.com/auktia/backend/internal/middleware"
	"github.com/auktia/backend/internal/router"
	"github.com/auktia/backend/internal/services"
	"github.com/auktia/backend/internal/services/lifecycle"
	"github.com/auktia/backend/pkg/httpcontext"
	"github.com/auktia/backend/pkg/logger"
	"github.com/auktia/backend/repository"
	boltRepo "github.com/auktia/backend/repository/bolt"
	pgRepo "github.com/auktia/backend/repository/postgres"
	redisRepo "github.com/auktia/backend/repository/redis"
	analyticsUC "github.com/auktia/backend/usecase/analytics"
	contactUC "github.com/auktia/backend/usecase/contact"
	contentUC "github.com/auktia/backend/usecase/content"
	liveUC "github.com/auktia/backend/usecase/live"
	newsletterUC "github.com/auktia/backend/usecase/newsletter"
	ratingsUC "github.com/auktia/backend/usecase/ratings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	// The document store is the one hard dependency; nothing serves
	// without it.
	store, err := kvstore.Open(cfg.Store.Path)
	if err != nil {
		zapLogger.Fatal("failed to open document store", zap.Error(err))
	}
	manager.Register("store", func(ctx context.Context) error {
		return store.Close()
	})

	contentRepo := boltRepo.NewContentRepository(store)
	eventRepo := boltRepo.NewEventRepository(store)
	pendingRepo := boltRepo.NewPendingVoteRepository(store)
	subscriberRepo := boltRepo.NewSubscriberRepository(store)

	// Redis backs the rating aggregates. A failed connection degrades
	// ratings to the local fallback instead of blocking startup.
	var ratingRepo repository.RatingRepository
	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Warn("redis unavailable, ratings degraded to local fallback", zap.Error(err))
	} else {
		ratingRepo = redisRepo.NewRatingRepository(redisClient)
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	// Postgres only archives contact submissions and is optional.
	var contactRepo repository.ContactRepository
	var pool *pgxpool.Pool
	if cfg.Database.Enabled {
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err = pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		contactRepo = pgRepo.NewContactRepository(pool)
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
	}

	mon := monitor.New(pool, redisClient, store, pendingRepo, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	hub := broadcast.New(zapLogger)
	manager.Register("broadcast", func(ctx context.Context) error {
		hub.Close()
		return nil
	})

	contentUseCase := contentUC.New(contentRepo, hub, zapLogger)
	contentUseCase.SetMaxDocumentBytes(cfg.Content.MaxDocumentBytes)

	analyticsUseCase := analyticsUC.New(eventRepo, hub, zapLogger)

	ratingsUseCase := ratingsUC.New(ratingRepo, pendingRepo, analyticsUseCase, zapLogger)
	ratingsUseCase.SetCooldown(cfg.Ratings.Cooldown)

	liveUseCase := liveUC.New(contentUseCase, analyticsUseCase, zapLogger)
	contactUseCase := contactUC.New(contactRepo, cfg.Contact.WebhookURL, zapLogger)
	newsletterUseCase := newsletterUC.New(subscriberRepo, analyticsUseCase, zapLogger)

	voteSync := services.NewVoteSync(pendingRepo, ratingRepo, mon, analyticsUseCase, zapLogger, services.SyncConfig{
		Interval:      cfg.Ratings.SyncInterval,
		BatchSize:     cfg.Ratings.SyncBatchSize,
		MaxRetries:    cfg.Ratings.MaxRetries,
		RetentionDays: cfg.Analytics.RetentionDays,
	})
	voteSync.Start()
	manager.Register("vote_sync", func(ctx context.Context) error {
		voteSync.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:       apiHandler.NewAuthHandler(cfg.Admin.Secret, cfg.Admin.Key, cfg.Admin.TTL, ctxAdapter, zapLogger),
		Content:    apiHandler.NewContentHandler(contentUseCase, ctxAdapter, zapLogger),
		Events:     apiHandler.NewEventHandler(analyticsUseCase, contentUseCase, hub, ctxAdapter, zapLogger),
		Analytics:  apiHandler.NewAnalyticsHandler(analyticsUseCase, ctxAdapter, zapLogger),
		Ratings:    apiHandler.NewRatingHandler(ratingsUseCase, ctxAdapter, zapLogger),
		Live:       apiHandler.NewLiveHandler(liveUseCase, ctxAdapter, zapLogger),
		Contact:    apiHandler.NewContactHandler(contactUseCase, ctxAdapter, zapLogger),
		Newsletter: apiHandler.NewNewsletterHandler(newsletterUseCase, ctxAdapter, zapLogger),
		Health:     apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	adminOnly := middleware.AdminAuth(cfg.Admin.Secret, zapLogger)
	r := router.New(handlers, adminOnly)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
