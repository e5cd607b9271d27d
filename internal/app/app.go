package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/marklist/marklist/internal/config"
	"github.com/marklist/marklist/internal/feed"
	"github.com/marklist/marklist/internal/httpserver"
	"github.com/marklist/marklist/internal/httpserver/deps"
	"github.com/marklist/marklist/internal/logger"
	"github.com/marklist/marklist/internal/redis"
	"github.com/marklist/marklist/internal/scheduler"
	"github.com/marklist/marklist/internal/session"
	"github.com/marklist/marklist/internal/sources/seedfile"
	redisstore "github.com/marklist/marklist/internal/store/redis"
	"github.com/marklist/marklist/internal/syncer"
	"github.com/marklist/marklist/internal/version"
)

type App struct {
	cfg             *config.Config
	logger          logger.Logger
	server          *httpserver.Server
	redisClient     *goredis.Client
	store           *redisstore.Store
	sessions        *session.Manager
	registry        *syncer.Registry
	resyncer        *scheduler.Resyncer
	stopSessionSubs func()
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)
	eventFeed := feed.NewRedisFeed(redisClient, loggerClient)
	sessions := session.NewManager(redisClient, cfg.SessionSecret, cfg.SessionTTL, loggerClient)
	registry := syncer.NewRegistry(store, eventFeed, loggerClient)

	// Session changes drive synchronizer lifetimes: a sign-in lazily
	// ensures one per user id, a sign-out tears it (and its feed channel)
	// down. Keying on the user id scalar makes repeated sign-ins no-ops.
	stopSessionSubs := sessions.OnChange(func(change session.Change) {
		if change.SignedIn {
			registry.Ensure(change.UserID)
		} else {
			registry.Drop(change.UserID)
		}
	})

	resyncTrigger := make(chan struct{}, 1)
	resyncer := scheduler.NewResyncer(registry, loggerClient, cfg.ResyncInterval, resyncTrigger)

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		RedisClient:   redisClient,
		Store:         store,
		Sessions:      sessions,
		Registry:      registry,
		ResyncTrigger: resyncTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:             cfg,
		logger:          loggerClient,
		server:          server,
		redisClient:     redisClient,
		store:           store,
		sessions:        sessions,
		registry:        registry,
		resyncer:        resyncer,
		stopSessionSubs: stopSessionSubs,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting marklist v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("marklist %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Seed bookmarks before serving so the first fetch already sees them.
	if a.cfg.SeedFile != "" {
		if err := a.seed(ctx); err != nil {
			a.logger.Warn("failed to seed bookmarks", logger.Error(err))
		}
	}

	a.resyncer.Start(ctx)
	a.logger.Info("resyncer started",
		logger.Duration("interval", a.cfg.ResyncInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.resyncer.Stop()
	a.stopSessionSubs()
	a.registry.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ marklist stopped cleanly")
	return nil
}

// seed loads the configured bookmarks.yaml and inserts its entries for the
// seed user, skipping URLs that user already has.
func (a *App) seed(ctx context.Context) error {
	config, err := seedfile.NewLoader(a.cfg.SeedFile).Load()
	if err != nil {
		return err
	}

	records, err := seedfile.NewMapper().Map(a.cfg.SeedUser, config)
	if err != nil {
		return err
	}

	inserted, skipped, err := a.store.InsertMany(ctx, a.cfg.SeedUser, records)
	if err != nil {
		return err
	}

	a.logger.Info("seed bookmarks loaded",
		logger.String("user_id", a.cfg.SeedUser),
		logger.Int("inserted", inserted),
		logger.Int("skipped", skipped))
	return nil
}
