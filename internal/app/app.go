// Package app opens the configured backends and wires the services shared
// by the API server and the seed tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"electromatrix/internal/cache"
	"electromatrix/internal/config"
	"electromatrix/internal/repository"
	"electromatrix/internal/repository/memory"
	"electromatrix/internal/service"
	"electromatrix/internal/transport/rest"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

// App holds the repositories, caches and services of one process
type App struct {
	Config *config.Config
	Log    *zap.Logger

	Store *repository.Store
	Redis *redis.Client // nil without REDIS_URL

	Pool       *service.QuestionPool
	Auth       *service.AuthService
	Quiz       *service.QuizService
	Scoreboard *service.Scoreboard

	closers []func(context.Context) error
}

// New connects the store (and Redis when configured) and builds the services
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}
	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET is unset; bearer tokens are signed with the public placeholder key")
	}

	if err := a.openStore(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}
	if err := a.openRedis(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	pools, err := config.LoadPools(cfg.PoolsFile)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	var (
		poolCache cache.PoolCache
		lbCache   cache.LeaderboardCache
	)
	if a.Redis != nil {
		poolCache = cache.NewPoolCache(a.Redis, cfg.PoolCacheTTL)
		lbCache = cache.NewLeaderboardCache(a.Redis)
	}

	now := service.Clock(time.Now)
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	a.Pool = service.NewQuestionPool(a.Store.Questions, poolCache, log)
	a.Scoreboard = service.NewScoreboard(a.Store.Teams, lbCache, log)
	a.Auth = service.NewAuthService(a.Store.Teams, cfg.JWTSecret, cfg.TokenTTL, now)

	allocator := service.NewAllocator(a.Store.Assignments, a.Store.Questions, a.Pool, pools, rnd, log)
	timer := service.NewSectionTimer(a.Store, cfg.SectionDuration, now, log)
	run := service.NewRunTracker(a.Store, timer, a.Scoreboard, now, log)
	tracker := service.NewTracker(a.Store, timer, run, a.Scoreboard, now, log)
	a.Quiz = service.NewQuizService(a.Store, a.Pool, allocator, timer, run, tracker, log)

	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	if a.Config.StoreDriver == "memory" {
		a.Store = memory.NewStore()
		a.Log.Warn("using in-memory store; data is lost on exit")
		return nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.Config.MongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.closers = append(a.closers, client.Disconnect)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store, err := repository.NewMongoStore(ctx, client.Database(a.Config.MongoDB))
	if err != nil {
		return err
	}
	a.Store = store
	a.Log.Info("connected to MongoDB", zap.String("db", a.Config.MongoDB))
	return nil
}

func (a *App) openRedis(ctx context.Context) error {
	if a.Config.RedisURL == "" {
		a.Log.Info("REDIS_URL not set; pool cache and leaderboard cache disabled")
		return nil
	}

	opts, err := redis.ParseURL(a.Config.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	a.Redis = client
	a.Log.Info("connected to Redis", zap.String("addr", opts.Addr))
	return nil
}

// Router builds the HTTP API
func (a *App) Router() http.Handler {
	return rest.NewRouter(&rest.Container{
		AuthService: a.Auth,
		QuizService: a.Quiz,
		Scoreboard:  a.Scoreboard,
		Log:         a.Log,
		CORSOrigins: a.Config.CORSOrigins,
	})
}

// Close releases connections in reverse order of opening
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
