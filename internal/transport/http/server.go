package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"workfolio/internal/cache"
	"workfolio/internal/config"
	"workfolio/internal/database"
	"workfolio/internal/handler"
	"workfolio/internal/logger"
	"workfolio/internal/queue"
	"workfolio/internal/redis"
	"workfolio/internal/repository"
	"workfolio/internal/service"
	authmw "workfolio/internal/transport/http/middleware"
	"workfolio/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	db, err := database.Connect(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// 3. Connect to Redis
	rdb, err := redis.NewClient(cfg.RedisURL, log)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rdb.Close()

	if err := rdb.Ping(ctx); err != nil {
		return err
	}

	// 4. Repositories
	userRepo := repository.NewUserRepository(db, cfg.DBTimeout)
	portfolioRepo := repository.NewPortfolioRepository(db, cfg.DBTimeout)
	commentRepo := repository.NewCommentRepository(db, cfg.DBTimeout)
	jobRepo := repository.NewJobRepository(db, cfg.DBTimeout)
	inconsistencyRepo := repository.NewInconsistencyRepository(db, cfg.DBTimeout)

	// 5. Services
	publisher := queue.NewPublisher(rdb.Client, log)
	consistency := service.NewConsistencyManager(userRepo, portfolioRepo, commentRepo, jobRepo, inconsistencyRepo, publisher, log)

	sessionService := service.NewSessionService(cache.NewSessionStore(rdb.Client, log), userRepo, cfg, log)
	authorizer := service.NewAuthorizer(userRepo, portfolioRepo, commentRepo, jobRepo, log)

	userService := service.NewUserService(userRepo, portfolioRepo, service.NewCredentialStore(), consistency, log)
	portfolioService := service.NewPortfolioService(portfolioRepo, commentRepo, userRepo, consistency, log)
	commentService := service.NewCommentService(commentRepo, portfolioRepo, consistency, log)
	jobService := service.NewJobService(jobRepo, consistency, log)

	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init media service: %w", err)
	}
	if mediaService == nil {
		log.Warn("R2 is not configured, image uploads are disabled")
	}

	// 6. HTTP
	sessions := authmw.NewSessions(sessionService, cfg.CookieSecure, log)
	handlers := handler.New(handler.Deps{
		Sessions:   sessions,
		Log:        log,
		Users:      userService,
		Portfolios: portfolioService,
		Comments:   commentService,
		Jobs:       jobService,
		Media:      mediaService,
	})
	router := NewRouter(RouterConfig{
		Handlers:  handlers,
		Sessions:  sessions,
		Ownership: authmw.NewOwnership(authorizer, sessions, log),
		Log:       log,
	})

	// 7. Reconciliation workers
	workerCfg := worker.DefaultManagerConfig()
	workerCfg.WorkerCount = cfg.WorkerCount
	manager := worker.NewManager(
		queue.NewConsumer(rdb.Client, log),
		worker.NewHandler(consistency, inconsistencyRepo, log),
		log,
		workerCfg,
	)
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer manager.Stop()

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
