package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/prize_address/internal/cache"
	"github.com/GTDGit/prize_address/internal/config"
	"github.com/GTDGit/prize_address/internal/database"
	"github.com/GTDGit/prize_address/internal/handler"
	"github.com/GTDGit/prize_address/internal/middleware"
	"github.com/GTDGit/prize_address/internal/refdata"
	"github.com/GTDGit/prize_address/internal/repository"
	"github.com/GTDGit/prize_address/internal/service"
	"github.com/GTDGit/prize_address/internal/sse"
	"github.com/GTDGit/prize_address/internal/utils"
	"github.com/GTDGit/prize_address/internal/worker"
	"github.com/GTDGit/prize_address/pkg/prize"
)

const migrationsDir = "migrations"

// main is the application entrypoint for the prize address form API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting prize address api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect database (optional)
	var db *sqlx.DB
	if cfg.DB.Enabled() {
		db, err = database.Connect(ctx, &cfg.DB)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.RunMigrations(db.DB, migrationsDir); err != nil {
			log.Error().Err(err).Msg("migration failed")
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		log.Info().Msg("migrations completed successfully")
	}

	// 4. Session store
	var store cache.SessionStore
	var redisClient *cache.RedisClient
	sweepers := map[string]worker.Sweeper{}
	switch cfg.Session.Store {
	case config.StoreRedis:
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")
		store = cache.NewRedisSessionStore(redisClient)
	default:
		memStore := cache.NewMemorySessionStore()
		sweepers["sessions"] = memStore
		store = memStore
	}

	// 5. Reference data
	reader, err := newRefDataReader(ctx, cfg, db)
	if err != nil {
		log.Error().Err(err).Msg("reference data source initialization failed")
		fmt.Fprintf(os.Stderr, "reference data source initialization failed: %v\n", err)
		os.Exit(1)
	}
	holder := refdata.NewHolder()
	loader := refdata.NewLoader(reader).WithTimeout(cfg.RefData.FetchTimeout)

	// 6. Services
	signer := utils.NewSessionSigner(cfg.Session.Secret, cfg.Session.TTL)
	formSvc := service.NewFormService(holder, store, signer, cfg.Session.TTL)

	var recorder service.SubmissionRecorder
	if db != nil {
		recorder = repository.NewSubmissionRepository(db)
	}
	prizeClient := prize.NewClient(cfg.Prize.URL).WithSigningSecret(cfg.Prize.SigningSecret)
	submissionSvc := service.NewSubmissionService(formSvc, store, prizeClient, recorder, service.SubmissionOptions{
		EnforceSite: cfg.Form.EnforceSite,
		LockTTL:     cfg.Session.SubmitLock,
		AutoClose:   cfg.Form.NotifyAutoClose,
	})

	// 7. Handlers and middleware
	hub := sse.NewHub()
	health := handler.NewHealthHandler(holder)
	if db != nil {
		health.WithCheck("postgres", db.PingContext)
	}
	if redisClient != nil {
		health.WithCheck("redis", redisClient.Ping)
	}
	handlers := &handler.Handlers{
		Health:    health,
		Territory: handler.NewTerritoryHandler(holder),
		Site:      handler.NewSiteHandler(holder, cfg.Form.NotifyAutoClose),
		Form:      handler.NewFormHandler(formSvc, submissionSvc, cfg.Form.NotifyAutoClose),
		Events:    handler.NewSSEHandler(hub, holder),
	}
	rateLimiter := middleware.NewInvalidTokenRateLimiter(5, time.Minute)
	sweepers["invalid_tokens"] = worker.SweeperFunc(rateLimiter.Prune)
	sessionMw := middleware.NewSessionMiddleware(signer, rateLimiter)

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	handler.SetupRoutes(router, handlers, sessionMw)

	// 9. Start workers; the API serves "not loaded" until the first load lands
	go worker.NewRefDataWorker(loader, holder, cfg.RefData.ReloadInterval).
		WithNotifier(sse.NewHubNotifier(hub)).
		Start(ctx)
	go worker.NewSweepWorker(sweepers, time.Minute).Start(ctx)

	// 10. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 11. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// newRefDataReader selects where reference datasets come from.
func newRefDataReader(ctx context.Context, cfg *config.Config, db *sqlx.DB) (refdata.Reader, error) {
	paths := refdata.Paths{
		Provinces:    cfg.RefData.ProvincesPath,
		Districts:    cfg.RefData.DistrictsPath,
		Subdistricts: cfg.RefData.SubdistrictsPath,
		Sites:        cfg.RefData.SitesPath,
	}

	switch cfg.RefData.Source {
	case config.SourcePostgres:
		return repository.NewTerritoryRepository(db), nil
	case config.SourceHTTP:
		return refdata.NewJSONReader(refdata.NewHTTPSource(cfg.RefData.BaseURL), paths), nil
	case config.SourceS3:
		src, err := refdata.NewS3Source(ctx, &cfg.S3)
		if err != nil {
			return nil, err
		}
		return refdata.NewJSONReader(src, paths), nil
	default:
		return refdata.NewJSONReader(refdata.NewFileSource(cfg.RefData.Dir), paths), nil
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
