package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/learnify/backend/cache"
	"github.com/learnify/backend/config"
	"github.com/learnify/backend/handlers"
	"github.com/learnify/backend/identity"
	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/metrics"
	"github.com/learnify/backend/middleware"
	"github.com/learnify/backend/service"
	"github.com/learnify/backend/store"
	"github.com/learnify/backend/store/memstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// backend is satisfied by both store.DB and memstore.Store.
type backend interface {
	service.CourseStore
	service.ContentStore
	service.UserStore
	handlers.HealthChecker
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Error("learnify backend stopped", "error", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

// run returns instead of exiting so deferred cleanup always runs.
func run(cfg *config.Config, log *logger.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log.Info("starting learnify backend", cfg.Summary()...)

	ctx := context.Background()

	var db backend
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		db = memstore.New()
	default:
		mongoDB, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName, log)
		if err != nil {
			return fmt.Errorf("mongodb connect: %w", err)
		}
		defer func() {
			if err := mongoDB.Disconnect(context.Background()); err != nil {
				log.Warn("mongodb disconnect", "error", err)
			}
		}()
		mongoDB.Transactions = cfg.MongoTransactions
		if err := mongoDB.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongodb indexes: %w", err)
		}
		db = mongoDB
	}

	var media service.MediaStore
	if cfg.S3Bucket != "" {
		s3Service, err := service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			return fmt.Errorf("s3 client: %w", err)
		}
		media = s3Service
	} else {
		log.Warn("AWS_S3_BUCKET not set; uploads will fail")
	}

	var roleCache identity.RoleCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("redis connect %s: %w", cfg.RedisAddr, err)
		}
		defer rdb.Close()
		roleCache = cache.NewRoleCache(rdb)
	}

	clerk := identity.NewClient(cfg.ClerkAPIURL, cfg.ClerkSecretKey)
	sessions, err := identity.NewSessionVerifier(cfg.ClerkJWTKey, cfg.ClerkIssuer, cfg.AuthorizedParties)
	if err != nil {
		return fmt.Errorf("session verifier: %w", err)
	}
	roles := identity.NewRoleResolver(clerk, roleCache, cfg.RoleCacheTTL, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	catalog := service.NewCatalogService(db)
	content := service.NewContentService(db, db)
	profiles := service.NewProfileService(db, clerk, roles, log)

	webhook := &handlers.WebhookHandler{Profiles: profiles, Metrics: collector, Log: log.With("webhook", "svix")}
	if cfg.WebhookSecret != "" {
		v, err := identity.NewWebhookVerifier(cfg.WebhookSecret)
		if err != nil {
			return fmt.Errorf("SVIX_WEBHOOK: %w", err)
		}
		webhook.Verifier = v
	}
	addUser := &handlers.WebhookHandler{
		Profiles: profiles,
		Accept:   map[string]bool{identity.EventUserCreated: true},
		Metrics:  collector,
		Log:      log.With("webhook", "addUser"),
	}
	if cfg.AddUserSecret != "" {
		v, err := identity.NewWebhookVerifier(cfg.AddUserSecret)
		if err != nil {
			return fmt.Errorf("ADD_USER_WEBHOOK: %w", err)
		}
		addUser.Verifier = v
	}

	pages, err := handlers.NewPagesHandler(cfg.FrontendURL, log)
	if err != nil {
		return fmt.Errorf("FRONTEND_URL: %w", err)
	}

	limiter := middleware.NewRateLimiter(cfg.WebhookRatePerMin, 5*time.Minute, log)
	defer limiter.Stop()

	maxBytes := cfg.MaxUploadMB * 1024 * 1024
	router := handlers.NewRouter(handlers.Routes{
		Courses:        &handlers.CoursesHandler{Catalog: catalog, Media: media, Metrics: collector, Log: log, MaxBytes: maxBytes},
		Instructor:     &handlers.InstructorHandler{Catalog: catalog, Content: content, Actors: profiles, Log: log},
		Uploads:        &handlers.UploadHandler{Media: media, Log: log, MaxBytes: maxBytes},
		Users:          &handlers.UsersHandler{Profiles: profiles, Log: log},
		Webhook:        webhook,
		AddUserWebhook: addUser,
		DB:             &handlers.DBHandler{Store: db, Log: log},
		Pages:          pages,
		Metrics:        metrics.Handler(reg),
		Middleware: []func(http.Handler) http.Handler{
			middleware.CORS(cfg.CORSOrigins),
			middleware.RequestLogger(log),
			middleware.Metrics(collector),
		},
		Guard: middleware.Guard(sessions, roles, collector, log),
		Limit: limiter.Middleware(),
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var failed error
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case failed = <-serveErr:
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	if failed != nil {
		return fmt.Errorf("server failed: %w", failed)
	}
	return nil
}
