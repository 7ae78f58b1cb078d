package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mohamedaliSwe/mimi-style/internal/adapters/db/memory"
	myPostgresRepo "github.com/mohamedaliSwe/mimi-style/internal/adapters/db/postgres"
	myRedisRepo "github.com/mohamedaliSwe/mimi-style/internal/adapters/db/redis"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/mail"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/storage"
	myHttp "github.com/mohamedaliSwe/mimi-style/internal/adapters/transport/http"
	"github.com/mohamedaliSwe/mimi-style/internal/app/auth/jwt"
	"github.com/mohamedaliSwe/mimi-style/internal/app/auth/password"
	authsvc "github.com/mohamedaliSwe/mimi-style/internal/app/auth/service"
	catalogsvc "github.com/mohamedaliSwe/mimi-style/internal/app/catalog/service"
	"github.com/mohamedaliSwe/mimi-style/internal/app/validation"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/repo"
	"github.com/mohamedaliSwe/mimi-style/internal/infra/config"
	lg "github.com/mohamedaliSwe/mimi-style/internal/infra/log"
	"github.com/mohamedaliSwe/mimi-style/internal/infra/metrics"
	"github.com/mohamedaliSwe/mimi-style/internal/infra/migrate"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	checks := []myHttp.HealthCheck{{Name: "db", Ping: sqlDB.PingContext}}

	var tokenRepo repo.RevocationRepo
	switch cfg.RevocationStore {
	case config.RevocationRedis:
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()
		tokenRepo = myRedisRepo.NewRedisTokenRepo(redisCli)
		checks = append(checks, myHttp.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return redisCli.Ping(ctx).Err()
		}})
	default:
		tokenRepo = memory.NewRevocationRepo(cfg.RefreshTokenTTL)
	}

	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	var sender mail.Sender = mail.NewLogSender(zapLog)
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		zapLog.Warn("SMTP_HOST not set, mail will only be logged")
	}
	m := metrics.New()
	mailer := mail.NewDispatcher(sender, 4, zapLog)
	mailer.Observe(m)

	files, err := newFileStore(cfg)
	if err != nil {
		zapLog.Fatal("failed to init file store", zap.Error(err))
	}

	validate := validation.New()
	catalogRepo := myPostgresRepo.NewPostgresCatalogRepo(db)
	authService := authsvc.New(
		myPostgresRepo.NewPostgresUserRepo(db), tokenRepo, jwtUtil,
		password.NewHasher(cfg.PasswordPepper, nil), mailer, cfg, validate, zapLog,
	)
	catalogService := catalogsvc.New(catalogRepo, catalogRepo, catalogRepo, files, validate, zapLog)

	router := myHttp.NewRouter(authService, catalogService, m, myHttp.RouterConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: cfg.AllowCredentials,
		RateLimit:        myHttp.RateLimit{RPS: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
		Health:           checks,
	}, zapLog)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	listen := func() error {
		zapLog.Info("http server listening", zap.String("addr", cfg.HTTPAddress))
		if cfg.HTTPSCertFile != "" && cfg.HTTPSKeyFile != "" {
			return srv.ListenAndServeTLS(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		}
		return srv.ListenAndServe()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	if err := run(srv, listen, quit, zapLog); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelDrain()
	if err := mailer.Wait(ctxDrain); err != nil {
		zapLog.Warn("pending mail dropped", zap.Error(err))
	}
}

const shutdownTimeout = 5 * time.Second

// run serves until quit fires or listen fails, then shuts srv down and
// returns the listener error, if any.
func run(srv *http.Server, listen func() error, quit <-chan os.Signal, log *zap.Logger) error {
	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-quit:
		log.Info("shutdown signal received")
	case <-gctx.Done():
		log.Error("listener stopped, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	return g.Wait()
}

func newFileStore(cfg *config.Config) (storage.FileStore, error) {
	if cfg.StorageBackend != config.StorageS3 {
		return storage.NewOSStore(cfg.UploadDir), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s3, err := storage.NewS3Store(ctx, storage.S3Options{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
	})
	if err != nil {
		return nil, err
	}
	return s3, nil
}
