package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/transport/http/middleware"
	authsvc "github.com/mohamedaliSwe/mimi-style/internal/app/auth/service"
	catalogsvc "github.com/mohamedaliSwe/mimi-style/internal/app/catalog/service"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/model"
	"github.com/mohamedaliSwe/mimi-style/internal/infra/metrics"
	"go.uber.org/zap"
)

type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type RateLimit struct {
	RPS       int
	Burst     int
	CacheSize int
	TTL       time.Duration
}

type RouterConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
	RateLimit        RateLimit
	Health           []HealthCheck
}

func NewRouter(
	auth authsvc.Service,
	catalog catalogsvc.Service,
	m *metrics.Metrics,
	cfg RouterConfig,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxUploadBytes
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Metrics(m))
	if cfg.RateLimit.RPS > 0 {
		rl := cfg.RateLimit
		if rl.CacheSize == 0 {
			rl.CacheSize = 10_000
		}
		if rl.TTL == 0 {
			rl.TTL = time.Hour
		}
		router.Use(middleware.NewRateLimitPerIP(rl.RPS, rl.Burst, rl.CacheSize, rl.TTL))
	}

	corsConfig := cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	requireAuth := middleware.RequireAuth(auth)

	api := router.Group("/api")
	api.GET("/welcome", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to Mimi Style"})
	})

	authGroup := api.Group("/auth")
	NewAuthHandler(auth, log).register(authGroup, authGroup.Group("", requireAuth))

	admin := api.Group("", requireAuth, middleware.RequireRole(model.RoleAdmin))
	NewCatalogHandler(catalog, log).register(api, admin)

	router.GET("/health", health(cfg.Health))
	router.GET("/metrics", gin.WrapH(m.Handler()))
	return router
}

func health(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := gin.H{}
		for _, hc := range checks {
			if err := hc.Ping(ctx); err != nil {
				failed[hc.Name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	}
}
