package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pagemill/pagemill-backend/internal/config"
	"github.com/pagemill/pagemill-backend/internal/handler"
	"github.com/pagemill/pagemill-backend/internal/middleware"
	"github.com/pagemill/pagemill-backend/internal/migration"
	"github.com/pagemill/pagemill-backend/internal/repository"
	"github.com/pagemill/pagemill-backend/internal/routes"
	"github.com/pagemill/pagemill-backend/internal/service"
	pkgcache "github.com/pagemill/pagemill-backend/pkg/cache"
	"github.com/pagemill/pagemill-backend/pkg/jwt"
	pkglogger "github.com/pagemill/pagemill-backend/pkg/logger"
	pkgredis "github.com/pagemill/pagemill-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	dotenvFiles := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pkglogger.InitStructured(cfg.Env)
	logger := *pkglogger.GetLogger()
	logger.Info().
		Str("env", cfg.Env).
		Strs("env_files", dotenvFiles).
		Msg("starting pagemill-backend")

	db, err := initDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := migration.Run(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	logger.Info().Msg("connected to MySQL")

	// Redis is optional; the engines degrade to no page-cache invalidation
	var cacheService pkgcache.Service
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, continuing without page cache")
		} else {
			cacheService = pkgcache.NewService(redisClient)
			logger.Info().Msg("connected to Redis")
		}
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	store := repository.NewStore(db)
	postRepo := repository.NewPostRepository(db)
	revisionRepo := repository.NewRevisionRepository(db)
	agentRunRepo := repository.NewAgentRunRepository(db)
	termRepo := repository.NewTermRepository(db)
	redirectRepo := repository.NewRedirectRepository(db)

	postService := service.NewPostService(store, postRepo, logger)
	agentService := service.NewAgentService(agentRunRepo, logger)
	moduleService := service.NewModuleService(store, logger)

	var pageCache service.PageCache
	if cacheService != nil {
		pageCache = cacheService
	}
	draftService := service.NewDraftService(store, postService, agentService, pageCache, logger)

	postHandler := handler.NewPostHandler(postService)
	draftHandler := handler.NewDraftHandler(draftService, revisionRepo)
	moduleHandler := handler.NewModuleHandler(moduleService)
	agentHandler := handler.NewAgentRunHandler(agentService)
	taxonomyHandler := handler.NewTaxonomyHandler(termRepo, redirectRepo)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "pagemill-backend",
			"time":    time.Now().Unix(),
		})
	})

	routes.Setup(router, postHandler, draftHandler, moduleHandler, agentHandler, taxonomyHandler, jwtManager)

	logger.Info().Str("addr", cfg.Listen).Msg("listening")
	if err := router.Run(cfg.Listen); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}
	if cfg.IsDevelopment() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}
	return gorm.Open(mysql.Open(cfg.Database.DSN()), gormCfg)
}

func corsConfig(cfg *config.Config) cors.Config {
	origins := strings.Split(cfg.CORS.AllowOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
