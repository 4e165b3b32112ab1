package app

import (
	"context"
	"time"

	"Gin_postgres_redis_borrow_admin/config"
	"Gin_postgres_redis_borrow_admin/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// short aliases for handlers
type Ctx = gin.Context
type H = gin.H

// App holds the process-wide dependencies.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Log    *zap.Logger
	Config Config
}

type Config struct {
	Env           string
	DatabaseURL   string
	RedisAddr     string
	RedisPwd      string
	WebOrigins    []string
	Port          string
	APIPrefix     string
	JWTSecret     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SeenThrottle  time.Duration
	AdminUsername string
	AdminPassword string
}

func (c Config) Dev() bool { return c.Env == "dev" }

func MustNew() *App {
	cfg := LoadConfig()
	log := newLogger(cfg)
	zap.ReplaceGlobals(log)

	if cfg.JWTSecret == "" {
		if !cfg.Dev() {
			log.Fatal("JWT_SECRET is required")
		}
		cfg.JWTSecret = "dev-only-secret"
		log.Warn("JWT_SECRET unset, using the development secret")
	}

	dbConn, err := db.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	if !cfg.Dev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(RequestLogger(log), gin.Recovery())
	useCORS(r, cfg.WebOrigins)

	return &App{Router: r, DB: dbConn, RDB: rdb, Log: log, Config: cfg}
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Log.Sync()
}

func LoadConfig() Config {
	origins := config.List("WEB_ORIGIN")
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return Config{
		Env:           config.Get("APP_ENV", "prod"),
		DatabaseURL:   db.DSN(),
		RedisAddr:     config.Get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:      config.Get("REDIS_PASSWORD", ""),
		WebOrigins:    origins,
		Port:          config.Get("PORT", "3001"),
		APIPrefix:     config.Get("API_PREFIX", "/api/v1"),
		JWTSecret:     config.Get("JWT_SECRET", ""),
		AccessTTL:     config.Minutes("ACCESS_TOKEN_TTL_MINUTES", time.Hour),
		RefreshTTL:    config.Hours("REFRESH_TOKEN_TTL_HOURS", 7*24*time.Hour),
		SeenThrottle:  config.Minutes("LAST_SEEN_THROTTLE_MINUTES", 5*time.Minute),
		AdminUsername: config.Get("ADMIN_USERNAME", ""),
		AdminPassword: config.Get("ADMIN_PASSWORD", ""),
	}
}
