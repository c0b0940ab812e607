package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/sports-complex/internal/config"
	"github.com/iliyamo/sports-complex/internal/database"
	"github.com/iliyamo/sports-complex/internal/handler"
	"github.com/iliyamo/sports-complex/internal/mail"
	"github.com/iliyamo/sports-complex/internal/middleware"
	"github.com/iliyamo/sports-complex/internal/queue"
	"github.com/iliyamo/sports-complex/internal/router"
	"github.com/iliyamo/sports-complex/internal/service"
	"github.com/iliyamo/sports-complex/internal/utils"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	// nil when Redis is down; cache and limiter then pass through
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	mailCfg := config.LoadMailConfig()

	hasher := utils.NewBcryptHasher(cfg.BcryptCost)
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTTLMin)
	mailer := mail.NewPublisher(mailCfg)
	purger := middleware.NewCachePurger(cacheCfg, rdb, middleware.CacheScopeTaxonomy)

	auth := service.NewAuthService(db, hasher, tokens, mailer, service.AuthConfig{
		ResetTTL: time.Duration(cfg.ResetTTLMin) * time.Minute,
		BaseURL:  cfg.BaseURL,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Printf("%s %s %d %s rid=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(echomw.Recover())

	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(auth),
		Users:         handler.NewAdminUserHandler(service.NewUserService(db, hasher, mailer, purger)),
		Taxonomy:      handler.NewTaxonomyHandler(service.NewTaxonomyService(db, purger)),
		Courts:        handler.NewCourtHandler(service.NewCourtService(db)),
		Health:        handler.Health(db),
		Authenticator: auth,
		RateLimit:     middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		TaxonomyCache: middleware.NewRedisCache(cacheCfg, rdb, middleware.CacheScopeTaxonomy),
	})

	if mailCfg.ConsumerEnabled {
		go func() {
			if err := queue.StartMailConsumer(ctx, mailCfg); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("mail-consumer: stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
