package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-chat/internal/auth"
	"github.com/weiawesome/wes-chat/internal/cache"
	"github.com/weiawesome/wes-chat/internal/config"
	"github.com/weiawesome/wes-chat/internal/domain"
	"github.com/weiawesome/wes-chat/internal/handler"
	"github.com/weiawesome/wes-chat/internal/middleware"
	"github.com/weiawesome/wes-chat/internal/presence"
	"github.com/weiawesome/wes-chat/internal/repository"
	"github.com/weiawesome/wes-chat/internal/service"
	"github.com/weiawesome/wes-chat/pkg/database"
	"github.com/weiawesome/wes-chat/pkg/jwt"
	pkglog "github.com/weiawesome/wes-chat/pkg/log"
	"github.com/weiawesome/wes-chat/pkg/pubsub"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "wes-chat",
	})
	logger := pkglog.L()

	logger.Info().Str("version", version).Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).
		Str("db_driver", cfg.Database.Driver).Str("presence_store", cfg.Presence.Store).
		Str("events_driver", cfg.Events.Driver).Msg("starting chat server")

	// Connect to database using GORM
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)
	chatRoomRepo := repository.NewGormChatRoomRepository(db)

	// Initialize credentials
	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager, set JWT_SECRET")
	}

	opts := []auth.Option{}
	if cfg.Auth.VerifySignature {
		opts = append(opts, auth.WithVerifier(tokens))
	}
	if principalCache := initCache(cfg); principalCache != nil {
		defer principalCache.Close()
		opts = append(opts, auth.WithCache(principalCache, cfg.Cache.TTL))
	}
	authenticator := auth.NewAuthenticator(userRepo, opts...)

	// Initialize event publisher
	publisher, err := pubsub.NewPublisher(cfg.Events)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create event publisher")
	}
	defer publisher.Close()

	// Initialize services
	messageService := service.NewMessageService(messageRepo, publisher)
	chatRoomService := service.NewChatRoomService(chatRoomRepo, publisher)
	userService := service.NewUserService(userRepo, tokens, authenticator, cfg.Auth.BcryptCost)

	// Initialize presence engine
	presenceStore, err := initPresenceStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create presence store")
	}
	defer presenceStore.Close()
	engine := presence.NewEngine(presenceStore, cfg.WebSocket, cfg.Presence)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	r.Use(middleware.ReplaceToken())

	handler.NewHandler(messageService, chatRoomService, userService, middleware.NewAuthMiddleware(authenticator)).RegisterRoutes(r)
	handler.NewWSHandler(engine, cfg.CORS.AllowedOrigins).RegisterRoutes(r)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     corsHandler(r),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return engine.Run(gCtx)
	})

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("chat server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down chat server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("chat server stopped with error")
		return
	}
	logger.Info().Msg("chat server stopped")
}

func initCache(cfg *config.Config) cache.PrincipalCache {
	if !cfg.Cache.Enabled {
		return nil
	}

	logger := pkglog.L()
	c, err := cache.NewRedisPrincipalCache(cache.RedisConfig{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Cache.Prefix)
	if err != nil {
		logger.Warn().Err(err).Msg("principal cache unavailable, continuing without it")
		return nil
	}
	logger.Info().Str("address", cfg.Redis.Address).Dur("ttl", cfg.Cache.TTL).Msg("principal cache enabled")
	return c
}

func initPresenceStore(cfg *config.Config) (presence.Store, error) {
	switch cfg.Presence.Store {
	case "", "memory":
		return presence.NewMemoryStore(), nil
	case "redis":
		return presence.NewRedisStore(presence.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Presence.KeyPrefix, cfg.Presence.InstanceID)
	default:
		return nil, fmt.Errorf("unsupported presence store: %s", cfg.Presence.Store)
	}
}
