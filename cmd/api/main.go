package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hoteldir/internal/adapters/auth"
	"hoteldir/internal/adapters/blob"
	server "hoteldir/internal/adapters/http_server"
	"hoteldir/internal/adapters/mistral"
	"hoteldir/internal/adapters/observability"
	redisad "hoteldir/internal/adapters/redis"
	"hoteldir/internal/adapters/translate"
	"hoteldir/internal/app"
	"hoteldir/internal/domain"
	"hoteldir/internal/shared"
	mysqlrepo "hoteldir/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; serving without cache hits")
	}

	var matcher domain.MatchService = app.KeywordMatcher{}
	if cfg.MistralKey != "" {
		m, err := mistral.New(cfg.MistralBase, cfg.MistralKey, cfg.MistralModel, cfg.MatchTimeout, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Mistral client")
		}
		matcher = m
	}

	var translator domain.TextTranslator
	if cfg.TranslateKey != "" {
		t, err := translate.New(cfg.TranslateBase, cfg.TranslateKey, cfg.TranslateTimeout, 20)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize translation client")
		}
		translator = t
	}

	var images domain.ImageStore
	if cfg.S3Bucket != "" {
		s, err := blob.New(ctx, blob.Options{
			Bucket:     cfg.S3Bucket,
			Region:     cfg.S3Region,
			Endpoint:   cfg.S3Endpoint,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			PublicBase: cfg.S3PublicBase,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize image store")
		}
		images = s
	} else {
		log.Warn().Msg("S3_BUCKET is empty; image uploads are rejected")
	}

	var authn *auth.Authenticator
	if cfg.SessionSecret != "" {
		a, err := auth.New(auth.Options{
			Username:     cfg.AdminUser,
			Password:     cfg.AdminPass,
			PasswordHash: cfg.AdminPassHash,
			Secret:       cfg.SessionSecret,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("invalid admin auth settings")
		}
		authn = a
	}

	catalog := app.NewCatalogService(repo, cache, matcher, cfg.CacheTTL)
	tr := app.NewTranslationService(translator, cache, cfg.TranslateConcurrency)
	convo := app.NewConversationService(repo)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Chat:         app.NewChatService(catalog, tr, convo),
		Listings:     app.NewModerationService(repo, images, cache, cfg.MaxImageSize),
		Convo:        convo,
		Auth:         authn,
		SecureCookie: !cfg.Dev(),
		MaxImage:     cfg.MaxImageSize,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	_ = cache.Close()
	_ = db.Close()
	log.Info().Msg("API stopped")
}
