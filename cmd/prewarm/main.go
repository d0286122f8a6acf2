package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hoteldir/internal/adapters/observability"
	redisad "hoteldir/internal/adapters/redis"
	"hoteldir/internal/adapters/translate"
	"hoteldir/internal/app"
	"hoteldir/internal/domain"
	"hoteldir/internal/shared"
	mysqlrepo "hoteldir/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Strs("langs", cfg.PrewarmLangs).
		Int("workers", cfg.PrewarmWorkers).
		Msg("prewarm starting")

	if cfg.TranslateKey == "" {
		log.Fatal().Msg("TRANSLATE_API_KEY is required to prewarm translations")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed; nothing to warm")
	}

	client, err := translate.New(cfg.TranslateBase, cfg.TranslateKey, cfg.TranslateTimeout, 10)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize translation client")
	}
	tr := app.NewTranslationService(client, cache, cfg.TranslateConcurrency)

	listings, err := repo.ListEligible(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load eligible listings failed")
	}

	sem := semaphore.NewWeighted(int64(max(cfg.PrewarmWorkers, 1)))
	var wg sync.WaitGroup

	for _, lang := range cfg.PrewarmLangs {
		lang = app.NormalizeLang(lang)
		if lang == app.SourceLang {
			continue
		}
		for _, l := range listings {
			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}

			wg.Add(1)
			go func(l domain.Listing, lang string) {
				defer wg.Done()
				defer sem.Release(1)

				tr.TranslateListings(ctx, []domain.Listing{l}, lang)
				log.Debug().Str("id", l.ID).Str("lang", lang).Msg("prewarm ok")
			}(l, lang)
		}
	}

	wg.Wait()
	log.Info().Int("listings", len(listings)).Msg("prewarm completed")
}
