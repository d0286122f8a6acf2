package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	MistralKey   string
	MistralBase  string
	MistralModel string
	MatchTimeout time.Duration

	TranslateKey         string
	TranslateBase        string
	TranslateTimeout     time.Duration
	TranslateConcurrency int

	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3PublicBase string
	MaxImageSize int64

	AdminUser     string
	AdminPass     string
	AdminPassHash string
	SessionSecret string

	PrewarmWorkers int
	PrewarmLangs   []string
}

func Load() Config {
	// .env is optional; real env vars win.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	secs := func(k string, def int) time.Duration {
		return time.Duration(atoi(k, def)) * time.Second
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hoteldir?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    secs("CACHE_TTL_SECONDS", 300),

		MistralKey:   env("MISTRAL_API_KEY", ""),
		MistralBase:  env("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
		MistralModel: env("MISTRAL_MODEL", "mistral-small-latest"),
		MatchTimeout: secs("MATCH_TIMEOUT_SECONDS", 20),

		TranslateKey:         env("TRANSLATE_API_KEY", ""),
		TranslateBase:        env("TRANSLATE_BASE_URL", "https://translation.googleapis.com/language/translate/v2"),
		TranslateTimeout:     secs("TRANSLATE_TIMEOUT_SECONDS", 10),
		TranslateConcurrency: atoi("TRANSLATE_CONCURRENCY", 8),

		S3Bucket:     env("S3_BUCKET", ""),
		S3Region:     env("S3_REGION", "us-east-1"),
		S3Endpoint:   env("S3_ENDPOINT", ""),
		S3AccessKey:  env("S3_ACCESS_KEY", ""),
		S3SecretKey:  env("S3_SECRET_KEY", ""),
		S3PublicBase: env("S3_PUBLIC_BASE_URL", ""),
		MaxImageSize: int64(atoi("MAX_IMAGE_BYTES", 5<<20)),

		AdminUser:     env("ADMIN_USERNAME", "admin"),
		AdminPass:     env("ADMIN_PASSWORD", ""),
		AdminPassHash: env("ADMIN_PASSWORD_HASH", ""),
		SessionSecret: env("SESSION_SECRET", ""),

		PrewarmWorkers: atoi("PREWARM_WORKERS", 4),
		PrewarmLangs:   list(env("PREWARM_LANGS", "en")),
	}
	// worker pools need at least one slot or Acquire blocks forever
	c.PrewarmWorkers = max(c.PrewarmWorkers, 1)
	c.TranslateConcurrency = max(c.TranslateConcurrency, 1)

	if c.MistralKey == "" {
		log.Warn().Msg("MISTRAL_API_KEY is empty; falling back to keyword location matching")
	}
	if c.TranslateKey == "" {
		log.Warn().Msg("TRANSLATE_API_KEY is empty; results are served untranslated")
	}
	if c.SessionSecret == "" {
		log.Warn().Msg("SESSION_SECRET is empty; admin login is disabled")
	}
	return c
}

// Dev reports whether the app runs in a development environment.
func (c Config) Dev() bool { return c.AppEnv == "dev" || c.AppEnv == "development" }

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func list(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
