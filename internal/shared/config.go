package shared

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	// artifact locations
	DataDir       string
	QueryFile     string
	RawFile       string
	SummaryFile   string
	HistoryFile   string
	DashboardFile string

	HistoryDateColumn string
	TZName            string
	TZOffsetMinutes   int
	CurrencySymbol    string

	ProviderBase    string
	ProviderHost    string
	ProviderKey     string
	ProviderTimeout time.Duration
	ProviderRPS     int
	ProviderRetries int

	MySQLDSN  string
	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration
}

// Location is the fixed zone used for history timestamps and the dashboard
// clock.
func (c Config) Location() *time.Location {
	return time.FixedZone(c.TZName, c.TZOffsetMinutes*60)
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	root := env("DATA_DIR", ".")
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),

		DataDir:       root,
		QueryFile:     env("QUERY_FILE", filepath.Join(root, "config", "query_params.json")),
		RawFile:       env("RAW_FILE", filepath.Join(root, "data", "raw", "response.json")),
		SummaryFile:   env("SUMMARY_FILE", filepath.Join(root, "data", "processed", "summary.json")),
		HistoryFile:   env("HISTORY_FILE", filepath.Join(root, "data", "history", "price_log.csv")),
		DashboardFile: env("DASHBOARD_FILE", filepath.Join(root, "dashboard", "index.html")),

		HistoryDateColumn: env("HISTORY_DATE_COLUMN", "date_ist"),
		TZName:            env("TZ_NAME", "IST"),
		TZOffsetMinutes:   atoi("TZ_OFFSET_MINUTES", 330),
		CurrencySymbol:    env("CURRENCY_SYMBOL", "₹"),

		ProviderBase:    env("PROVIDER_BASE_URL", "https://booking-com15.p.rapidapi.com"),
		ProviderHost:    env("RAPIDAPI_HOST", "booking-com15.p.rapidapi.com"),
		ProviderKey:     env("RAPIDAPI_KEY", ""),
		ProviderTimeout: time.Duration(atoi("PROVIDER_TIMEOUT_SECONDS", 60)) * time.Second,
		ProviderRPS:     atoi("PROVIDER_RPS", 2),
		ProviderRetries: atoi("PROVIDER_RETRIES", 0),

		MySQLDSN:  env("MYSQL_DSN", ""),
		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	if c.ProviderKey == "" {
		log.Debug().Msg("RAPIDAPI_KEY is empty; fetch will fail")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
