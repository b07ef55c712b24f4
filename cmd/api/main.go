package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"flight_dashboard/internal/adapters/dashboard"
	"flight_dashboard/internal/adapters/filestore"
	server "flight_dashboard/internal/adapters/http_server"
	"flight_dashboard/internal/adapters/observability"
	redisad "flight_dashboard/internal/adapters/redis"
	"flight_dashboard/internal/app"
	"flight_dashboard/internal/domain"
	"flight_dashboard/internal/shared"
	mysqlrepo "flight_dashboard/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	observability.Serve()

	// run archive is optional
	var archive domain.RunArchive
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		archive = mysqlrepo.New(db)
	}

	var cache domain.Cache = redisad.NoOp{}
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; serving without cache")
		} else {
			cache = rc
		}
		cancel()
	}

	q := app.NewQueryService(app.QueryDeps{
		Query:     filestore.NewQueryFile(cfg.QueryFile),
		Summaries: filestore.NewSummaries(cfg.SummaryFile),
		History:   filestore.NewHistory(cfg.HistoryFile, cfg.HistoryDateColumn),
		Renderer:  dashboard.New(cfg.CurrencySymbol, cfg.Location()),
		Archive:   archive,
		Cache:     cache,
		CacheTTL:  cfg.CacheTTL,
	})

	// http
	srv := server.New(15 * time.Second)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})

	log.Info().Str("addr", cfg.HTTPAddr).Bool("archive", archive != nil).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
