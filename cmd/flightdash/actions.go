package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"flight_dashboard/internal/adapters/booking"
	"flight_dashboard/internal/adapters/console"
	"flight_dashboard/internal/adapters/dashboard"
	"flight_dashboard/internal/adapters/filestore"
	redisad "flight_dashboard/internal/adapters/redis"
	"flight_dashboard/internal/app"
	"flight_dashboard/internal/domain"
	"flight_dashboard/internal/shared"
	mysqlrepo "flight_dashboard/internal/storage/mysql"
)

type actions struct {
	cfg shared.Config
}

func (a *actions) Fetch(c *cli.Context) error {
	p, closeFn := a.pipeline(c.Context)
	defer closeFn()
	meta, err := p.Fetch(c.Context)
	if err != nil {
		return err
	}
	fmt.Printf("saved %s (run %s, fetched %s)\n", a.cfg.RawFile, meta.RunID, meta.FetchedAt)
	return nil
}

func (a *actions) Process(c *cli.Context) error {
	p, closeFn := a.pipeline(c.Context)
	defer closeFn()
	sum, err := p.Process(c.Context)
	if err != nil {
		return err
	}
	minPrice := "N/A"
	if sum.MinPrice != nil {
		minPrice = a.cfg.CurrencySymbol + strconv.FormatFloat(*sum.MinPrice, 'f', -1, 64)
	}
	fmt.Printf("saved %s (%d flights, min price %s)\n", a.cfg.SummaryFile, sum.TotalFlights, minPrice)
	return nil
}

func (a *actions) Render(c *cli.Context) error {
	p, closeFn := a.pipeline(c.Context)
	defer closeFn()
	if err := p.Render(c.Context); err != nil {
		return err
	}
	fmt.Printf("saved %s\n", a.cfg.DashboardFile)
	return nil
}

func (a *actions) Run(c *cli.Context) error {
	p, closeFn := a.pipeline(c.Context)
	defer closeFn()
	if err := p.Run(c.Context); err != nil {
		return err
	}
	fmt.Printf("dashboard ready at %s\n", a.cfg.DashboardFile)
	return nil
}

func (a *actions) History(c *cli.Context) error {
	limit := c.Int("limit")
	if limit <= 0 || limit > app.MaxHistoryLimit {
		return fmt.Errorf("--limit must be between 1 and %d", app.MaxHistoryLimit)
	}
	recs, err := a.queries(nil).History(c.Context, limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("No price history yet")
		return nil
	}
	return console.HistoryTable(recs, a.cfg.CurrencySymbol).Write(os.Stdout)
}

func (a *actions) Offers(c *cli.Context) error {
	var st domain.StopType
	if raw := c.String("stops"); raw != "" {
		parsed, ok := domain.ParseStopType(raw)
		if !ok {
			return fmt.Errorf("--stops must be one of nonstop, 1stop, multistop; got %q", raw)
		}
		st = parsed
	}
	offers, err := a.queries(nil).Offers(c.Context, st)
	if err != nil {
		return err
	}
	if len(offers) == 0 {
		fmt.Println("No flights available")
		return nil
	}
	return console.OffersTable(offers, a.cfg.CurrencySymbol).Write(os.Stdout)
}

func (a *actions) Runs(c *cli.Context) error {
	if a.cfg.MySQLDSN == "" {
		return domain.ErrArchiveDisabled
	}
	db, err := openDB(c.Context, a.cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := a.queries(mysqlrepo.New(db)).Runs(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	t := console.Table{Header: []string{"Run", "Fetched", "Processed", "Flights", "Min price"}}
	for _, r := range runs {
		minPrice := "N/A"
		if r.MinPrice != nil {
			minPrice = a.cfg.CurrencySymbol + strconv.FormatFloat(*r.MinPrice, 'f', -1, 64)
		}
		t.Rows = append(t.Rows, []string{
			r.ID, r.FetchedAt, r.ProcessedAt.Format(time.RFC3339), strconv.Itoa(r.TotalFlights), minPrice,
		})
	}
	return t.Write(os.Stdout)
}

// pipeline wires the file stores plus whichever optional backends are
// configured and reachable. closeFn releases them.
func (a *actions) pipeline(ctx context.Context) (*app.Pipeline, func()) {
	cfg := a.cfg
	var closers []func()
	closeFn := func() {
		for _, f := range closers {
			f()
		}
	}

	d := app.PipelineDeps{
		Query:     filestore.NewQueryFile(cfg.QueryFile),
		Snapshots: filestore.NewSnapshots(cfg.RawFile),
		Summaries: filestore.NewSummaries(cfg.SummaryFile),
		History:   filestore.NewHistory(cfg.HistoryFile, cfg.HistoryDateColumn),
		Dashboard: filestore.NewDashboardFile(cfg.DashboardFile),
		Renderer:  dashboard.New(cfg.CurrencySymbol, cfg.Location()),
		Limits:    app.DefaultLimits(),
		Location:  cfg.Location(),
	}

	// a missing key only matters to fetch; the pipeline reports it there
	if client, err := booking.New(booking.Options{
		BaseURL: cfg.ProviderBase,
		Host:    cfg.ProviderHost,
		Key:     cfg.ProviderKey,
		Timeout: cfg.ProviderTimeout,
		RPS:     cfg.ProviderRPS,
		Retries: cfg.ProviderRetries,
	}); err == nil {
		d.Provider = client
	}

	// the archive is optional; an unreachable database must not block a stage
	if cfg.MySQLDSN != "" {
		if db, err := openDB(ctx, cfg.MySQLDSN); err != nil {
			log.Warn().Err(err).Msg("run archive unavailable; continuing without it")
		} else {
			closers = append(closers, func() { _ = db.Close() })
			d.Archive = mysqlrepo.New(db)
		}
	}
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		closers = append(closers, func() { _ = rc.Close() })
		d.Cache = rc
	}
	return app.NewPipeline(d), closeFn
}

func (a *actions) queries(archive domain.RunArchive) *app.QueryService {
	return app.NewQueryService(app.QueryDeps{
		Query:     filestore.NewQueryFile(a.cfg.QueryFile),
		Summaries: filestore.NewSummaries(a.cfg.SummaryFile),
		History:   filestore.NewHistory(a.cfg.HistoryFile, a.cfg.HistoryDateColumn),
		Renderer:  dashboard.New(a.cfg.CurrencySymbol, a.cfg.Location()),
		Archive:   archive,
		Cache:     redisad.NoOp{},
	})
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	log.Debug().Msg("database connection ok")
	return db, nil
}
