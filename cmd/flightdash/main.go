package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"flight_dashboard/internal/adapters/observability"
	"flight_dashboard/internal/app"
	"flight_dashboard/internal/shared"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	a := &actions{cfg: cfg}
	cliApp := &cli.App{
		Name:  "flightdash",
		Usage: "fetch flight offers, summarize them and build the dashboard",
		Commands: []*cli.Command{
			{Name: "fetch", Usage: "call the provider and save the raw response", Action: a.Fetch},
			{Name: "process", Usage: "summarize the raw response and append price history", Action: a.Process},
			{Name: "render", Usage: "write the static dashboard", Action: a.Render},
			{Name: "run", Usage: "fetch, process and render", Action: a.Run},
			{
				Name:   "history",
				Usage:  "print the most recent price history entries",
				Action: a.History,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "entries to show"},
				},
			},
			{
				Name:   "offers",
				Usage:  "print ranked offers from the latest summary",
				Action: a.Offers,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "stops", Usage: "nonstop, 1stop or multistop; empty for the overall top list"},
				},
			},
			{
				Name:   "runs",
				Usage:  "list archived runs (needs MYSQL_DSN)",
				Action: a.Runs,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: app.DefaultRunsLimit, Usage: "runs to show"},
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("flightdash failed")
		os.Exit(1)
	}
}
