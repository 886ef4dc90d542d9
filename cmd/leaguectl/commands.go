package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/pokerleague/internal/adapters/chart"
	"github.com/okian/pokerleague/internal/adapters/upstream"
	service "github.com/okian/pokerleague/internal/app"
	"github.com/okian/pokerleague/internal/config"
	"github.com/okian/pokerleague/internal/domain/season"
	"github.com/okian/pokerleague/internal/domain/types"
	"github.com/okian/pokerleague/internal/export"
	"github.com/okian/pokerleague/internal/leaguesim"
	"github.com/okian/pokerleague/pkg/logger"
)

const (
	defaultSimAddr     = ":9090"
	defaultServiceURL  = "http://localhost:9080"
	defaultVerifyLimit = 2 * time.Minute
	shutdownTimeout    = 10 * time.Second
	readHeaderTimeout  = 5 * time.Second
)

// ErrVerifyFailed is returned when the verifier found inconsistencies.
var ErrVerifyFailed = errors.New("verification found problems")

func newApp() *cli.App {
	return &cli.App{
		Name:  "leaguectl",
		Usage: "poker league tooling",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-base",
				Usage:   "league data API base URL (overrides configuration)",
				EnvVars: []string{"POKER_API_BASE"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "log level: debug, info, warn, error",
			},
		},
		Before: func(c *cli.Context) error {
			return logger.SetLevelString(c.String("log-level"))
		},
		Commands: []*cli.Command{
			simulateCommand(),
			verifyCommand(),
			exportCommand(),
			chartCommand(),
		},
	}
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "serve a generated league over the league data API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: defaultSimAddr, Usage: "listen address"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "generator seed"},
			&cli.IntFlag{Name: "players", Value: leaguesim.DefaultConfig().Players, Usage: "number of players"},
			&cli.IntFlag{Name: "rounds", Value: leaguesim.DefaultConfig().RoundsPerSeason, Usage: "rounds per season"},
			&cli.StringSliceFlag{Name: "years", Usage: "years to generate (default 2024, 2025)"},
			&cli.StringSliceFlag{Name: "seasons", Usage: "season labels per year (default T1, T2)"},
			&cli.BoolFlag{Name: "plain-failure", Usage: "fail plain JSON requests so clients use the callback transport"},
			&cli.DurationFlag{Name: "latency", Usage: "delay added to every response"},
		},
		Action: func(c *cli.Context) error {
			cfg := leaguesim.DefaultConfig()
			cfg.Seed = c.Int64("seed")
			cfg.Players = c.Int("players")
			cfg.RoundsPerSeason = c.Int("rounds")
			if years := c.StringSlice("years"); len(years) > 0 {
				cfg.Years = years
			}
			if labels := c.StringSlice("seasons"); len(labels) > 0 {
				cfg.Seasons = labels
			}

			opts := []leaguesim.ProviderOption{leaguesim.WithLatency(c.Duration("latency"))}
			if c.Bool("plain-failure") {
				opts = append(opts, leaguesim.WithPlainFailure())
			}
			league := leaguesim.Generate(cfg)
			return serve(c.Context, c.String("addr"), leaguesim.NewProvider(league, opts...), len(league.Rounds()))
		},
	}
}

func serve(ctx context.Context, addr string, h http.Handler, rounds int) error {
	log := logger.Get().Named("simulate")
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: readHeaderTimeout}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "serving synthetic league", logger.String("addr", addr), logger.Int("rounds", rounds))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "check the views of a running league service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: defaultServiceURL, Usage: "service base URL"},
			&cli.DurationFlag{Name: "timeout", Value: defaultVerifyLimit, Usage: "overall time limit"},
			&cli.IntFlag{Name: "players", Value: 5, Usage: "number of player profiles to check"},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()

			v := leaguesim.NewVerifier(c.String("url"), leaguesim.WithPlayerSample(c.Int("players")))
			report, err := v.Run(ctx)
			if err != nil {
				return err
			}
			out := c.App.Writer
			_, _ = fmt.Fprintf(out, "seasons=%d ranking=%d geral=%d players=%d in %s\n",
				report.Seasons, report.RankingRows, report.GeneralRows, report.PlayersChecked,
				report.Duration.Round(time.Millisecond))
			for _, p := range report.Problems {
				_, _ = fmt.Fprintln(out, "problem:", p)
			}
			if !report.OK() {
				return fmt.Errorf("%w: %d", ErrVerifyFailed, len(report.Problems))
			}
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write rankings as XLSX workbooks",
		Subcommands: []*cli.Command{
			{
				Name:  "ranking",
				Usage: "season ranking with the round summary",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "ano", Usage: "year, ALL for every year"},
					&cli.StringFlag{Name: "temporada", Usage: "season, ALL for every season"},
					outFlag(),
				},
				Action: func(c *cli.Context) error {
					svc, err := newService(c)
					if err != nil {
						return err
					}
					view, err := svc.Home(c.Context, season.Selection{Year: c.String("ano"), Season: c.String("temporada")})
					if err != nil {
						return err
					}
					if se := view.Ranking.Error; se != nil {
						return fmt.Errorf("ranking: %s: %s", se.Code, se.Message)
					}
					var kpis *types.RoundKPIs
					if view.KPIs.OK() {
						kpis = &view.KPIs.Data
					}
					sel := view.Ranking.Data.Selection
					name := outPath(c, fmt.Sprintf("ranking-%s-%s.xlsx", fileLabel(sel.Year), fileLabel(sel.Season)))
					return writeOut(c, name, func(w io.Writer) (int64, error) {
						return export.WriteSeasonRanking(w, sel.Year+" / "+sel.Season, view.Ranking.Data.Rows, kpis)
					})
				},
			},
			{
				Name:  "geral",
				Usage: "all-time ranking with podium and superlatives",
				Flags: []cli.Flag{outFlag()},
				Action: func(c *cli.Context) error {
					svc, err := newService(c)
					if err != nil {
						return err
					}
					view, err := svc.General(c.Context)
					if err != nil {
						return err
					}
					return writeOut(c, outPath(c, "ranking-geral.xlsx"), func(w io.Writer) (int64, error) {
						return export.WriteGeneral(w, view.Rows, view.Podium, view.MinParticipations, view.Superlatives)
					})
				},
			},
		},
	}
}

func chartCommand() *cli.Command {
	return &cli.Command{
		Name:  "chart",
		Usage: "render a player's history as SVG",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Required: true, Usage: "player id"},
			&cli.StringFlag{Name: "ano", Usage: "year of a single-season chart"},
			&cli.StringFlag{Name: "temporada", Usage: "season of a single-season chart"},
			outFlag(),
		},
		Action: func(c *cli.Context) error {
			svc, err := newService(c)
			if err != nil {
				return err
			}
			id := c.String("id")
			var svg []byte
			if c.String("ano") == "" && c.String("temporada") == "" {
				view, err := svc.Player(c.Context, id)
				if err != nil {
					return err
				}
				svg, err = chart.SeasonHistory(view.Chart)
				if err != nil {
					return err
				}
			} else {
				view, err := svc.PlayerSeason(c.Context, id, c.String("ano"), c.String("temporada"))
				if err != nil {
					return err
				}
				svg, err = chart.RoundHistory(view.Series)
				if err != nil {
					return err
				}
			}
			return writeOut(c, outPath(c, strings.ToLower(id)+".svg"), func(w io.Writer) (int64, error) {
				n, err := w.Write(svg)
				return int64(n), err
			})
		},
	}
}

// newService builds the league service from configuration and the global
// --api-base flag. No background refresher runs for one-shot commands.
func newService(c *cli.Context) (*service.Service, error) {
	cfg, err := config.Load(c.Context)
	if err != nil {
		return nil, err
	}
	if base := c.String("api-base"); base != "" {
		cfg.APIBase = base
	}
	if cfg.APIBase == "" {
		return nil, fmt.Errorf("%w: set --api-base or POKER_API_BASE", upstream.ErrMissingBaseURL)
	}

	log := logger.Get()
	client := upstream.NewClient(cfg.APIBase,
		upstream.WithTimeout(cfg.RequestTimeout()),
		upstream.WithRateLimit(cfg.UpstreamRPS, cfg.UpstreamBurst),
		upstream.WithLogger(log.Named("upstream")),
	)
	return service.New(client,
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithMinParticipations(cfg.MinParticipations),
		service.WithPodiumSize(cfg.PodiumSize),
		service.WithHiddenPlayers(cfg.HiddenPlayerIDs...),
		service.WithRefreshInterval(0),
	), nil
}

func outFlag() cli.Flag {
	return &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, - for stdout"}
}

func outPath(c *cli.Context, fallback string) string {
	if p := c.String("out"); p != "" {
		return p
	}
	return fallback
}

func writeOut(c *cli.Context, path string, render func(io.Writer) (int64, error)) error {
	if path == "-" {
		_, err := render(c.App.Writer)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := render(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(c.App.Writer, "wrote %s (%d bytes)\n", path, n)
	return nil
}

func fileLabel(v string) string {
	if v == "" {
		return "all"
	}
	return strings.ToLower(v)
}
