package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/uoscommunity/scorebot/internal/account"
	"github.com/uoscommunity/scorebot/internal/api"
	"github.com/uoscommunity/scorebot/internal/balance"
	"github.com/uoscommunity/scorebot/internal/bot"
	"github.com/uoscommunity/scorebot/internal/chain"
	"github.com/uoscommunity/scorebot/internal/config"
	"github.com/uoscommunity/scorebot/internal/database"
	"github.com/uoscommunity/scorebot/internal/domain"
	"github.com/uoscommunity/scorebot/internal/export"
	"github.com/uoscommunity/scorebot/internal/report"
	"github.com/uoscommunity/scorebot/internal/score"
	"github.com/uoscommunity/scorebot/internal/telegram"
	"github.com/uoscommunity/scorebot/internal/worker"
)

//go:embed migrations
var migrationsFS embed.FS

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "scorebot",
		Usage: "UOS Network score and balance bot",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the Telegram bot, HTTP API and scheduled export",
				Action: serve,
			},
			{
				Name:      "balance",
				Usage:     "print the balances of a UOS account",
				ArgsUsage: "<account>",
				Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "print JSON instead of Markdown"}},
				Action:    printBalance,
			},
			{
				Name:      "score",
				Usage:     "print the score of a UOS account",
				ArgsUsage: "<account>",
				Action:    printScore,
			},
			{
				Name:   "export",
				Usage:  "export balances of all linked accounts once",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "out", Usage: "write an XLSX file to this path instead of the configured targets"}},
				Action: runExport,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrate,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("scorebot: %v", err)
	}
}

// app wires the services shared by every command.
type app struct {
	cfg      config.Config
	client   *chain.Client
	balances *balance.Service
	scores   *score.Service
	links    report.Links
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	window, err := cfg.VestingWindow()
	if err != nil {
		return nil, err
	}
	multiplier, err := cfg.ScoreMultiplier()
	if err != nil {
		return nil, err
	}

	client := chain.NewClient(cfg.UOSAPIURL, cfg.UOSRetryMax, cfg.UOSRetryBaseDelay)
	source := chain.NewSource(client, chain.Contracts{
		TimeLock:      cfg.TimeLockContract,
		ActivityLock:  cfg.ActLockContract,
		Emission:      cfg.EmissionContract,
		EmissionTable: cfg.EmissionTable,
	})

	return &app{
		cfg:      cfg,
		client:   client,
		balances: balance.NewService(source, window),
		scores:   score.NewService(client, cfg.UOSAPIURI, multiplier),
		links:    report.Links{UserURL: cfg.UcomUserURL, UserURI: cfg.UcomUserURI},
	}, nil
}

// openAccounts opens the configured account store and applies its migrations.
func openAccounts(ctx context.Context, cfg config.Config) (account.Repository, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sub, err := fs.Sub(migrationsFS, "migrations/postgres")
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("creating migrations sub-fs: %w", err)
		}
		if err := database.RunMigrations(ctx, pool, sub); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		return account.NewPgRepository(pool), pool.Close, nil

	case cfg.SQLitePath != "":
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		sub, err := fs.Sub(migrationsFS, "migrations/sqlite")
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("creating migrations sub-fs: %w", err)
		}
		if err := database.RunSQLiteMigrations(ctx, db, sub); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		return account.NewSQLiteRepository(db), func() { db.Close() }, nil
	}

	return nil, nil, errors.New("DATABASE_URL or SQLITE_PATH is required")
}

// exportWriter builds the configured export targets. A non-empty out replaces them with one XLSX file.
func exportWriter(ctx context.Context, cfg config.Config, out string) (export.SheetWriter, error) {
	if out != "" {
		return export.NewXLSXWriter(out), nil
	}

	var writers export.MultiWriter
	if cfg.ExportXLSXPath != "" {
		writers = append(writers, export.NewXLSXWriter(cfg.ExportXLSXPath))
	}
	if cfg.GoogleSheetsID != "" && cfg.GoogleCredentialsJSON != "" {
		sw, err := export.NewSheetsWriter(ctx, cfg.GoogleSheetsID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return nil, err
		}
		writers = append(writers, sw)
	}
	if len(writers) == 0 {
		return nil, errors.New("no export target configured (EXPORT_XLSX_PATH or GOOGLE_SHEETS_ID with GOOGLE_CREDENTIALS_JSON)")
	}
	return writers, nil
}

func serve(c *cli.Context) error {
	ctx := c.Context

	a, err := newApp()
	if err != nil {
		return err
	}
	if a.cfg.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}

	accounts, closeAccounts, err := openAccounts(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer closeAccounts()

	var exporter *export.Service
	if a.cfg.ExportEnabled() {
		writer, err := exportWriter(ctx, a.cfg, "")
		if err != nil {
			return err
		}
		exporter = export.NewService(accounts, a.balances, writer)
	} else if a.cfg.ExportCron != "" {
		slog.Warn("EXPORT_CRON set but no export target configured, scheduled export is disabled")
	}

	g, gctx := errgroup.WithContext(ctx)

	if exporter != nil && a.cfg.ExportCron != "" {
		exportWorker, err := worker.NewExportWorker(exporter, a.cfg.ExportCron)
		if err != nil {
			return err
		}
		g.Go(func() error {
			exportWorker.Run(gctx)
			return nil
		})
	}

	tg := telegram.NewClient(a.cfg.TelegramAPIURL, a.cfg.TelegramBotToken, 3)
	handler := bot.NewHandler(accounts, a.scores, a.client, a.balances, a.links, a.cfg.AccountHelpLink)
	scoreBot := bot.New(tg, handler, a.cfg.BotWorkers, a.cfg.TelegramPollTimeout)
	g.Go(func() error {
		return scoreBot.Run(gctx)
	})

	if a.cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, admin endpoints are disabled")
	}

	var apiExporter api.Exporter
	if exporter != nil {
		apiExporter = exporter
	}
	srv := api.NewServer(a.cfg.HTTPPort, api.NewHandler(a.balances, a.scores, accounts, apiExporter), a.cfg.AdminAPIKey)

	g.Go(func() error {
		log.Printf("HTTP server listening on :%s", a.cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		return nil
	})

	err = g.Wait()
	log.Println("Shutdown complete")
	return err
}

func accountArg(c *cli.Context) (string, error) {
	name := c.Args().First()
	if !domain.ValidAccountName(name) {
		return "", fmt.Errorf("account name must be exactly %d characters, got %q", domain.AccountNameLength, name)
	}
	return name, nil
}

func printBalance(c *cli.Context) error {
	name, err := accountArg(c)
	if err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}

	r, err := a.balances.Compute(c.Context, name)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	_, err = fmt.Fprintln(c.App.Writer, report.Balance(r))
	return err
}

func printScore(c *cli.Context) error {
	name, err := accountArg(c)
	if err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}

	s, err := a.scores.GetScore(c.Context, name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, report.Score(s, a.links))
	return err
}

func runExport(c *cli.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	accounts, closeAccounts, err := openAccounts(c.Context, a.cfg)
	if err != nil {
		return err
	}
	defer closeAccounts()

	writer, err := exportWriter(c.Context, a.cfg, c.String("out"))
	if err != nil {
		return err
	}

	rows, err := export.NewService(accounts, a.balances, writer).Export(c.Context)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "exported %d accounts\n", rows)
	return err
}

func migrate(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	_, closeAccounts, err := openAccounts(c.Context, cfg)
	if err != nil {
		return err
	}
	closeAccounts()
	slog.Info("migrations applied")
	return nil
}
