package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	appanalyses "github.com/bryanwahyu/knowledge-analyzer/internal/application/analyses"
	"github.com/bryanwahyu/knowledge-analyzer/internal/application/keywords"
	"github.com/bryanwahyu/knowledge-analyzer/internal/application/narrative"
	"github.com/bryanwahyu/knowledge-analyzer/internal/config"
	"github.com/bryanwahyu/knowledge-analyzer/internal/domain/ai"
	"github.com/bryanwahyu/knowledge-analyzer/internal/infra/ai/openai"
	"github.com/bryanwahyu/knowledge-analyzer/internal/infra/db"
	"github.com/bryanwahyu/knowledge-analyzer/internal/infra/httpserver"
	"github.com/bryanwahyu/knowledge-analyzer/internal/infra/nlp/prose"
	minioStore "github.com/bryanwahyu/knowledge-analyzer/internal/infra/storage"
	"github.com/bryanwahyu/knowledge-analyzer/internal/logger"
	"github.com/bryanwahyu/knowledge-analyzer/internal/middleware"
)

func newApp() *cli.App {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config.yaml",
		EnvVars: []string{"CONFIG_PATH"},
		Usage:   "Path to config.yaml (optional)",
	}
	app := &cli.App{
		Name:    "knowledge-analyzer",
		Usage:   "Text analysis service: LLM summary, noun keywords, searchable history",
		Version: Version,
		Flags:   []cli.Flag{configFlag},
		Action:  serve,
		Commands: []*cli.Command{
			{Name: "serve", Usage: "Run the HTTP API (default)", Action: serve},
			{Name: "migrate", Usage: "Create the analyses table if absent", Action: migrate},
			{Name: "reset", Usage: "Drop and recreate the analyses table", Action: reset},
		},
	}
	// errors are printed by main; keep cli from exiting on its own
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func loadConfig(c *cli.Context) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("config load error: %w", err)
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format, os.Stdout), nil
}

func migrate(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	pool, repo, err := db.Open(c.Context, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repo.CreateTable(c.Context); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	log.WithField("driver", cfg.Database.Driver).Info("database migrations completed")
	return nil
}

func reset(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	pool, repo, err := db.Open(c.Context, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repo.DropTable(c.Context); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if err := repo.CreateTable(c.Context); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	log.WithField("driver", cfg.Database.Driver).Warn("analyses table reset")
	return nil
}

func serve(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := c.Context

	pool, repo, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := repo.CreateTable(ctx); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	// model POS dimuat sekali saat startup
	tagger := prose.NewTagger()
	if err := tagger.Load(); err != nil {
		return err
	}

	var archive ai.RawArchive
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init error: %w", err)
		}
		archive = store
	}

	svc := &appanalyses.Service{
		Narrative:         narrative.NewService(openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)),
		Keywords:          keywords.NewExtractor(tagger),
		Repo:              repo,
		Archive:           archive,
		Log:               log,
		IncludeAnalysisID: cfg.Response.IncludeAnalysisID,
	}

	handler := httpserver.NewRouter(svc, httpserver.Options{
		Log:            log,
		Metrics:        middleware.NewMetrics(),
		Health:         map[string]middleware.HealthChecker{"database": &middleware.DatabaseHealthChecker{DB: pool}},
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "driver": cfg.Database.Driver, "model": cfg.OpenAI.Model}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx2)
}
