package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-advisor/internal/catalog"
	"github.com/jonathan/career-advisor/internal/config"
	"github.com/jonathan/career-advisor/internal/db"
	"github.com/jonathan/career-advisor/internal/identity"
	"github.com/jonathan/career-advisor/internal/llm"
	"github.com/jonathan/career-advisor/internal/observability"
	"github.com/jonathan/career-advisor/internal/pipeline"
	"github.com/jonathan/career-advisor/internal/quota"
	"github.com/jonathan/career-advisor/internal/ranking"
	"github.com/jonathan/career-advisor/internal/server"
)

var (
	servePort   int
	serveConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the assessment, quota, and checkout webhook endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to JSON config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.WebhookSecret == "" {
		return fmt.Errorf("CHECKOUT_WEBHOOK_SECRET environment variable is required")
	}

	log := observability.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	lib, err := loadCatalog(cfg.CatalogDir)
	if err != nil {
		return err
	}

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}
	defer func() { _ = client.Close() }()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	tokens, err := identity.NewTokenService(cfg.JWTSecret, cfg.JWTExpirationHours)
	if err != nil {
		return err
	}

	pipe := pipeline.New(
		client,
		ranking.NewRanker(ranking.DefaultWeights(), cfg.TopK),
		log,
		cfg.MaxAttempts,
	)

	srv, err := server.New(server.Options{
		Port:          cfg.Port,
		Pipeline:      pipe,
		Library:       lib,
		Ledger:        quota.NewLedger(db.NewQuotaStore(database), cfg.AnonTurnLimit, cfg.EntitledTurnLimit),
		Resolver:      identity.NewResolver(tokens, database),
		Tokens:        tokens,
		Purchases:     database,
		WebhookSecret: []byte(cfg.WebhookSecret),
		Log:           log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// loadConfig layers the optional config file over the environment over
// built-in defaults.
func loadConfig() (config.Config, error) {
	cfg := config.FromEnv()
	if serveConfig != "" {
		fileCfg, err := config.LoadConfig(serveConfig)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}
	return cfg.MergeWithDefaults(config.Defaults()), nil
}

func loadCatalog(dir string) (*catalog.Library, error) {
	if dir != "" {
		return catalog.LoadDir(dir)
	}
	return catalog.Default()
}
