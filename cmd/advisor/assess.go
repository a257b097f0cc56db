package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/career-advisor/internal/llm"
	"github.com/jonathan/career-advisor/internal/pipeline"
	"github.com/jonathan/career-advisor/internal/ranking"
	"github.com/jonathan/career-advisor/internal/types"
)

var (
	assessProfile string
	assessOutput  string
	assessVerbose bool
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run a one-shot assessment for a profile file",
	Long: `Read a profile JSON file, rank the role catalog against it, and print
the grounded assessment. Runs without a database; quota does not apply.`,
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().StringVar(&assessProfile, "profile", "", "Path to profile JSON file (required)")
	assessCmd.Flags().StringVar(&assessOutput, "output", "", "Write the assessment to a file instead of stdout")
	assessCmd.Flags().BoolVar(&assessVerbose, "verbose", false, "Print pipeline debug logging")
	_ = assessCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	data, err := os.ReadFile(assessProfile)
	if err != nil {
		return fmt.Errorf("failed to read profile file: %w", err)
	}
	var profile types.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return fmt.Errorf("failed to parse profile JSON: %w", err)
	}

	lib, err := loadCatalog(cfg.CatalogDir)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}
	defer func() { _ = client.Close() }()

	log := zap.NewNop()
	if assessVerbose {
		log, _ = zap.NewDevelopment()
	}

	pipe := pipeline.New(
		client,
		ranking.NewRanker(ranking.DefaultWeights(), cfg.TopK),
		log,
		cfg.MaxAttempts,
	)

	result, err := pipe.Run(ctx, &profile, lib)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}

	if assessOutput != "" {
		if err := os.WriteFile(assessOutput, out, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Assessment written to %s\n", assessOutput)
		return nil
	}

	fmt.Println(string(out))
	return nil
}
