package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/vivoohoo/IntelligentCsvAnalyzer/internal/config"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/embed"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/nlquery"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/profile"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/service"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/similarity"
)

var (
	// Global flags (wired later to config/viper)
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "csvql",
	Short: "csvql: profile CSV datasets and ask questions about them in plain language",
	Long:  `csvql profiles a CSV file (column statistics, semantic types, relationships, insights) and answers free-text questions about it: totals, top products, city breakdowns, tax calculations, and summary statistics.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.csvql/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c

	logCfg := zap.NewProductionConfig()
	if debug {
		logCfg = zap.NewDevelopmentConfig()
	}
	logCfg.OutputPaths = []string{"stderr"}
	logger, err = logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to build logger: %v\n", err)
		logger = zap.NewNop()
	}
}

// buildAnalyzer assembles the full pipeline from the loaded config.
func buildAnalyzer() (*service.Analyzer, error) {
	if cfg == nil {
		cfg = &cfgpkg.Global{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	host := cfg.OllamaHost
	if cfg.EmbeddingProvider == "openai" {
		host = cfg.APIBaseURL
	}
	embedder, err := embed.New(embed.Options{
		Provider: cfg.EmbeddingProvider,
		Model:    cfg.EmbeddingModel,
		Host:     host,
		APIKey:   cfg.APIKey,
		Timeout:  time.Duration(cfg.EmbeddingTimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("configure embedder: %w", err)
	}

	intents, err := loadIntents()
	if err != nil {
		return nil, err
	}
	entities, err := loadEntities()
	if err != nil {
		return nil, err
	}
	categories, err := loadCategories()
	if err != nil {
		return nil, err
	}

	scorer := similarity.NewScorer(embedder, cfg.SimilarityMemoSize, logger)
	profiler := profile.NewProfiler(logger, cfg.ProfileCacheSize)
	index := profile.NewSemanticColumnIndex(categories, cfg.ColumnIndexMemoSize)
	classifier := nlquery.NewClassifier(intents, scorer, logger)
	resolver := nlquery.NewEntityResolver(entities, logger)
	executor := nlquery.NewExecutor(index, nlquery.NewTimeRangeFilter(), resolver, logger)
	return service.NewAnalyzer(profiler, classifier, executor, resolver, logger), nil
}

func loadIntents() ([]nlquery.IntentExamples, error) {
	if cfg.IntentsFile == "" {
		return nil, nil
	}
	b, err := os.ReadFile(cfg.IntentsFile)
	if err != nil {
		return nil, fmt.Errorf("read intents file: %w", err)
	}
	return nlquery.IntentsFromYAML(b)
}

func loadEntities() ([]nlquery.Entity, error) {
	if cfg.EntitiesFile == "" {
		return nil, nil
	}
	b, err := os.ReadFile(cfg.EntitiesFile)
	if err != nil {
		return nil, fmt.Errorf("read entities file: %w", err)
	}
	return nlquery.EntitiesFromYAML(b)
}

func loadCategories() ([]profile.CategoryKeywords, error) {
	if cfg.CategoriesFile == "" {
		return nil, nil
	}
	b, err := os.ReadFile(cfg.CategoriesFile)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	return profile.CategoriesFromYAML(b)
}
