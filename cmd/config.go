package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/vivoohoo/IntelligentCsvAnalyzer/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set csvql configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("embedding_provider: %s\n", cfg.EmbeddingProvider)
		if cfg.EmbeddingModel != "" {
			fmt.Printf("embedding_model: %s\n", cfg.EmbeddingModel)
		}
		fmt.Printf("embedding_timeout_sec: %d\n", cfg.EmbeddingTimeoutSec)
		fmt.Printf("api_key: %s\n", mask(cfg.APIKey))
		if cfg.APIBaseURL != "" {
			fmt.Printf("api_base_url: %s\n", cfg.APIBaseURL)
		}
		fmt.Printf("ollama_host: %s\n", cfg.OllamaHost)
		fmt.Printf("profile_cache_size: %d\n", cfg.ProfileCacheSize)
		fmt.Printf("similarity_memo_size: %d\n", cfg.SimilarityMemoSize)
		fmt.Printf("column_index_memo_size: %d\n", cfg.ColumnIndexMemoSize)
		if cfg.IntentsFile != "" {
			fmt.Printf("intents_file: %s\n", cfg.IntentsFile)
		}
		if cfg.EntitiesFile != "" {
			fmt.Printf("entities_file: %s\n", cfg.EntitiesFile)
		}
		if cfg.CategoriesFile != "" {
			fmt.Printf("categories_file: %s\n", cfg.CategoriesFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "embedding_provider":
			switch val {
			case "none", "ollama", "openai":
				cfg.EmbeddingProvider = val
			default:
				return fmt.Errorf("invalid embedding_provider: %s (use none, ollama, or openai)", val)
			}
		case "embedding_model":
			cfg.EmbeddingModel = val
		case "embedding_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for embedding_timeout_sec: %v", val)
			}
			cfg.EmbeddingTimeoutSec = i
		case "api_key":
			cfg.APIKey = val
		case "api_base_url":
			cfg.APIBaseURL = val
		case "ollama_host":
			cfg.OllamaHost = val
		case "profile_cache_size":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for profile_cache_size: %v", val)
			}
			cfg.ProfileCacheSize = i
		case "similarity_memo_size":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for similarity_memo_size: %v", val)
			}
			cfg.SimilarityMemoSize = i
		case "column_index_memo_size":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for column_index_memo_size: %v", val)
			}
			cfg.ColumnIndexMemoSize = i
		case "intents_file":
			cfg.IntentsFile = val
		case "entities_file":
			cfg.EntitiesFile = val
		case "categories_file":
			cfg.CategoriesFile = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
