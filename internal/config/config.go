package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Embedding backend for semantic query matching. Provider is "none",
	// "ollama", or "openai"; empty disables embeddings entirely.
	EmbeddingProvider   string `mapstructure:"embedding_provider" yaml:"embedding_provider"`
	EmbeddingModel      string `mapstructure:"embedding_model" yaml:"embedding_model"`
	EmbeddingTimeoutSec int    `mapstructure:"embedding_timeout_sec" yaml:"embedding_timeout_sec"`
	APIKey              string `mapstructure:"api_key" yaml:"api_key"`
	APIBaseURL          string `mapstructure:"api_base_url" yaml:"api_base_url"`

	// Local runtimes (Ollama)
	OllamaHost string `mapstructure:"ollama_host" yaml:"ollama_host"`

	// Cache sizing
	ProfileCacheSize    int `mapstructure:"profile_cache_size" yaml:"profile_cache_size"`
	SimilarityMemoSize  int `mapstructure:"similarity_memo_size" yaml:"similarity_memo_size"`
	ColumnIndexMemoSize int `mapstructure:"column_index_memo_size" yaml:"column_index_memo_size"`

	// Optional override files for the built-in vocabularies.
	IntentsFile    string `mapstructure:"intents_file" yaml:"intents_file"`
	EntitiesFile   string `mapstructure:"entities_file" yaml:"entities_file"`
	CategoriesFile string `mapstructure:"categories_file" yaml:"categories_file"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.csvql/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".csvql")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CSVQL")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("embedding_provider", "none")
	v.SetDefault("embedding_model", "")
	v.SetDefault("embedding_timeout_sec", 3)
	v.SetDefault("api_base_url", "")
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	v.SetDefault("profile_cache_size", 64)
	v.SetDefault("similarity_memo_size", 512)
	v.SetDefault("column_index_memo_size", 128)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".csvql")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
