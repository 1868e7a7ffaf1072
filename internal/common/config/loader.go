// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like TIKHUB_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from multiple possible locations so the binary and the
// tests can both find it.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills secrets from the environment when the config file
// left them blank.
func overrideEmptyConfig(cfg *Config) {
	if cfg.APIs.TikHub.APIKey == "" {
		if val := os.Getenv("TIKHUB_API_KEY"); val != "" {
			cfg.APIs.TikHub.APIKey = val
		}
	}
	if cfg.APIs.OpenRouter.APIKey == "" {
		if val := os.Getenv("OPENROUTER_API_KEY"); val != "" {
			cfg.APIs.OpenRouter.APIKey = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields. The
// scoring defaults are the canonical rule set; see DESIGN.md for the choices.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "creator-score"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.SyncTimeout == 0 {
		cfg.Server.SyncTimeout = 300000 // 5 minutes
	}

	if cfg.APIs.TikHub.BaseURL == "" {
		cfg.APIs.TikHub.BaseURL = "https://api.tikhub.dev"
	}
	if cfg.APIs.TikHub.Timeout == 0 {
		cfg.APIs.TikHub.Timeout = 30000
	}
	if cfg.APIs.TikHub.MaxRetries == 0 {
		cfg.APIs.TikHub.MaxRetries = 3
	}

	if cfg.APIs.OpenRouter.BaseURL == "" {
		cfg.APIs.OpenRouter.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.APIs.OpenRouter.Model == "" {
		cfg.APIs.OpenRouter.Model = "openai/gpt-4o-mini"
	}
	if cfg.APIs.OpenRouter.Timeout == 0 {
		cfg.APIs.OpenRouter.Timeout = 60000
	}
	if cfg.APIs.OpenRouter.Temperature == 0 {
		cfg.APIs.OpenRouter.Temperature = 0.3
	}
	if cfg.APIs.OpenRouter.MaxTokens == 0 {
		cfg.APIs.OpenRouter.MaxTokens = 2000
	}
	if cfg.APIs.OpenRouter.MaxConcurrent == 0 {
		cfg.APIs.OpenRouter.MaxConcurrent = 5
	}
	if cfg.APIs.OpenRouter.MaxRetries == 0 {
		cfg.APIs.OpenRouter.MaxRetries = 2
	}

	if cfg.Scoring.Account.WindowDays == 0 {
		cfg.Scoring.Account.WindowDays = 90
	}
	if cfg.Scoring.Account.IdealWeeklyFreq == 0 {
		cfg.Scoring.Account.IdealWeeklyFreq = 10
	}
	if cfg.Scoring.Account.FreqPenalty == 0 {
		cfg.Scoring.Account.FreqPenalty = 6
	}
	if cfg.Scoring.Account.FollowerWeight == 0 {
		cfg.Scoring.Account.FollowerWeight = 0.40
	}
	if cfg.Scoring.Account.LikesWeight == 0 {
		cfg.Scoring.Account.LikesWeight = 0.40
	}
	if cfg.Scoring.Account.PostingWeight == 0 {
		cfg.Scoring.Account.PostingWeight = 0.20
	}

	if cfg.Scoring.Interaction.MaxVideos == 0 {
		cfg.Scoring.Interaction.MaxVideos = 100
	}
	if cfg.Scoring.Interaction.ViewWeight == 0 {
		cfg.Scoring.Interaction.ViewWeight = 0.10
	}
	if cfg.Scoring.Interaction.LikeWeight == 0 {
		cfg.Scoring.Interaction.LikeWeight = 0.15
	}
	if cfg.Scoring.Interaction.CommentWeight == 0 {
		cfg.Scoring.Interaction.CommentWeight = 0.30
	}
	if cfg.Scoring.Interaction.ShareWeight == 0 {
		cfg.Scoring.Interaction.ShareWeight = 0.30
	}
	if cfg.Scoring.Interaction.SaveWeight == 0 {
		cfg.Scoring.Interaction.SaveWeight = 0.15
	}
	if cfg.Scoring.Interaction.LikeCoeff == 0 {
		cfg.Scoring.Interaction.LikeCoeff = 2500 // 4.0% like rate maps to 100
	}
	if cfg.Scoring.Interaction.CommentCoeff == 0 {
		cfg.Scoring.Interaction.CommentCoeff = 12500 // 0.8% comment rate maps to 100
	}
	if cfg.Scoring.Interaction.ShareCoeff == 0 {
		cfg.Scoring.Interaction.ShareCoeff = 25000 // 0.4% share rate maps to 100
	}
	if cfg.Scoring.Interaction.SaveCoeff == 0 {
		cfg.Scoring.Interaction.SaveCoeff = 10000 // 1.0% save rate maps to 100
	}

	if cfg.Scoring.Aggregate.InteractionWeight == 0 {
		cfg.Scoring.Aggregate.InteractionWeight = 0.65
	}
	if cfg.Scoring.Aggregate.QualityWeight == 0 {
		cfg.Scoring.Aggregate.QualityWeight = 0.35
	}
	if cfg.Scoring.Aggregate.QualityBaseline == 0 {
		cfg.Scoring.Aggregate.QualityBaseline = 60
	}
	if cfg.Scoring.Aggregate.MaxFinalScore == 0 {
		cfg.Scoring.Aggregate.MaxFinalScore = 1000
	}

	if cfg.Tasks.Store == "" {
		cfg.Tasks.Store = "memory"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.APIs.TikHub.BaseURL == "" {
		return fmt.Errorf("apis.tikhub.base_url is required")
	}

	if cfg.Tasks.Store != "memory" && cfg.Tasks.Store != "redis" {
		return fmt.Errorf("tasks.store must be \"memory\" or \"redis\", got %q", cfg.Tasks.Store)
	}
	if cfg.Tasks.Store == "redis" && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when tasks.store is redis")
	}

	wa := cfg.Scoring.Account
	if sum := wa.FollowerWeight + wa.LikesWeight + wa.PostingWeight; !closeTo(sum, 1.0) {
		return fmt.Errorf("scoring.account weights sum to %.3f, should be 1.0", sum)
	}

	wi := cfg.Scoring.Interaction
	if sum := wi.ViewWeight + wi.LikeWeight + wi.CommentWeight + wi.ShareWeight + wi.SaveWeight; !closeTo(sum, 1.0) {
		return fmt.Errorf("scoring.interaction weights sum to %.3f, should be 1.0", sum)
	}

	wg := cfg.Scoring.Aggregate
	if sum := wg.InteractionWeight + wg.QualityWeight; !closeTo(sum, 1.0) {
		return fmt.Errorf("scoring.aggregate weights sum to %.3f, should be 1.0", sum)
	}

	return nil
}

func closeTo(v, target float64) bool {
	diff := v - target
	return diff < 0.001 && diff > -0.001
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// Default returns a Config populated with every default value, for tests and
// for callers that need the canonical scoring parameters without a file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
