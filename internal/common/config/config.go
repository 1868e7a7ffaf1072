// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	APIs     APIsConfig     `mapstructure:"apis"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	SyncTimeout int    `mapstructure:"sync_timeout"` // milliseconds, bound for POST /calculate_score
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TasksConfig controls the task store backend.
type TasksConfig struct {
	Store string `mapstructure:"store"` // "memory" or "redis"
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	TikHub struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
		MaxRetries int    `mapstructure:"max_retries"`
	} `mapstructure:"tikhub"`

	OpenRouter struct {
		Enabled       bool    `mapstructure:"enabled"`
		BaseURL       string  `mapstructure:"base_url"`
		APIKey        string  `mapstructure:"api_key"`
		Model         string  `mapstructure:"model"`
		Timeout       int     `mapstructure:"timeout"` // milliseconds
		Temperature   float64 `mapstructure:"temperature"`
		MaxTokens     int     `mapstructure:"max_tokens"`
		MaxConcurrent int     `mapstructure:"max_concurrent"`
		MaxRetries    int     `mapstructure:"max_retries"`
	} `mapstructure:"openrouter"`
}

// ScoringConfig holds every tunable of the scoring engine. The defaults are the
// canonical rule set; changing them changes scores, so they are covered by
// regression tests.
type ScoringConfig struct {
	Account struct {
		WindowDays      int     `mapstructure:"window_days"`
		IdealWeeklyFreq float64 `mapstructure:"ideal_weekly_frequency"`
		FreqPenalty     float64 `mapstructure:"frequency_penalty"`
		FollowerWeight  float64 `mapstructure:"follower_weight"`
		LikesWeight     float64 `mapstructure:"likes_weight"`
		PostingWeight   float64 `mapstructure:"posting_weight"`
	} `mapstructure:"account"`

	Interaction struct {
		MaxVideos     int     `mapstructure:"max_videos"`
		ViewWeight    float64 `mapstructure:"view_weight"`
		LikeWeight    float64 `mapstructure:"like_weight"`
		CommentWeight float64 `mapstructure:"comment_weight"`
		ShareWeight   float64 `mapstructure:"share_weight"`
		SaveWeight    float64 `mapstructure:"save_weight"`
		LikeCoeff     float64 `mapstructure:"like_coefficient"`
		CommentCoeff  float64 `mapstructure:"comment_coefficient"`
		ShareCoeff    float64 `mapstructure:"share_coefficient"`
		SaveCoeff     float64 `mapstructure:"save_coefficient"`
	} `mapstructure:"interaction"`

	Aggregate struct {
		InteractionWeight float64 `mapstructure:"interaction_weight"`
		QualityWeight     float64 `mapstructure:"quality_weight"`
		QualityBaseline   float64 `mapstructure:"quality_baseline"`
		MaxFinalScore     float64 `mapstructure:"max_final_score"`
	} `mapstructure:"aggregate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
