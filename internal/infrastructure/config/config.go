package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/eslsoft/bookdrill/internal/usecase"
)

// Config holds all configuration for our application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	AI         AIConfig         `mapstructure:"ai"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`
	HTTPPort int    `mapstructure:"http_port"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	LogSQL   bool   `mapstructure:"log_sql"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AIConfig holds question generation configuration
type AIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SchedulingConfig holds the review pipeline tunables
type SchedulingConfig struct {
	BaseDelayDays          int `mapstructure:"base_delay_days"`
	RetryDelayDays         int `mapstructure:"retry_delay_days"`
	CurveballAfterPassDays int `mapstructure:"curveball_after_pass_days"`
	MasteryGateCategories  int `mapstructure:"mastery_gate_categories"`
	LessonMCQCap           int `mapstructure:"lesson_mcq_cap"`
	LessonOpenCap          int `mapstructure:"lesson_open_cap"`
	ReviewMCQCap           int `mapstructure:"review_mcq_cap"`
	ReviewOpenCap          int `mapstructure:"review_open_cap"`
	StaleGenerationSeconds int `mapstructure:"stale_generation_seconds"`
	PollAttempts           int `mapstructure:"poll_attempts"`
	PollIntervalMillis     int `mapstructure:"poll_interval_millis"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)

	// Database defaults
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "bookdrill.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "bookdrill")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.log_sql", false)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	// AI defaults
	viper.SetDefault("ai.model", "gpt-4o-mini")
	viper.SetDefault("ai.timeout", "60s")
}

// DatabaseDriver returns the normalized database driver name.
func (c *Config) DatabaseDriver() string {
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "postgresql":
		return "postgres"
	default:
		return "sqlite"
	}
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SchedulingOptions converts the raw config section into engine tunables.
// Unset values fall through to the engine defaults.
func (c *Config) SchedulingOptions() usecase.SchedulingConfig {
	return usecase.SchedulingConfig{
		BaseDelayDays:           c.Scheduling.BaseDelayDays,
		RetryDelayDays:          c.Scheduling.RetryDelayDays,
		CurveballAfterPassDays:  c.Scheduling.CurveballAfterPassDays,
		MasteryGateCategories:   c.Scheduling.MasteryGateCategories,
		LessonMCQCap:            c.Scheduling.LessonMCQCap,
		LessonOpenCap:           c.Scheduling.LessonOpenCap,
		ReviewMCQCap:            c.Scheduling.ReviewMCQCap,
		ReviewOpenCap:           c.Scheduling.ReviewOpenCap,
		StaleGenerationInterval: time.Duration(c.Scheduling.StaleGenerationSeconds) * time.Second,
		PollAttempts:            c.Scheduling.PollAttempts,
		PollInterval:            time.Duration(c.Scheduling.PollIntervalMillis) * time.Millisecond,
	}
}
