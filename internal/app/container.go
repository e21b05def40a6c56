package app

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/eslsoft/bookdrill/internal/infrastructure/config"
	"github.com/eslsoft/bookdrill/internal/infrastructure/genai"
	"github.com/eslsoft/bookdrill/internal/infrastructure/server"
	"github.com/eslsoft/bookdrill/internal/usecase"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *gorm.DB
	Server *server.Server
}

// ProvideSchedulingConfig converts raw config into engine tunables.
func ProvideSchedulingConfig(cfg *config.Config) usecase.SchedulingConfig {
	return cfg.SchedulingOptions()
}

// ProvideQuestionGenerator builds the chat-completion backed generator.
func ProvideQuestionGenerator(cfg *config.Config, logger *logrus.Logger) usecase.QuestionGenerator {
	return genai.NewQuestionGenerator(genai.Config{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, logger)
}
