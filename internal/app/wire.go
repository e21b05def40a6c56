//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/bookdrill/internal/adapter/httpapi"
	"github.com/eslsoft/bookdrill/internal/adapter/repository"
	"github.com/eslsoft/bookdrill/internal/infrastructure/config"
	"github.com/eslsoft/bookdrill/internal/infrastructure/database"
	"github.com/eslsoft/bookdrill/internal/infrastructure/server"
	"github.com/eslsoft/bookdrill/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
	ProvideSchedulingConfig,
)

var databaseSet = wire.NewSet(
	database.NewConnection,
)

var repositorySet = wire.NewSet(
	repository.NewCoverageRepository,
	repository.NewReviewItemRepository,
	repository.NewSessionRepository,
	repository.NewTestRepository,
)

var usecaseSet = wire.NewSet(
	ProvideQuestionGenerator,
	usecase.NewTestAssembler,
	usecase.NewCoverageTracker,
	usecase.NewReviewQueueManager,
	usecase.NewSpacedFollowUpService,
	usecase.NewCurveballService,
	usecase.NewPracticeSessionCoordinator,
)

var serviceSet = wire.NewSet(
	httpapi.NewHandler,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "Config", "Logger", "DB", "Server"),
	)
	return nil, nil, nil
}
